//go:build windows

package main

import (
	"errors"
	"fmt"

	"github.com/dixieflatline76/BingWall/config"
	"github.com/dixieflatline76/BingWall/util/log"
	"golang.org/x/sys/windows"
)

var (
	mutex windows.Handle
)

// acquireLock tries to acquire a single-instance lock (mutex on Windows).
func acquireLock() (bool, error) {
	namePtr, err := windows.UTF16PtrFromString(config.AppName + "_SingleInstanceMutex")
	if err != nil {
		return false, err
	}

	h, err := windows.CreateMutex(nil, false, namePtr)
	if err != nil {
		if errors.Is(err, windows.ERROR_ALREADY_EXISTS) {
			if h != 0 {
				windows.CloseHandle(h)
			}
			return false, nil
		}
		return false, fmt.Errorf("failed to create mutex: %w", err)
	}

	mutex = h
	return true, nil
}

// releaseLock releases the single-instance lock.
func releaseLock() {
	if mutex == 0 {
		return
	}
	if err := windows.CloseHandle(mutex); err != nil {
		log.Warnf("Failed to close mutex handle: %v", err)
	}
	mutex = 0
}
