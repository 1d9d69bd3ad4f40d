package util

import "sync/atomic"

// SafeCounter counts events across goroutines. The zero value is ready to use.
type SafeCounter struct {
	value atomic.Int64
}

// Increment adds one and returns the new count.
func (c *SafeCounter) Increment() int {
	return int(c.value.Add(1))
}

// Value returns the current count.
func (c *SafeCounter) Value() int {
	return int(c.value.Load())
}

// SafeFlag is a boolean guard shared between goroutines. The zero value is false.
type SafeFlag struct {
	value atomic.Bool
}

// Set stores v.
func (f *SafeFlag) Set(v bool) {
	f.value.Store(v)
}

// Value reports the current state.
func (f *SafeFlag) Value() bool {
	return f.value.Load()
}

// CompareAndSwap sets the flag to newValue only if it currently equals old.
// It reports whether the swap happened.
func (f *SafeFlag) CompareAndSwap(old, newValue bool) bool {
	return f.value.CompareAndSwap(old, newValue)
}
