package config

import "strings"

// AppVersion is the version of the daemon, set at build time with -ldflags.
var AppVersion string

// AppName is the name of the daemon.
const AppName = "BingWall"

// LogWinSubDir is the sub directory for the log files on windows.
var LogWinSubDir = AppName

// LogSubDir is the sub directory for the log files.
var LogSubDir = "." + strings.ToLower(AppName)

// LogExt is the extension for the log files.
var LogExt = ".log"

// ConfigFileName is the name of the TOML configuration file.
const ConfigFileName = "config.toml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "BINGWALL_"

// Server endpoints selectable with download.server.
const (
	ServerGlobal = "global"
	ServerChina  = "china"
	ServerCustom = "custom"

	GlobalBaseURL = "http://www.bing.com"
	ChinaBaseURL  = "http://s.cn.bing.net"
)

// Size modes selectable with download.size_mode.
const (
	SizeModeNormal  = "normal"
	SizeModeHighest = "highest"
	SizeModeManual  = "manual"
)

// CountryAuto lets the service pick the country from the client address.
const CountryAuto = "auto"

// TempDirName is the folder under the OS temp dir used when no output folder is configured.
const TempDirName = AppName
