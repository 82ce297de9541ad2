package main

// Application identity
const (
	appName     = "IPv4InTray"
	startupName = "IPv4InTray"
)

// Registry locations under HKEY_CURRENT_USER
const (
	settingsKeyPath = `Software\IPv4InTray`
	runKeyPath      = `Software\Microsoft\Windows\CurrentVersion\Run`
)

// Persisted value names
const (
	valueUseDarkIcon     = "UseDarkIcon"
	valueSelectedAdapter = "SelectedAdapter"
)

// fallbackIPv4 is shown when no usable address can be resolved.
const fallbackIPv4 = "0.0.0.0"

// maxTooltipLen is the NOTIFYICONDATA szTip limit minus the terminator.
const maxTooltipLen = 127

// logLevelEnv selects the zerolog level, e.g. "debug".
const logLevelEnv = "IPV4INTRAY_LOG_LEVEL"

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "0.3.0"
