package main

import (
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// logDirectory returns where the log file lives:
//   - Windows: %LOCALAPPDATA%\IPv4InTray\logs
//   - Unix: <UserConfigDir>/IPv4InTray/logs
func logDirectory() string {
	if runtime.GOOS == "windows" {
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return filepath.Join(os.TempDir(), appName, "logs")
			}
			localAppData = filepath.Join(homeDir, "AppData", "Local")
		}
		return filepath.Join(localAppData, appName, "logs")
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appName, "logs")
	}
	return filepath.Join(configDir, appName, "logs")
}

// newLogger builds the application logger. A tray process has no console,
// so output goes to a small rotating file; each relaunch appends to it.
func newLogger(levelName string) (zerolog.Logger, func()) {
	var out io.Writer = io.Discard
	cleanup := func() {}

	dir := logDirectory()
	if err := os.MkdirAll(dir, 0700); err == nil {
		file := &lumberjack.Logger{
			Filename:   filepath.Join(dir, "ipv4intray.log"),
			MaxSize:    1, // MB
			MaxBackups: 3,
		}
		out = file
		cleanup = func() { file.Close() }
	}

	level, err := zerolog.ParseLevel(levelName)
	if err != nil || levelName == "" {
		level = zerolog.InfoLevel
	}

	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    true,
		TimeFormat: "2006-01-02 15:04:05",
	}).Level(level).With().Timestamp().Int("pid", os.Getpid()).Logger()

	return logger, cleanup
}
