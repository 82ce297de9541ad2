package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Relauncher starts a fresh instance of this program
type Relauncher interface {
	Relaunch() error
}

// processRelauncher spawns the current executable with no arguments and
// does not wait for it.
type processRelauncher struct {
	executable func() (string, error)
	logger     zerolog.Logger
}

func newProcessRelauncher(logger zerolog.Logger) *processRelauncher {
	return &processRelauncher{
		executable: os.Executable,
		logger:     logger.With().Str("component", "relaunch").Logger(),
	}
}

func (r *processRelauncher) Relaunch() error {
	exePath, err := r.executable()
	if err != nil {
		return fmt.Errorf("failed to get current executable path: %w", err)
	}

	cmd := exec.Command(exePath)
	cmd.Dir = filepath.Dir(exePath)
	detachProcess(cmd)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", exePath, err)
	}
	r.logger.Info().Str("path", exePath).Int("child_pid", cmd.Process.Pid).Msg("new instance started")
	return cmd.Process.Release()
}
