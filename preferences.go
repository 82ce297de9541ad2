package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// errValueNotExist is returned by a KeyValueStore for a value that was never written
var errValueNotExist = errors.New("value does not exist")

// KeyValueStore persists named scalar values for the current user
type KeyValueStore interface {
	GetInteger(name string) (uint64, error)
	SetInteger(name string, value uint64) error
	GetString(name string) (string, error)
	SetString(name string, value string) error
}

// StartupRegistrar manages the OS login auto-start entry for this program
type StartupRegistrar interface {
	Registered() (bool, error)
	Register(exePath string) error
	Unregister() error
}

// Preferences is a snapshot of the persisted user settings
type Preferences struct {
	UseDarkIcon     bool
	SelectedAdapter string
	StartupEnabled  bool
}

// PreferenceStore exposes the three user settings as typed accessors.
// Getters never fail: unreadable values fall back to their defaults.
type PreferenceStore struct {
	values     KeyValueStore
	startup    StartupRegistrar
	executable func() (string, error)
	logger     zerolog.Logger
}

// NewPreferenceStore creates a store over the given backends
func NewPreferenceStore(values KeyValueStore, startup StartupRegistrar, logger zerolog.Logger) *PreferenceStore {
	return &PreferenceStore{
		values:     values,
		startup:    startup,
		executable: os.Executable,
		logger:     logger.With().Str("component", "preferences").Logger(),
	}
}

// Load reads all settings
func (p *PreferenceStore) Load() Preferences {
	return Preferences{
		UseDarkIcon:     p.UseDarkIcon(),
		SelectedAdapter: p.SelectedAdapter(),
		StartupEnabled:  p.StartupEnabled(),
	}
}

func (p *PreferenceStore) readFailed(name string, err error) {
	if !errors.Is(err, errValueNotExist) {
		p.logger.Warn().Err(err).Str("value", name).Msg("cannot read preference, using default")
	}
}

// UseDarkIcon reports whether the icon uses white text on black
func (p *PreferenceStore) UseDarkIcon() bool {
	v, err := p.values.GetInteger(valueUseDarkIcon)
	if err != nil {
		p.readFailed(valueUseDarkIcon, err)
		return false
	}
	return v != 0
}

// SetUseDarkIcon stores the icon color mode
func (p *PreferenceStore) SetUseDarkIcon(dark bool) error {
	var v uint64
	if dark {
		v = 1
	}
	if err := p.values.SetInteger(valueUseDarkIcon, v); err != nil {
		return fmt.Errorf("save %s: %w", valueUseDarkIcon, err)
	}
	return nil
}

// SelectedAdapter returns the stored adapter name; empty means auto-pick
func (p *PreferenceStore) SelectedAdapter() string {
	v, err := p.values.GetString(valueSelectedAdapter)
	if err != nil {
		p.readFailed(valueSelectedAdapter, err)
		return ""
	}
	return v
}

// SetSelectedAdapter stores the adapter name
func (p *PreferenceStore) SetSelectedAdapter(name string) error {
	if err := p.values.SetString(valueSelectedAdapter, name); err != nil {
		return fmt.Errorf("save %s: %w", valueSelectedAdapter, err)
	}
	return nil
}

// StartupEnabled reports whether the login auto-start entry exists
func (p *PreferenceStore) StartupEnabled() bool {
	ok, err := p.startup.Registered()
	if err != nil {
		p.readFailed(startupName, err)
		return false
	}
	return ok
}

// SetStartupEnabled installs the auto-start entry for the running executable,
// or removes it.
func (p *PreferenceStore) SetStartupEnabled(enabled bool) error {
	if !enabled {
		if err := p.startup.Unregister(); err != nil {
			return fmt.Errorf("remove startup entry: %w", err)
		}
		return nil
	}

	exePath, err := p.executable()
	if err != nil {
		return fmt.Errorf("resolve executable path: %w", err)
	}
	if err := p.startup.Register(exePath); err != nil {
		return fmt.Errorf("install startup entry: %w", err)
	}
	return nil
}
