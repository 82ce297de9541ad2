//go:build windows

package main

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"
)

// registryStore keeps values under a key in HKEY_CURRENT_USER. The key is
// opened per operation and closed before returning.
type registryStore struct {
	root registry.Key
	path string
}

func newRegistryStore(path string) *registryStore {
	return &registryStore{root: registry.CURRENT_USER, path: path}
}

func (s *registryStore) openForRead() (registry.Key, error) {
	key, err := registry.OpenKey(s.root, s.path, registry.QUERY_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return 0, errValueNotExist
		}
		return 0, fmt.Errorf("cannot open registry key %s: %w", s.path, err)
	}
	return key, nil
}

func (s *registryStore) openForWrite() (registry.Key, error) {
	key, _, err := registry.CreateKey(s.root, s.path, registry.SET_VALUE)
	if err != nil {
		return 0, fmt.Errorf("cannot create registry key %s: %w", s.path, err)
	}
	return key, nil
}

func notExist(err error) error {
	if errors.Is(err, registry.ErrNotExist) {
		return errValueNotExist
	}
	return err
}

func (s *registryStore) GetInteger(name string) (uint64, error) {
	key, err := s.openForRead()
	if err != nil {
		return 0, err
	}
	defer key.Close()

	v, _, err := key.GetIntegerValue(name)
	if err != nil {
		return 0, notExist(err)
	}
	return v, nil
}

func (s *registryStore) SetInteger(name string, value uint64) error {
	key, err := s.openForWrite()
	if err != nil {
		return err
	}
	defer key.Close()

	return key.SetDWordValue(name, uint32(value))
}

func (s *registryStore) GetString(name string) (string, error) {
	key, err := s.openForRead()
	if err != nil {
		return "", err
	}
	defer key.Close()

	v, _, err := key.GetStringValue(name)
	if err != nil {
		return "", notExist(err)
	}
	return v, nil
}

func (s *registryStore) SetString(name string, value string) error {
	key, err := s.openForWrite()
	if err != nil {
		return err
	}
	defer key.Close()

	return key.SetStringValue(name, value)
}

// runKeyRegistrar manages a value in the per-user Run key, which Windows
// launches at logon.
type runKeyRegistrar struct {
	root      registry.Key
	path      string
	valueName string
}

func newRunKeyRegistrar() *runKeyRegistrar {
	return &runKeyRegistrar{root: registry.CURRENT_USER, path: runKeyPath, valueName: startupName}
}

func (r *runKeyRegistrar) Registered() (bool, error) {
	key, err := registry.OpenKey(r.root, r.path, registry.QUERY_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("cannot open registry key %s: %w", r.path, err)
	}
	defer key.Close()

	v, _, err := key.GetStringValue(r.valueName)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("cannot read %s: %w", r.valueName, err)
	}
	return v != "", nil
}

func (r *runKeyRegistrar) Register(exePath string) error {
	key, _, err := registry.CreateKey(r.root, r.path, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("cannot open registry key %s: %w", r.path, err)
	}
	defer key.Close()

	return key.SetStringValue(r.valueName, exePath)
}

func (r *runKeyRegistrar) Unregister() error {
	key, err := registry.OpenKey(r.root, r.path, registry.SET_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("cannot open registry key %s: %w", r.path, err)
	}
	defer key.Close()

	if err := key.DeleteValue(r.valueName); err != nil && !errors.Is(err, registry.ErrNotExist) {
		return err
	}
	return nil
}

// newSystemPreferences wires the registry-backed preference store
func newSystemPreferences() (KeyValueStore, StartupRegistrar) {
	return newRegistryStore(settingsKeyPath), newRunKeyRegistrar()
}
