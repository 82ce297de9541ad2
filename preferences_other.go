//go:build !windows

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// settingsDocument is the on-disk layout of fileStore
type settingsDocument struct {
	Integers map[string]uint64 `yaml:"integers,omitempty"`
	Strings  map[string]string `yaml:"strings,omitempty"`
}

// fileStore keeps values in a YAML file. Each write rewrites the whole file
// through a temporary file and a rename.
type fileStore struct {
	path string
}

func newFileStore(path string) *fileStore {
	return &fileStore{path: path}
}

func (s *fileStore) load() (*settingsDocument, error) {
	doc := &settingsDocument{}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return doc, nil
		}
		return nil, fmt.Errorf("error reading settings: %w", err)
	}
	if err := yaml.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("error parsing settings: %w", err)
	}
	return doc, nil
}

func (s *fileStore) save(doc *settingsDocument) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("error creating settings directory: %w", err)
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("error serializing settings: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("error saving settings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("error saving settings: %w", err)
	}
	return nil
}

func (s *fileStore) GetInteger(name string) (uint64, error) {
	doc, err := s.load()
	if err != nil {
		return 0, err
	}
	v, ok := doc.Integers[name]
	if !ok {
		return 0, errValueNotExist
	}
	return v, nil
}

func (s *fileStore) SetInteger(name string, value uint64) error {
	doc, err := s.load()
	if err != nil {
		return err
	}
	if doc.Integers == nil {
		doc.Integers = make(map[string]uint64)
	}
	doc.Integers[name] = value
	return s.save(doc)
}

func (s *fileStore) GetString(name string) (string, error) {
	doc, err := s.load()
	if err != nil {
		return "", err
	}
	v, ok := doc.Strings[name]
	if !ok {
		return "", errValueNotExist
	}
	return v, nil
}

func (s *fileStore) SetString(name string, value string) error {
	doc, err := s.load()
	if err != nil {
		return err
	}
	if doc.Strings == nil {
		doc.Strings = make(map[string]string)
	}
	doc.Strings[name] = value
	return s.save(doc)
}

// desktopRegistrar manages an XDG autostart entry
type desktopRegistrar struct {
	path string
}

func newDesktopRegistrar(configDir string) *desktopRegistrar {
	return &desktopRegistrar{path: filepath.Join(configDir, "autostart", strings.ToLower(startupName)+".desktop")}
}

func (r *desktopRegistrar) Registered() (bool, error) {
	_, err := os.Stat(r.path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (r *desktopRegistrar) Register(exePath string) error {
	execArg, err := desktopExecQuote(exePath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return fmt.Errorf("error creating autostart directory: %w", err)
	}
	entry := fmt.Sprintf("[Desktop Entry]\nType=Application\nName=%s\nExec=%s\nX-GNOME-Autostart-enabled=true\n", appName, execArg)
	return os.WriteFile(r.path, []byte(entry), 0644)
}

var (
	// backslash-escapes inside a quoted Exec argument
	execArgEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "`", "\\`", `$`, `\$`)
	// string-value escaping applies on top, so every backslash doubles again
	desktopValueEscaper = strings.NewReplacer(`\`, `\\`, `%`, `%%`)
)

// desktopExecQuote renders path as a single quoted argument of a desktop
// entry Exec key. Control characters have no representation there.
func desktopExecQuote(path string) (string, error) {
	if strings.ContainsFunc(path, unicode.IsControl) {
		return "", fmt.Errorf("executable path %q contains control characters", path)
	}
	return `"` + desktopValueEscaper.Replace(execArgEscaper.Replace(path)) + `"`, nil
}

func (r *desktopRegistrar) Unregister() error {
	if err := os.Remove(r.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// newSystemPreferences wires the file-backed preference store
func newSystemPreferences() (KeyValueStore, StartupRegistrar) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}
	store := newFileStore(filepath.Join(configDir, appName, "settings.yaml"))
	return store, newDesktopRegistrar(configDir)
}
