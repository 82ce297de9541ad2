package main

import (
	"fmt"
	"sync"
	"unicode/utf16"

	"github.com/rs/zerolog"
)

// ControllerState is the lifecycle position of the tray controller
type ControllerState int

const (
	StateInitializing ControllerState = iota
	StateDisplaying
	StateRestarting
	StateExited
)

func (s ControllerState) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateDisplaying:
		return "displaying"
	case StateRestarting:
		return "restarting"
	case StateExited:
		return "exited"
	default:
		return "unknown"
	}
}

// TrayIconState is what the icon shows, derived from preferences and the
// live adapter list.
type TrayIconState struct {
	LastOctet string
	Dark      bool
	Tooltip   string
}

type actionKind int

const (
	actionToggleStartup actionKind = iota
	actionIconColor
	actionSelectAdapter
	actionExit
)

type trayAction struct {
	kind    actionKind
	dark    bool
	adapter string
}

// TrayController owns the tray icon and menu for one process lifetime.
// Settings are never applied in place: every change is saved and the
// process restarts to rebuild the tray from scratch.
type TrayController struct {
	host       TrayHost
	prefs      *PreferenceStore
	adapters   *AdapterLookup
	renderer   *IconRenderer
	relauncher Relauncher
	logger     zerolog.Logger

	mu      sync.Mutex
	state   ControllerState
	current Preferences

	actions  chan trayAction
	done     chan struct{}
	doneOnce sync.Once
}

// NewTrayController creates a controller in the Initializing state
func NewTrayController(host TrayHost, prefs *PreferenceStore, adapters *AdapterLookup,
	renderer *IconRenderer, relauncher Relauncher, logger zerolog.Logger) *TrayController {
	return &TrayController{
		host:       host,
		prefs:      prefs,
		adapters:   adapters,
		renderer:   renderer,
		relauncher: relauncher,
		logger:     logger.With().Str("component", "tray").Logger(),
		state:      StateInitializing,
		actions:    make(chan trayAction),
		done:       make(chan struct{}),
	}
}

// State returns the current lifecycle state
func (c *TrayController) State() ControllerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *TrayController) setState(s ControllerState) {
	c.mu.Lock()
	prev := c.state
	c.state = s
	c.mu.Unlock()
	c.logger.Debug().Stringer("from", prev).Stringer("to", s).Msg("state change")
}

// OnReady is called once the host UI loop is up
func (c *TrayController) OnReady() {
	c.show()
	go c.dispatch()
}

// OnExit is called after the icon has been removed. A pending restart
// launches the replacement instance here.
func (c *TrayController) OnExit() {
	c.stop()
	if c.State() != StateRestarting {
		c.logger.Info().Msg("exiting")
		return
	}
	if err := c.relauncher.Relaunch(); err != nil {
		c.logger.Error().Err(err).Msg("relaunch failed")
	}
}

func (c *TrayController) stop() {
	c.doneOnce.Do(func() { close(c.done) })
}

// show builds icon and menu from persisted settings and live adapters
func (c *TrayController) show() {
	c.current = c.prefs.Load()
	candidates := c.adapters.ListCandidateAdapters()

	state := c.iconState()
	c.setIcon(state)
	c.buildMenu(candidates)

	c.setState(StateDisplaying)
	c.logger.Info().
		Str("label", state.LastOctet).
		Bool("dark", state.Dark).
		Str("adapter", c.current.SelectedAdapter).
		Int("candidates", len(candidates)).
		Msg("tray displayed")
}

// iconState resolves the adapter once and derives label and tooltip from it
func (c *TrayController) iconState() TrayIconState {
	name := c.current.SelectedAdapter
	adapter, ip := c.adapters.resolve(name)
	if name == "" {
		name = adapter.Name
	}

	tooltip := ip
	if name != "" {
		tooltip = name + ": " + ip
	}

	return TrayIconState{
		LastOctet: LastOctet(ip),
		Dark:      c.current.UseDarkIcon,
		Tooltip:   truncateUTF16(tooltip, maxTooltipLen),
	}
}

// truncateUTF16 cuts s to at most limit UTF-16 code units without splitting
// a surrogate pair.
func truncateUTF16(s string, limit int) string {
	units := 0
	for i, r := range s {
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		if units+n > limit {
			return s[:i]
		}
		units += n
	}
	return s
}

func (c *TrayController) setIcon(state TrayIconState) {
	c.host.SetTooltip(state.Tooltip)

	img, err := c.renderer.Render(state.LastOctet, state.Dark)
	if err != nil {
		c.logger.Error().Err(err).Msg("icon render failed")
		return
	}
	data, err := EncodeTrayIcon(img)
	if err != nil {
		c.logger.Error().Err(err).Msg("icon encode failed")
		return
	}
	c.host.SetIcon(data)
}

func (c *TrayController) buildMenu(candidates []AdapterInfo) {
	c.host.AddMenuItem(fmt.Sprintf("%s v%s", appName, version), "").Disable()
	if gw := c.adapters.DefaultGateway(); gw != "" {
		c.host.AddMenuItem("Gateway: "+gw, "Default gateway").Disable()
	}

	startup := c.host.AddMenuItemCheckbox("Start at login", "Launch automatically when you sign in", c.current.StartupEnabled)
	c.bind(startup, trayAction{kind: actionToggleStartup})

	colorMenu := c.host.AddMenuItem("Icon color", "")
	light := colorMenu.AddSubMenuItemCheckbox("Light icon", "Black text on white", !c.current.UseDarkIcon)
	dark := colorMenu.AddSubMenuItemCheckbox("Dark icon", "White text on black", c.current.UseDarkIcon)
	c.bind(light, trayAction{kind: actionIconColor, dark: false})
	c.bind(dark, trayAction{kind: actionIconColor, dark: true})

	adapterMenu := c.host.AddMenuItem("Network adapter", "")
	if len(candidates) == 0 {
		adapterMenu.AddSubMenuItem("No adapter available", "").Disable()
	}
	for _, a := range candidates {
		item := adapterMenu.AddSubMenuItemCheckbox(a.Name, a.IPv4, a.Name == c.current.SelectedAdapter)
		c.bind(item, trayAction{kind: actionSelectAdapter, adapter: a.Name})
	}

	c.host.AddSeparator()
	exit := c.host.AddMenuItem("Exit", "Quit "+appName)
	c.bind(exit, trayAction{kind: actionExit})
}

// bind forwards clicks on item into the single action queue
func (c *TrayController) bind(item MenuItem, action trayAction) {
	clicked := item.Clicked()
	go func() {
		for {
			select {
			case <-clicked:
				select {
				case c.actions <- action:
				case <-c.done:
					return
				}
			case <-c.done:
				return
			}
		}
	}()
}

// dispatch handles actions one at a time until one of them ends the process
func (c *TrayController) dispatch() {
	for {
		select {
		case a := <-c.actions:
			if c.handle(a) {
				c.stop()
				c.host.Quit()
				return
			}
		case <-c.done:
			return
		}
	}
}

// handle runs a menu action to completion and reports whether the tray
// must now shut down.
func (c *TrayController) handle(a trayAction) bool {
	if c.State() != StateDisplaying {
		return false
	}

	var err error
	switch a.kind {
	case actionExit:
		c.setState(StateExited)
		return true
	case actionToggleStartup:
		err = c.prefs.SetStartupEnabled(!c.current.StartupEnabled)
	case actionIconColor:
		err = c.prefs.SetUseDarkIcon(a.dark)
	case actionSelectAdapter:
		err = c.prefs.SetSelectedAdapter(a.adapter)
	default:
		return false
	}

	// a failed write still restarts; the new instance shows what was persisted
	if err != nil {
		c.logger.Error().Err(err).Msg("saving preference failed")
	}
	c.setState(StateRestarting)
	return true
}
