package main

import (
	"errors"
	"net"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

type fakeItem struct {
	title    string
	checked  bool
	disabled bool
	children []*fakeItem
	clicks   chan struct{}
}

func newFakeItem(title string, checked bool) *fakeItem {
	return &fakeItem{title: title, checked: checked, clicks: make(chan struct{})}
}

func (i *fakeItem) AddSubMenuItem(title, tooltip string) MenuItem {
	child := newFakeItem(title, false)
	i.children = append(i.children, child)
	return child
}

func (i *fakeItem) AddSubMenuItemCheckbox(title, tooltip string, checked bool) MenuItem {
	child := newFakeItem(title, checked)
	i.children = append(i.children, child)
	return child
}

func (i *fakeItem) Disable()                 { i.disabled = true }
func (i *fakeItem) Clicked() <-chan struct{} { return i.clicks }

type fakeHost struct {
	icon     []byte
	tooltip  string
	items    []*fakeItem
	quit     chan struct{}
	quitOnce sync.Once
}

func newFakeHost() *fakeHost {
	return &fakeHost{quit: make(chan struct{})}
}

func (h *fakeHost) SetIcon(icon []byte)    { h.icon = icon }
func (h *fakeHost) SetTooltip(text string) { h.tooltip = text }
func (h *fakeHost) AddSeparator()          { h.items = append(h.items, newFakeItem("---", false)) }
func (h *fakeHost) Quit()                  { h.quitOnce.Do(func() { close(h.quit) }) }

func (h *fakeHost) AddMenuItem(title, tooltip string) MenuItem {
	item := newFakeItem(title, false)
	h.items = append(h.items, item)
	return item
}

func (h *fakeHost) AddMenuItemCheckbox(title, tooltip string, checked bool) MenuItem {
	item := newFakeItem(title, checked)
	h.items = append(h.items, item)
	return item
}

func (h *fakeHost) find(title string) *fakeItem {
	for _, item := range h.items {
		if item.title == title {
			return item
		}
		for _, child := range item.children {
			if child.title == title {
				return child
			}
		}
	}
	return nil
}

type fakeRelauncher struct {
	calls int
	err   error
}

func (f *fakeRelauncher) Relaunch() error {
	f.calls++
	return f.err
}

type controllerFixture struct {
	host       *fakeHost
	values     *memoryStore
	startup    *fakeRegistrar
	relauncher *fakeRelauncher
	controller *TrayController
}

func newControllerFixture(t *testing.T, adapters ...AdapterInfo) *controllerFixture {
	t.Helper()
	prefs, values, startup := newTestPreferences()
	f := &controllerFixture{
		host:       newFakeHost(),
		values:     values,
		startup:    startup,
		relauncher: &fakeRelauncher{},
	}
	f.controller = NewTrayController(f.host, prefs, newTestLookup(adapters...),
		newTestRenderer(t), f.relauncher, zerolog.Nop())
	t.Cleanup(f.controller.stop)
	return f
}

// click sends a click and waits for the controller to quit the host
func (f *controllerFixture) click(t *testing.T, title string) {
	t.Helper()
	item := f.host.find(title)
	if item == nil {
		t.Fatalf("menu item %q not found", title)
	}
	select {
	case item.clicks <- struct{}{}:
	case <-time.After(2 * time.Second):
		t.Fatalf("click on %q not consumed", title)
	}
	select {
	case <-f.host.quit:
	case <-time.After(2 * time.Second):
		t.Fatalf("tray did not quit after clicking %q", title)
	}
}

var (
	ethernet = AdapterInfo{Name: "Ethernet", IsUp: true, Kind: AdapterEthernet, IPv4: "192.168.1.42"}
	wifi     = AdapterInfo{Name: "Wi-Fi", IsUp: true, Kind: AdapterWireless, IPv4: "10.0.0.7"}
)

func TestControllerState_String(t *testing.T) {
	tests := []struct {
		state    ControllerState
		expected string
	}{
		{StateInitializing, "initializing"},
		{StateDisplaying, "displaying"},
		{StateRestarting, "restarting"},
		{StateExited, "exited"},
		{ControllerState(9), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.expected {
			t.Errorf("ControllerState(%d).String() = %v, want %v", tt.state, got, tt.expected)
		}
	}
}

func TestTrayController_Displays(t *testing.T) {
	f := newControllerFixture(t, ethernet, wifi)
	f.values.strings[valueSelectedAdapter] = "Wi-Fi"

	if got := f.controller.State(); got != StateInitializing {
		t.Fatalf("initial state = %v, want initializing", got)
	}
	f.controller.OnReady()

	if got := f.controller.State(); got != StateDisplaying {
		t.Errorf("state = %v, want displaying", got)
	}
	if len(f.host.icon) == 0 {
		t.Error("no icon set")
	}
	if f.host.tooltip != "Wi-Fi: 10.0.0.7" {
		t.Errorf("tooltip = %q, want %q", f.host.tooltip, "Wi-Fi: 10.0.0.7")
	}

	header := f.host.items[0]
	if !strings.HasPrefix(header.title, appName+" v") || !header.disabled {
		t.Errorf("header = %+v, want disabled %s version entry", header, appName)
	}
	if !f.host.find("Light icon").checked || f.host.find("Dark icon").checked {
		t.Errorf("color checks wrong: light=%v dark=%v", f.host.find("Light icon").checked, f.host.find("Dark icon").checked)
	}
	if !f.host.find("Wi-Fi").checked || f.host.find("Ethernet").checked {
		t.Error("only the stored adapter should be checked")
	}
	if f.host.find("Start at login").checked {
		t.Error("startup checked without a registration")
	}
	if f.host.find("No adapter available") != nil {
		t.Error("placeholder shown while adapters exist")
	}
}

func TestTrayController_NoAdapters(t *testing.T) {
	f := newControllerFixture(t)
	f.controller.OnReady()

	placeholder := f.host.find("No adapter available")
	if placeholder == nil || !placeholder.disabled {
		t.Fatalf("placeholder = %+v, want disabled entry", placeholder)
	}
	if f.host.tooltip != fallbackIPv4 {
		t.Errorf("tooltip = %q, want %q", f.host.tooltip, fallbackIPv4)
	}
}

func TestTrayController_GatewayEntry(t *testing.T) {
	f := newControllerFixture(t, ethernet)
	f.controller.adapters.discoverGateway = func() (net.IP, error) { return net.IPv4(192, 168, 1, 1), nil }
	f.controller.OnReady()

	item := f.host.find("Gateway: 192.168.1.1")
	if item == nil || !item.disabled {
		t.Errorf("gateway entry = %+v, want disabled entry", item)
	}
}

func TestTrayController_IconState(t *testing.T) {
	tests := []struct {
		name     string
		selected string
		dark     bool
		adapters []AdapterInfo
		expected TrayIconState
	}{
		{
			name:     "auto pick",
			adapters: []AdapterInfo{ethernet},
			expected: TrayIconState{LastOctet: "42", Tooltip: "Ethernet: 192.168.1.42"},
		},
		{
			name:     "selected missing",
			selected: "VPN",
			dark:     true,
			adapters: []AdapterInfo{ethernet},
			expected: TrayIconState{LastOctet: "0", Dark: true, Tooltip: "VPN: 0.0.0.0"},
		},
		{
			name:     "nothing up",
			expected: TrayIconState{LastOctet: "0", Tooltip: "0.0.0.0"},
		},
		{
			name:     "long name truncated",
			selected: strings.Repeat("x", 200),
			expected: TrayIconState{LastOctet: "0", Tooltip: strings.Repeat("x", maxTooltipLen)},
		},
		{
			name:     "astral name truncated on pair boundary",
			selected: strings.Repeat("\U0001F310", 100),
			expected: TrayIconState{LastOctet: "0", Tooltip: strings.Repeat("\U0001F310", maxTooltipLen/2)},
		},
		{
			name:     "up adapter without address keeps its name",
			adapters: []AdapterInfo{{Name: "Ethernet 2", IsUp: true, Kind: AdapterEthernet}},
			expected: TrayIconState{LastOctet: "0", Tooltip: "Ethernet 2: 0.0.0.0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newControllerFixture(t, tt.adapters...)
			f.controller.current = Preferences{SelectedAdapter: tt.selected, UseDarkIcon: tt.dark}
			if got := f.controller.iconState(); got != tt.expected {
				t.Errorf("iconState() = %+v, want %+v", got, tt.expected)
			}
		})
	}
}

func TestTruncateUTF16(t *testing.T) {
	globe := "\U0001F310"
	tests := []struct {
		name     string
		input    string
		limit    int
		expected string
	}{
		{"short", "Wi-Fi: 10.0.0.7", maxTooltipLen, "Wi-Fi: 10.0.0.7"},
		{"exact", "abcd", 4, "abcd"},
		{"bmp runes", "äöüß", 2, "äö"},
		{"pair fits", "a" + globe, 3, "a" + globe},
		{"pair would split", "ab" + globe, 3, "ab"},
		{"zero limit", "abc", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateUTF16(tt.input, tt.limit)
			if got != tt.expected {
				t.Errorf("truncateUTF16(%q, %d) = %q, want %q", tt.input, tt.limit, got, tt.expected)
			}
			if n := len(utf16.Encode([]rune(got))); n > tt.limit {
				t.Errorf("truncateUTF16(%q, %d) is %d UTF-16 units", tt.input, tt.limit, n)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncateUTF16(%q, %d) = %q, not valid UTF-8", tt.input, tt.limit, got)
			}
		})
	}
}

func TestTrayController_SelectAdapterRestarts(t *testing.T) {
	f := newControllerFixture(t, ethernet, wifi)
	f.controller.OnReady()

	f.click(t, "Ethernet")

	if got := f.values.strings[valueSelectedAdapter]; got != "Ethernet" {
		t.Errorf("stored adapter = %q, want Ethernet", got)
	}
	if got := f.controller.State(); got != StateRestarting {
		t.Errorf("state = %v, want restarting", got)
	}

	f.controller.OnExit()
	if f.relauncher.calls != 1 {
		t.Errorf("relaunch calls = %d, want 1", f.relauncher.calls)
	}
}

func TestTrayController_IconColorRestarts(t *testing.T) {
	f := newControllerFixture(t, ethernet)
	f.controller.OnReady()

	f.click(t, "Dark icon")

	if got := f.values.integers[valueUseDarkIcon]; got != 1 {
		t.Errorf("stored %s = %d, want 1", valueUseDarkIcon, got)
	}
	f.controller.OnExit()
	if f.relauncher.calls != 1 {
		t.Errorf("relaunch calls = %d, want 1", f.relauncher.calls)
	}
}

func TestTrayController_StartupToggle(t *testing.T) {
	f := newControllerFixture(t, ethernet)
	f.startup.path = `C:\old\IPv4InTray.exe`
	f.controller.OnReady()

	if !f.host.find("Start at login").checked {
		t.Fatal("startup entry not checked while registered")
	}

	f.click(t, "Start at login")

	if f.startup.path != "" {
		t.Errorf("startup still registered at %q", f.startup.path)
	}
	if got := f.controller.State(); got != StateRestarting {
		t.Errorf("state = %v, want restarting", got)
	}
}

func TestTrayController_WriteFailureStillRestarts(t *testing.T) {
	f := newControllerFixture(t, ethernet)
	f.values.writeErr = errors.New("access denied")
	f.controller.OnReady()

	f.click(t, "Light icon")

	if got := f.controller.State(); got != StateRestarting {
		t.Errorf("state = %v, want restarting", got)
	}
	f.controller.OnExit()
	if f.relauncher.calls != 1 {
		t.Errorf("relaunch calls = %d, want 1", f.relauncher.calls)
	}
}

func TestTrayController_ExitDoesNotRelaunch(t *testing.T) {
	f := newControllerFixture(t, ethernet)
	f.controller.OnReady()

	f.click(t, "Exit")

	if got := f.controller.State(); got != StateExited {
		t.Errorf("state = %v, want exited", got)
	}
	f.controller.OnExit()
	if f.relauncher.calls != 0 {
		t.Errorf("relaunch calls = %d, want 0", f.relauncher.calls)
	}
	if len(f.values.integers) != 0 || len(f.values.strings) != 0 {
		t.Error("exit wrote preferences")
	}
}

func TestTrayController_RelaunchFailureIsSwallowed(t *testing.T) {
	f := newControllerFixture(t, ethernet)
	f.relauncher.err = errors.New("not found")
	f.controller.OnReady()

	f.click(t, "Ethernet")
	f.controller.OnExit()

	if f.relauncher.calls != 1 {
		t.Errorf("relaunch calls = %d, want 1", f.relauncher.calls)
	}
}

func TestTrayController_IgnoresActionsAfterTerminal(t *testing.T) {
	f := newControllerFixture(t, ethernet, wifi)
	f.controller.OnReady()
	f.controller.stop()

	if !f.controller.handle(trayAction{kind: actionSelectAdapter, adapter: "Wi-Fi"}) {
		t.Fatal("first action did not end the session")
	}
	if f.controller.handle(trayAction{kind: actionIconColor, dark: true}) {
		t.Error("second action was handled after restart began")
	}
	if _, ok := f.values.integers[valueUseDarkIcon]; ok {
		t.Error("second action wrote a preference")
	}
}
