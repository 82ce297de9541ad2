package main

import "github.com/getlantern/systray"

// TrayHost is the notification-area icon and its context menu
type TrayHost interface {
	SetIcon(icon []byte)
	SetTooltip(text string)
	AddMenuItem(title, tooltip string) MenuItem
	AddMenuItemCheckbox(title, tooltip string, checked bool) MenuItem
	AddSeparator()
	Quit()
}

// MenuItem is one entry of the tray menu
type MenuItem interface {
	AddSubMenuItem(title, tooltip string) MenuItem
	AddSubMenuItemCheckbox(title, tooltip string, checked bool) MenuItem
	Disable()
	Clicked() <-chan struct{}
}

// systrayHost forwards to the process-wide systray package
type systrayHost struct{}

func (systrayHost) SetIcon(icon []byte)    { systray.SetIcon(icon) }
func (systrayHost) SetTooltip(text string) { systray.SetTooltip(text) }
func (systrayHost) AddSeparator()          { systray.AddSeparator() }
func (systrayHost) Quit()                  { systray.Quit() }

func (systrayHost) AddMenuItem(title, tooltip string) MenuItem {
	return systrayItem{systray.AddMenuItem(title, tooltip)}
}

func (systrayHost) AddMenuItemCheckbox(title, tooltip string, checked bool) MenuItem {
	return systrayItem{systray.AddMenuItemCheckbox(title, tooltip, checked)}
}

type systrayItem struct {
	item *systray.MenuItem
}

func (i systrayItem) AddSubMenuItem(title, tooltip string) MenuItem {
	return systrayItem{i.item.AddSubMenuItem(title, tooltip)}
}

func (i systrayItem) AddSubMenuItemCheckbox(title, tooltip string, checked bool) MenuItem {
	return systrayItem{i.item.AddSubMenuItemCheckbox(title, tooltip, checked)}
}

func (i systrayItem) Disable()                 { i.item.Disable() }
func (i systrayItem) Clicked() <-chan struct{} { return i.item.ClickedCh }

// runTray blocks in the OS UI loop until the controller quits
func runTray(c *TrayController) {
	systray.Run(c.OnReady, c.OnExit)
}
