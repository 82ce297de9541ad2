//go:build !windows

package main

import "image"

// EncodeTrayIcon encodes img as PNG, which the macOS and Linux tray backends load directly
func EncodeTrayIcon(img image.Image) ([]byte, error) {
	return encodePNG(img)
}
