//go:build windows

package main

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
)

const (
	icoResourceIcon = 1  // ICONDIR.idType for .ico files
	icoColorPlanes  = 1  // ICONDIRENTRY.wPlanes
	icoBitsPerPixel = 32 // ICONDIRENTRY.wBitCount, RGBA
)

// icoHeader is the ICONDIR that opens every icon file
type icoHeader struct {
	Reserved uint16
	Type     uint16
	Count    uint16
}

// icoEntry describes one image inside the file
type icoEntry struct {
	Width      uint8
	Height     uint8
	Palette    uint8
	Reserved   uint8
	Planes     uint16
	BitCount   uint16
	DataSize   uint32
	DataOffset uint32
}

// EncodeTrayIcon encodes img as an ICO holding a single PNG image, which
// LoadImage accepts since Vista.
func EncodeTrayIcon(img image.Image) ([]byte, error) {
	pngData, err := encodePNG(img)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	header := icoHeader{Type: icoResourceIcon, Count: 1}
	entry := icoEntry{
		Width:      icoDimension(bounds.Dx()),
		Height:     icoDimension(bounds.Dy()),
		Planes:     icoColorPlanes,
		BitCount:   icoBitsPerPixel,
		DataSize:   uint32(len(pngData)),
		DataOffset: uint32(binary.Size(icoHeader{}) + binary.Size(icoEntry{})),
	}

	var buf bytes.Buffer
	for _, part := range []any{header, entry} {
		if err := binary.Write(&buf, binary.LittleEndian, part); err != nil {
			return nil, fmt.Errorf("error writing icon directory: %w", err)
		}
	}
	buf.Write(pngData)
	return buf.Bytes(), nil
}

// icoDimension stores a pixel size in one byte; 0 stands for 256
func icoDimension(n int) uint8 {
	if n >= 256 {
		return 0
	}
	return uint8(n)
}
