package tray

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"math"
	"runtime"
	"sync"
)

// IconState selects the tray icon colour.
type IconState string

const (
	IconIdle         IconState = "idle"
	IconConnected    IconState = "connected"
	IconDisconnected IconState = "disconnected"
)

const iconSize = 32

var iconColors = map[IconState]color.NRGBA{
	IconConnected:    {R: 30, G: 200, B: 90, A: 255},  // Green
	IconDisconnected: {R: 220, G: 55, B: 55, A: 255},  // Red
	IconIdle:         {R: 160, G: 160, B: 160, A: 255}, // Gray
}

var (
	iconOnce  sync.Once
	iconCache map[IconState][]byte
)

// Icon returns the encoded icon for state. Windows receives an ICO container
// with an embedded PNG; other platforms receive the PNG itself.
func Icon(state IconState) []byte {
	iconOnce.Do(func() {
		iconCache = make(map[IconState][]byte, len(iconColors))
		for s, c := range iconColors {
			data, err := renderPulseIcon(c)
			if err != nil {
				continue
			}
			if runtime.GOOS == "windows" {
				data = wrapICO(data, iconSize)
			}
			iconCache[s] = data
		}
	})
	if data, ok := iconCache[state]; ok {
		return data
	}
	return iconCache[IconIdle]
}

// renderPulseIcon draws a filled circle with a lighter ring, anti-aliased at
// the edge, on a transparent background.
func renderPulseIcon(c color.NRGBA) ([]byte, error) {
	img := image.NewNRGBA(image.Rect(0, 0, iconSize, iconSize))

	center := float64(iconSize-1) / 2
	outer := float64(iconSize)/2 - 1
	inner := outer * 0.62

	ring := color.NRGBA{
		R: lighten(c.R),
		G: lighten(c.G),
		B: lighten(c.B),
		A: c.A,
	}

	for y := 0; y < iconSize; y++ {
		for x := 0; x < iconSize; x++ {
			d := math.Hypot(float64(x)-center, float64(y)-center)
			if d > outer+0.5 {
				continue
			}
			px := ring
			if d <= inner {
				px = c
			}
			// soften the outer edge
			if edge := outer + 0.5 - d; edge < 1 {
				px.A = uint8(float64(px.A) * edge)
			}
			img.SetNRGBA(x, y, px)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func lighten(v uint8) uint8 {
	return v + (255-v)/3
}

// wrapICO wraps PNG data in a single-image ICO container.
func wrapICO(pngData []byte, size int) []byte {
	var buf bytes.Buffer
	buf.Grow(22 + len(pngData))

	// ICONDIR
	_ = binary.Write(&buf, binary.LittleEndian, [3]uint16{0, 1, 1})

	// ICONDIRENTRY
	dim := uint8(size)
	if size >= 256 {
		dim = 0
	}
	buf.Write([]byte{dim, dim, 0, 0})
	_ = binary.Write(&buf, binary.LittleEndian, [2]uint16{1, 32})
	_ = binary.Write(&buf, binary.LittleEndian, [2]uint32{uint32(len(pngData)), 22})

	buf.Write(pngData)
	return buf.Bytes()
}
