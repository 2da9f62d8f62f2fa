// Package color carries the BGR color values used by the overlay
// renderer and the debug drawing helpers. OpenCV is BGR-native, so the
// struct stores channels in that order; ToRGBA converts at the gocv
// call boundary.
package color

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Color is a BGR triple matching OpenCV's channel order.
type Color struct {
	B, G, R uint8
}

// ToRGBA converts to the color.RGBA form gocv's drawing primitives
// take, with full opacity.
func (c Color) ToRGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// Palette used across the renderer and debug overlays.
var (
	Black   = Color{}
	White   = Color{B: 255, G: 255, R: 255}
	Red     = Color{R: 255}
	Green   = Color{G: 128}
	Blue    = Color{B: 255}
	Cyan    = Color{B: 255, G: 255}
	Magenta = Color{B: 255, R: 255}
	Yellow  = Color{G: 255, R: 255}
	HotPink = Color{B: 180, G: 105, R: 255}
)

// HexToBGR parses "#RGB" or "#RRGGBB" (leading # optional) into a
// Color, so style colors can be authored the way they are everywhere
// else while staying BGR in memory.
func HexToBGR(hex string) (Color, error) {
	hex = strings.TrimPrefix(hex, "#")

	switch len(hex) {
	case 3:
		// shorthand: each digit doubles
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 6:
	default:
		return Color{}, fmt.Errorf("invalid hex color length: %s (expected 3 or 6 chars)", hex)
	}

	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseUint(hex[2*i:2*i+2], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("invalid hex color: %s", hex)
		}
		ch[i] = uint8(v)
	}
	return Color{R: ch[0], G: ch[1], B: ch[2]}, nil
}
