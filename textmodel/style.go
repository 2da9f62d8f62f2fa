package textmodel

import (
	"github.com/nmichlo/texttrack/color"
)

// FontWeight mirrors the coarse weight distinction a Hershey-font rasterizer
// can actually honor (bold vs. regular stroke width), not a full OpenType
// weight scale.
type FontWeight int

const (
	WeightRegular FontWeight = iota
	WeightBold
)

// FontStyle mirrors the coarse slant distinction a Hershey-font rasterizer
// can honor.
type FontStyle int

const (
	StyleNormal FontStyle = iota
	StyleItalic
)

// HAlign is horizontal text alignment relative to the anchor's projected
// screen position.
type HAlign int

const (
	AlignLeft HAlign = iota
	AlignCenter
	AlignRight
)

// Baseline is vertical text placement relative to the anchor's projected
// screen position.
type Baseline int

const (
	BaselineMiddle Baseline = iota
	BaselineTop
	BaselineBottom
)

// Style is a text element's visual presentation. Color is BGR-native
// (gocv's drawing primitives expect BGR), but HexToBGR lets callers author
// colors as familiar "#RRGGBB" strings.
type Style struct {
	FontFamily string
	SizePt     float64
	Weight     FontWeight
	Style      FontStyle
	Color      color.Color
	Align      HAlign
	Baseline   Baseline
}

// DefaultStyle returns the construction defaults: white, bold, 38pt, Arial,
// center-aligned on the anchor with a middle baseline.
func DefaultStyle() Style {
	return Style{
		FontFamily: "Arial",
		SizePt:     38,
		Weight:     WeightBold,
		Style:      StyleNormal,
		Color:      color.White,
		Align:      AlignCenter,
		Baseline:   BaselineMiddle,
	}
}
