package domain

import (
	"regexp"
	"strings"
)

// PaletteSize is the number of colors in every sketch palette.
const PaletteSize = 5

var (
	// GreyscalePalette pads palettes the refiner under-supplied.
	GreyscalePalette = []string{"#ffffff", "#888888", "#444444", "#222222", "#000000"}
	// FallbackPalette is used when refinement failed entirely.
	FallbackPalette = []string{"#333333", "#555555", "#777777", "#999999", "#bbbbbb"}
)

var hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// IsHexColor reports whether c is a #rgb or #rrggbb color.
func IsHexColor(c string) bool {
	return hexColorPattern.MatchString(c)
}

// NormalizePalette returns exactly PaletteSize colors. Invalid entries are
// dropped, extra entries truncated, and missing positions filled from the
// greyscale palette.
func NormalizePalette(colors []string) []string {
	out := make([]string, 0, PaletteSize)
	for _, c := range colors {
		c = strings.TrimSpace(c)
		if !IsHexColor(c) {
			continue
		}
		out = append(out, c)
		if len(out) == PaletteSize {
			return out
		}
	}
	for i := len(out); i < PaletteSize; i++ {
		out = append(out, GreyscalePalette[i])
	}
	return out
}

// CopyPalette returns a fresh copy of one of the fixed palettes.
func CopyPalette(p []string) []string {
	return append([]string(nil), p...)
}
