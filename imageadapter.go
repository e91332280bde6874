package gif

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// ToPaletted and FromPaletted bridge the codec's raw index-buffer/
// ColorTable representation to the standard image.Paletted type, so
// callers can use image/draw and other image/* tooling without the
// Reader and Writer depending on them. Grounded on the
// teacher's decodeRGB/decodeLogL/decodeLogLuv/decodeColorFilterArray
// (dead code in the teacher itself, see DESIGN.md): each is a tight
// loop converting one decoder-native sample representation into a
// standard image.Image by walking rows then columns and writing one
// pixel at a time — the same shape used here, generalized from
// per-channel float samples to single-byte palette indices.

// ToPaletted builds an image.Paletted from a width*height index buffer
// and the ColorTable that was in force for the image (global or local),
// per spec.md §4.1/§6.1. The color table is padded to 256 entries with
// black so every possible index byte maps to a defined color, matching
// how image.Paletted always carries a full color.Palette.
func ToPaletted(width, height int, indices []byte, table ColorTable) *image.Paletted {
	palette := make(color.Palette, 256)
	entries := padColorTable(table.Entries, 256)
	for i, c := range entries {
		palette[i] = color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
	}

	m := image.NewPaletted(image.Rect(0, 0, width, height), palette)
	copy(m.Pix, indices)
	return m
}

// FromPaletted extracts the index buffer and color table from an
// image.Paletted, in row-major order matching spec.md §4.1's ReadImageData/
// WriteImageData layout. If src's palette has fewer than 256 entries only
// the entries actually present are returned; callers writing a color
// table of a specific declared size should pad via their own logic or
// size the palette accordingly before calling.
func FromPaletted(src *image.Paletted) (width, height int, indices []byte, table ColorTable) {
	b := src.Bounds()
	width, height = b.Dx(), b.Dy()
	indices = make([]byte, width*height)
	if b.Min == (image.Point{}) && src.Stride == width {
		copy(indices, src.Pix)
	} else {
		for y := 0; y < height; y++ {
			row := src.Pix[(y)*src.Stride : (y)*src.Stride+width]
			copy(indices[y*width:(y+1)*width], row)
		}
	}

	entries := make([]Color, len(src.Palette))
	for i, c := range src.Palette {
		r, g, b, _ := c.RGBA()
		entries[i] = Color{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}
	}
	return width, height, indices, ColorTable{Entries: entries}
}

// Remap converts an arbitrary image.Image to an image.Paletted against
// table using Floyd-Steinberg dithering, via golang.org/x/image/draw.
// This is a convenience for producers that start from a full-color
// source image rather than an already-indexed one.
func Remap(src image.Image, table ColorTable) *image.Paletted {
	palette := make(color.Palette, len(table.Entries))
	for i, c := range table.Entries {
		palette[i] = color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
	}
	dst := image.NewPaletted(src.Bounds(), palette)
	draw.FloydSteinberg.Draw(dst, src.Bounds(), src, image.Point{})
	return dst
}
