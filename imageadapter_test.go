package gif_test

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdouchement/gif"
)

func TestToPalettedFromPalettedRoundTrip(t *testing.T) {
	table := gif.ColorTable{Entries: []gif.Color{
		{R: 0, G: 0, B: 0},
		{R: 255, G: 0, B: 0},
		{R: 0, G: 255, B: 0},
		{R: 0, G: 0, B: 255},
	}}
	indices := []byte{0, 1, 2, 3, 3, 2, 1, 0}
	const width, height = 4, 2

	m := gif.ToPaletted(width, height, indices, table)
	require.Equal(t, width, m.Bounds().Dx())
	require.Equal(t, height, m.Bounds().Dy())

	gotW, gotH, gotIndices, gotTable := gif.FromPaletted(m)
	assert.Equal(t, width, gotW)
	assert.Equal(t, height, gotH)
	assert.Equal(t, indices, gotIndices)

	for i, c := range table.Entries {
		assert.Equal(t, c, gotTable.Entries[i])
	}
}

func TestRemapProducesPalettedWithinTable(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	src.Set(0, 0, color.RGBA{R: 255, A: 255})
	src.Set(1, 0, color.RGBA{G: 255, A: 255})
	src.Set(0, 1, color.RGBA{B: 255, A: 255})
	src.Set(1, 1, color.RGBA{A: 255})

	table := gif.ColorTable{Entries: []gif.Color{
		{R: 0, G: 0, B: 0},
		{R: 255, G: 0, B: 0},
		{R: 0, G: 255, B: 0},
		{R: 0, G: 0, B: 255},
	}}

	dst := gif.Remap(src, table)
	assert.Equal(t, src.Bounds(), dst.Bounds())
	assert.Len(t, dst.Palette, len(table.Entries))
}
