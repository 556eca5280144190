package render

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yorune/t10-bot/internal/ranking"
)

func TestRenderPNGDimensions(t *testing.T) {
	entries := []ranking.Entry{
		rankedEntry(1, 1, 1500, 500, 1),
		rankedEntry(2, 2, 500, 0, 2),
	}
	table := BuildTable(entries, "Alice")

	data, err := RenderPNG(table, "title line")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	wantWidth := 2 * margin
	for _, w := range columnWidths {
		wantWidth += w
	}
	// The footer band is already cropped off
	wantHeight := 2*margin + titleHeight + headerHeight + rowHeight*len(table.Rows)

	assert.Equal(t, wantWidth, img.Bounds().Dx())
	assert.Equal(t, wantHeight, img.Bounds().Dy())
}

func TestCropBottom(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 10, 10))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	cropped, err := CropBottom(buf.Bytes(), 4)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(cropped))
	require.NoError(t, err)
	assert.Equal(t, 10, img.Bounds().Dx())
	assert.Equal(t, 6, img.Bounds().Dy())
}

func TestCropBottomNoop(t *testing.T) {
	data := []byte("not even a png")
	out, err := CropBottom(data, 0)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestCropBottomTallerThanImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 10, 10))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	_, err := CropBottom(buf.Bytes(), 10)
	assert.Error(t, err)
}
