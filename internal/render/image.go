package render

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	rowHeight    = 35
	headerHeight = 40
	titleHeight  = 40
	margin       = 5

	// FooterHeight is the blank band below the table in the raw render,
	// cropped off before the image is handed to the posting side
	FooterHeight = 160
)

var columnWidths = []int{40, 130, 110, 90, 60, 100, 200}

var (
	colorHeader = drawing.Color{R: 0xb0, G: 0xc4, B: 0xde, A: 0xff} // lightsteelblue
	colorGold   = drawing.Color{R: 0xff, G: 0xf1, B: 0x76, A: 0xff}
	colorSilver = drawing.Color{R: 0xe0, G: 0xe0, B: 0xe0, A: 0xff}
	colorBronze = drawing.Color{R: 0xd7, G: 0xa8, B: 0x6e, A: 0xff}
)

// cellFill maps a highlight to the speed-rank cell's fill and text colors
func cellFill(h Highlight) (fill, text drawing.Color) {
	switch h {
	case HighlightZeroSpeed:
		return drawing.ColorBlack, drawing.ColorWhite
	case HighlightGold:
		return colorGold, drawing.ColorBlack
	case HighlightSilver:
		return colorSilver, drawing.ColorBlack
	case HighlightBronze:
		return colorBronze, drawing.ColorBlack
	default:
		return drawing.ColorWhite, drawing.ColorBlack
	}
}

// RenderPNG draws the table as a PNG image with a title line on top. The
// returned bytes already have the footer band cropped off.
func RenderPNG(table Table, title string) ([]byte, error) {
	width := 2 * margin
	for _, w := range columnWidths {
		width += w
	}
	height := 2*margin + titleHeight + headerHeight + rowHeight*len(table.Rows) + FooterHeight

	r, err := chart.PNG(width, height)
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	font, err := chart.GetDefaultFont()
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}
	r.SetFont(font)

	// Background
	r.SetFillColor(drawing.ColorWhite)
	r.SetStrokeColor(drawing.ColorWhite)
	r.MoveTo(0, 0)
	r.LineTo(width, 0)
	r.LineTo(width, height)
	r.LineTo(0, height)
	r.Close()
	r.FillStroke()

	// Title
	r.SetFontColor(drawing.ColorBlack)
	r.SetFontSize(14)
	tb := r.MeasureText(title)
	r.Text(title, (width-tb.Width())/2, margin+(titleHeight+tb.Height())/2)

	y := margin + titleHeight

	// Header row
	r.SetFontSize(13)
	x := margin
	for i, h := range table.Header {
		drawCell(r, x, y, columnWidths[i], headerHeight, h, colorHeader, drawing.ColorBlack)
		x += columnWidths[i]
	}
	y += headerHeight

	// Data rows
	r.SetFontSize(12)
	for rowIdx, row := range table.Rows {
		x = margin
		for colIdx, cellText := range row {
			fill, textColor := drawing.ColorWhite, drawing.ColorBlack
			if colIdx == speedRankColumn {
				fill, textColor = cellFill(table.Highlights[rowIdx])
			}
			drawCell(r, x, y, columnWidths[colIdx], rowHeight, cellText, fill, textColor)
			x += columnWidths[colIdx]
		}
		y += rowHeight
	}

	var buf bytes.Buffer
	if err := r.Save(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return CropBottom(buf.Bytes(), FooterHeight)
}

// drawCell draws one bordered cell with centered text
func drawCell(r chart.Renderer, x, y, w, h int, text string, fill, textColor drawing.Color) {
	r.SetFillColor(fill)
	r.SetStrokeColor(drawing.ColorBlack)
	r.SetStrokeWidth(1)
	r.MoveTo(x, y)
	r.LineTo(x+w, y)
	r.LineTo(x+w, y+h)
	r.LineTo(x, y+h)
	r.Close()
	r.FillStroke()

	r.SetFontColor(textColor)
	tb := r.MeasureText(text)
	r.Text(text, x+(w-tb.Width())/2, y+(h+tb.Height())/2)
}

// CropBottom removes px pixel rows from the bottom of a PNG image
func CropBottom(data []byte, px int) ([]byte, error) {
	if px <= 0 {
		return data, nil
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dy() <= px {
		return nil, fmt.Errorf("image height %d not taller than footer %d", bounds.Dy(), px)
	}

	sub, ok := img.(interface {
		SubImage(image.Rectangle) image.Image
	})
	if !ok {
		return nil, fmt.Errorf("image type %T does not support cropping", img)
	}
	cropped := sub.SubImage(image.Rect(bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y-px))

	var out bytes.Buffer
	if err := png.Encode(&out, cropped); err != nil {
		return nil, fmt.Errorf("failed to encode cropped image: %w", err)
	}
	return out.Bytes(), nil
}
