package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/acarlson/crossgen/grid"
	"github.com/acarlson/crossgen/solver"
)

// ImageOptions controls cell geometry in SaveImage. The zero value is
// not usable; use DefaultImageOptions.
type ImageOptions struct {
	CellSize   int
	CellBorder int
}

func DefaultImageOptions() ImageOptions {
	return ImageOptions{CellSize: 100, CellBorder: 2}
}

// SaveImage writes the fill as a PNG: white cells on a black background
// with centered letters. Blocked cells stay black.
func SaveImage(g *grid.Grid, asgn solver.Assignment, filename string, opts ImageOptions) error {
	if opts.CellSize <= 2*opts.CellBorder {
		return fmt.Errorf("cell size %d too small for border %d", opts.CellSize, opts.CellBorder)
	}
	letters := Letters(g, asgn)
	img := image.NewRGBA(image.Rect(0, 0, g.Width()*opts.CellSize, g.Height()*opts.CellSize))
	fill(img, img.Bounds(), color.Black)

	interior := opts.CellSize - 2*opts.CellBorder
	for i := 0; i < g.Height(); i++ {
		for j := 0; j < g.Width(); j++ {
			if !g.Open(i, j) {
				continue
			}
			cell := image.Rect(
				j*opts.CellSize+opts.CellBorder,
				i*opts.CellSize+opts.CellBorder,
				(j+1)*opts.CellSize-opts.CellBorder,
				(i+1)*opts.CellSize-opts.CellBorder,
			)
			fill(img, cell, color.White)
			if letters[i][j] != 0 {
				drawLetter(img, cell, letters[i][j], interior)
			}
		}
	}

	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func fill(img *image.RGBA, r image.Rectangle, c color.Color) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.Set(x, y, c)
		}
	}
}

// drawLetter rasterizes the glyph at basicfont scale and nearest-neighbor
// scales it into the cell interior, leaving a margin on each side.
func drawLetter(dst *image.RGBA, cell image.Rectangle, r rune, interior int) {
	face := basicfont.Face7x13
	small := image.NewRGBA(image.Rect(0, 0, face.Advance, face.Height))
	fill(small, small.Bounds(), color.White)
	d := &font.Drawer{
		Dst:  small,
		Src:  image.Black,
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	d.DrawString(string(r))

	margin := interior / 5
	target := image.Rect(
		cell.Min.X+margin, cell.Min.Y+margin,
		cell.Max.X-margin, cell.Max.Y-margin,
	)
	xdraw.NearestNeighbor.Scale(dst, target, small, small.Bounds(), xdraw.Over, nil)
}
