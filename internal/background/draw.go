package background

import (
	"image"
	"math"
)

// Draw clears the canvas and rasterises every tile as a filled diamond.
func (a *Animator) Draw() {
	pix := a.canvas.Pix
	for i := range pix {
		pix[i] = 0
	}
	for i := range a.tiles {
		a.fillDiamond(&a.tiles[i])
	}
}

func (a *Animator) fillDiamond(t *Tile) {
	b := a.canvas.Bounds()
	hw, hh := a.cfg.HalfWidth, a.cfg.HalfHeight

	y0 := max(b.Min.Y, int(math.Floor(t.CY-hh)))
	y1 := min(b.Max.Y, int(math.Ceil(t.CY+hh)))
	for y := y0; y < y1; y++ {
		// Sample at the pixel centre so shared edges are covered exactly once.
		half := hw * (1 - math.Abs(float64(y)+0.5-t.CY)/hh)
		if half <= 0 {
			continue
		}
		x0 := max(b.Min.X, int(math.Ceil(t.CX-half-0.5)))
		x1 := min(b.Max.X-1, int(math.Floor(t.CX+half-0.5)))
		row := a.canvas.PixOffset(0, y)
		for x := x0; x <= x1; x++ {
			o := row + x*4
			a.canvas.Pix[o] = t.Color[0]
			a.canvas.Pix[o+1] = t.Color[1]
			a.canvas.Pix[o+2] = t.Color[2]
			a.canvas.Pix[o+3] = 255
		}
	}
}

// Canvas returns the image the tiles are drawn into. Build replaces it.
func (a *Animator) Canvas() *image.RGBA {
	return a.canvas
}

// Size returns the canvas dimensions.
func (a *Animator) Size() (width, height int) {
	b := a.canvas.Bounds()
	return b.Dx(), b.Dy()
}
