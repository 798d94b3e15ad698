// Package background animates the diamond-tile backdrop: a checkerboard of
// pastel tiles where random tiles blink to another palette color and back.
package background

import (
	"errors"
	"image"
	"math"
	"math/rand"
)

// NoTarget marks a tile that is not blinking.
const NoTarget = -1

const idlePhase = -1

// ErrPaletteTooSmall is returned when a blink could never find a different color.
var ErrPaletteTooSmall = errors.New("background: palette needs at least two colors")

// RGB is an 8-bit color triple.
type RGB [3]uint8

// Config holds the animator tuning.
type Config struct {
	Scale        float64 // canvas pixels per viewport pixel
	HalfWidth    float64 // half horizontal diagonal of a tile, canvas pixels
	HalfHeight   float64 // half vertical diagonal of a tile, canvas pixels
	BlinkSpeed   float64 // phase units per second; a full blink is 2 units
	BlinksPerSec float64 // mean blink starts per second
	Palette      []RGB
}

// DefaultConfig returns the stock pastel backdrop.
func DefaultConfig() Config {
	return Config{
		Scale:        0.5,
		HalfWidth:    45,
		HalfHeight:   30,
		BlinkSpeed:   0.25,
		BlinksPerSec: 3,
		Palette: []RGB{
			{250, 200, 210},
			{200, 220, 245},
			{205, 240, 205},
			{250, 248, 210},
			{225, 210, 245},
			{250, 225, 205},
			{205, 240, 230},
		},
	}
}

// Tile is one diamond of the backdrop. Base and Target are palette indices.
// Phase is negative while idle and in [0,2) while blinking.
type Tile struct {
	CX, CY float64
	Base   int
	Target int
	Color  RGB
	Phase  float64
}

// Idle reports whether the tile is resting on its base color.
func (t *Tile) Idle() bool {
	return t.Phase < 0
}

// Animator owns the tile grid and the canvas it is drawn into.
type Animator struct {
	cfg    Config
	rng    *rand.Rand
	tiles  []Tile
	canvas *image.RGBA
}

// New creates an animator. Call Build before the first Tick.
func New(cfg Config, rng *rand.Rand) (*Animator, error) {
	if len(cfg.Palette) < 2 {
		return nil, ErrPaletteTooSmall
	}
	return &Animator{
		cfg:    cfg,
		rng:    rng,
		canvas: image.NewRGBA(image.Rect(0, 0, 0, 0)),
	}, nil
}

// Build discards all tile state and lays out a fresh grid covering a
// viewport of the given size, with a two-tile margin on every side.
func (a *Animator) Build(width, height int) {
	w := int(math.Ceil(float64(width) * a.cfg.Scale))
	h := int(math.Ceil(float64(height) * a.cfg.Scale))
	a.canvas = image.NewRGBA(image.Rect(0, 0, w, h))

	cols := int(math.Ceil(float64(w)/a.cfg.HalfWidth)) + 4
	rows := int(math.Ceil(float64(h)/a.cfg.HalfHeight)) + 4

	a.tiles = a.tiles[:0]
	for j := -2; j <= rows; j++ {
		for i := -2; i <= cols; i++ {
			if ((i+j)%2+2)%2 != 0 {
				continue
			}
			base := a.rng.Intn(len(a.cfg.Palette))
			a.tiles = append(a.tiles, Tile{
				CX:     float64(i) * a.cfg.HalfWidth,
				CY:     float64(j) * a.cfg.HalfHeight,
				Base:   base,
				Target: NoTarget,
				Color:  a.cfg.Palette[base],
				Phase:  idlePhase,
			})
		}
	}
}

// Tick advances every blinking tile by dt seconds and may start one new
// blink. It reports whether anything changed, i.e. whether the canvas needs
// a redraw.
func (a *Animator) Tick(dt float64) bool {
	if dt < 0 {
		dt = 0
	}
	dirty := false

	// Bernoulli approximation of a Poisson process; saturates at one start per tick.
	p := math.Min(1, a.cfg.BlinksPerSec*dt)
	if len(a.tiles) > 0 && a.rng.Float64() < p {
		if a.startBlink(a.rng.Intn(len(a.tiles)), a.randomTarget) {
			dirty = true
		}
	}

	for i := range a.tiles {
		t := &a.tiles[i]
		if t.Idle() {
			continue
		}
		dirty = true
		a.advance(t, dt)
	}

	return dirty
}

// Blink starts tile i blinking toward the given palette index. It returns
// false when the tile is already blinking or the target is unusable.
func (a *Animator) Blink(i, target int) bool {
	if target < 0 || target >= len(a.cfg.Palette) {
		return false
	}
	return a.startBlink(i, func(int) int { return target })
}

func (a *Animator) startBlink(i int, pick func(base int) int) bool {
	if i < 0 || i >= len(a.tiles) {
		return false
	}
	t := &a.tiles[i]
	if !t.Idle() {
		return false
	}
	target := pick(t.Base)
	if target == t.Base {
		return false
	}
	t.Target = target
	t.Phase = 0
	return true
}

// randomTarget draws uniformly from every palette index except base.
func (a *Animator) randomTarget(base int) int {
	idx := a.rng.Intn(len(a.cfg.Palette) - 1)
	if idx >= base {
		idx++
	}
	return idx
}

func (a *Animator) advance(t *Tile, dt float64) {
	t.Phase += a.cfg.BlinkSpeed * dt

	base := a.cfg.Palette[t.Base]
	target := a.cfg.Palette[t.Target]

	switch {
	case t.Phase < 1:
		t.Color = lerp(base, target, Ease(t.Phase))
	case t.Phase < 2:
		t.Color = lerp(target, base, Ease(t.Phase-1))
	default:
		t.Color = base
		t.Target = NoTarget
		t.Phase = idlePhase
	}
}

// Ease is the smoothstep curve t²(3−2t).
func Ease(t float64) float64 {
	return t * t * (3 - 2*t)
}

func lerp(from, to RGB, f float64) RGB {
	var out RGB
	for c := 0; c < 3; c++ {
		v := float64(from[c]) + (float64(to[c])-float64(from[c]))*f
		out[c] = uint8(math.Round(v))
	}
	return out
}

// Tiles returns the current tiles. The slice is owned by the animator.
func (a *Animator) Tiles() []Tile {
	return a.tiles
}

// Palette returns the configured colors.
func (a *Animator) Palette() []RGB {
	return a.cfg.Palette
}
