package background

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietConfig(palette ...RGB) Config {
	cfg := DefaultConfig()
	cfg.BlinksPerSec = 0
	if len(palette) > 0 {
		cfg.Palette = palette
	}
	return cfg
}

func newAnimator(t *testing.T, cfg Config, seed int64) *Animator {
	t.Helper()
	a, err := New(cfg, rand.New(rand.NewSource(seed)))
	require.NoError(t, err)
	return a
}

func TestNewRejectsSmallPalette(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Palette = []RGB{{1, 2, 3}}
	_, err := New(cfg, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, ErrPaletteTooSmall)
}

func TestEase(t *testing.T) {
	assert.Equal(t, 0.0, Ease(0))
	assert.Equal(t, 1.0, Ease(1))
	assert.Equal(t, 0.5, Ease(0.5))
	assert.Less(t, Ease(0.25), 0.25, "ease should start slow")
	assert.Greater(t, Ease(0.75), 0.75, "ease should end slow")
}

func TestBuildGrid(t *testing.T) {
	a := newAnimator(t, quietConfig(), 1)
	a.Build(90, 60)

	w, h := a.Size()
	assert.Equal(t, 45, w)
	assert.Equal(t, 30, h)

	// cols = rows = 5, cells span [-2,5]x[-2,5] = 64, half of them kept.
	tiles := a.Tiles()
	require.Len(t, tiles, 32)

	for _, tile := range tiles {
		i := int(tile.CX / 45)
		j := int(tile.CY / 30)
		assert.Zero(t, ((i+j)%2+2)%2, "tile at (%v,%v) is off the checkerboard", tile.CX, tile.CY)
		assert.True(t, tile.Idle())
		assert.Equal(t, NoTarget, tile.Target)
		assert.Equal(t, a.Palette()[tile.Base], tile.Color)
	}
}

func TestBuildIsDeterministicForSeed(t *testing.T) {
	a := newAnimator(t, quietConfig(), 99)
	b := newAnimator(t, quietConfig(), 99)
	a.Build(640, 480)
	b.Build(640, 480)
	assert.Equal(t, a.Tiles(), b.Tiles())
}

func TestRebuildDiscardsState(t *testing.T) {
	a := newAnimator(t, quietConfig(), 3)
	a.Build(200, 200)
	tile := a.Tiles()[0]
	require.True(t, a.Blink(0, (tile.Base+1)%len(a.Palette())))
	a.Tick(1)

	a.Build(400, 100)
	for _, tile := range a.Tiles() {
		assert.True(t, tile.Idle())
	}
	w, h := a.Size()
	assert.Equal(t, 200, w)
	assert.Equal(t, 50, h)
}

func TestTileColorRoundTrip(t *testing.T) {
	a := newAnimator(t, quietConfig(RGB{10, 20, 30}, RGB{90, 80, 70}), 1)
	a.Build(10, 10)

	idx := -1
	for i, tile := range a.Tiles() {
		if tile.Base == 0 {
			idx = i
			break
		}
	}
	if idx < 0 {
		// Force a tile onto the first color.
		a.tiles[0].Base = 0
		a.tiles[0].Color = a.cfg.Palette[0]
		idx = 0
	}

	require.True(t, a.Blink(idx, 1))
	assert.False(t, a.Blink(idx, 1), "blinking tile must not restart")

	// BlinkSpeed 0.25 and dt 0.5 advance phase by exactly 0.125.
	for step := 1; step <= 8; step++ {
		assert.True(t, a.Tick(0.5))
	}
	tile := a.Tiles()[idx]
	assert.Equal(t, 1.0, tile.Phase)
	assert.Equal(t, RGB{90, 80, 70}, tile.Color, "phase 1 is the target color")

	for step := 0; step < 8; step++ {
		a.Tick(0.5)
	}
	tile = a.Tiles()[idx]
	assert.Equal(t, RGB{10, 20, 30}, tile.Color)
	assert.Equal(t, -1.0, tile.Phase)
	assert.Equal(t, NoTarget, tile.Target)

	assert.False(t, a.Tick(0.5), "idle grid must not request a redraw")
}

func TestBlinkRejectsBaseAndOutOfRange(t *testing.T) {
	a := newAnimator(t, quietConfig(), 5)
	a.Build(100, 100)
	tile := a.Tiles()[0]

	assert.False(t, a.Blink(0, tile.Base))
	assert.False(t, a.Blink(0, -1))
	assert.False(t, a.Blink(0, len(a.Palette())))
	assert.False(t, a.Blink(len(a.Tiles()), 0))
}

func TestTickDirtyFlag(t *testing.T) {
	a := newAnimator(t, quietConfig(), 11)
	a.Build(100, 100)

	assert.False(t, a.Tick(0.016))
	require.True(t, a.Blink(2, (a.Tiles()[2].Base+1)%len(a.Palette())))
	assert.True(t, a.Tick(0.016))
}

func TestPhaseInvariantUnderRandomBlinks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BlinksPerSec = 30
	a := newAnimator(t, cfg, 2024)
	a.Build(320, 240)

	started := 0
	for step := 0; step < 5000; step++ {
		a.Tick(1.0 / 60)
		for _, tile := range a.Tiles() {
			if tile.Idle() {
				require.Equal(t, NoTarget, tile.Target)
				require.Equal(t, -1.0, tile.Phase)
				require.Equal(t, a.Palette()[tile.Base], tile.Color)
			} else {
				started++
				require.NotEqual(t, NoTarget, tile.Target)
				require.NotEqual(t, tile.Base, tile.Target)
				require.GreaterOrEqual(t, tile.Phase, 0.0)
				require.Less(t, tile.Phase, 2.0)
			}
		}
	}
	assert.Positive(t, started, "expected some blinks to start")
}

func TestTickClampsNegativeDt(t *testing.T) {
	a := newAnimator(t, quietConfig(), 8)
	a.Build(100, 100)
	require.True(t, a.Blink(0, (a.Tiles()[0].Base+1)%len(a.Palette())))

	a.Tick(-5)
	assert.Equal(t, 0.0, a.Tiles()[0].Phase)
}

func TestDrawFillsTileCentres(t *testing.T) {
	a := newAnimator(t, quietConfig(), 17)
	a.Build(400, 300)
	a.Draw()

	canvas := a.Canvas()
	for _, tile := range a.Tiles() {
		x, y := int(tile.CX), int(tile.CY)
		if x < 0 || y < 0 || x >= canvas.Bounds().Dx() || y >= canvas.Bounds().Dy() {
			continue
		}
		c := canvas.RGBAAt(x, y)
		assert.Equal(t, RGB{c.R, c.G, c.B}, tile.Color, "tile at (%d,%d)", x, y)
		assert.Equal(t, uint8(255), c.A)
	}
}

func TestDrawCoversWholeCanvas(t *testing.T) {
	a := newAnimator(t, quietConfig(), 21)
	a.Build(333, 217)
	a.Draw()

	canvas := a.Canvas()
	b := canvas.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if canvas.RGBAAt(x, y).A != 255 {
				t.Fatalf("pixel (%d,%d) left uncovered", x, y)
			}
		}
	}
}
