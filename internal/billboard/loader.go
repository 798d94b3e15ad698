package billboard

import (
	"context"
	"image"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/snowglobe/internal/engine/texture"
	"github.com/Faultbox/snowglobe/internal/logger"
)

// Source reads asset bytes by path. Stills are decoded once, so sources
// should not cache them.
type Source interface {
	Read(path string) ([]byte, error)
}

// Decoded is a still decoded off the frame thread, ready for upload.
type Decoded struct {
	Index int
	Path  string
	Image *image.RGBA
}

// UploadFunc turns a decoded still into a texture. It runs on the frame
// goroutine.
type UploadFunc func(Decoded) (*Texture, error)

// LoaderConfig holds decode settings.
type LoaderConfig struct {
	Workers        int // concurrent decodes
	MaxTextureSide int // larger stills are downscaled; 0 keeps the original size
}

// Loader decodes stills in the background and hands them to a Selector.
type Loader struct {
	src     Source
	sel     *Selector
	cfg     LoaderConfig
	results <-chan Decoded
	done    chan struct{}
	err     error
	pending atomic.Int32
	failed  atomic.Int32
	log     *zap.Logger
}

// NewLoader creates a loader feeding sel.
func NewLoader(src Source, sel *Selector, cfg LoaderConfig) *Loader {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Loader{
		src: src,
		sel: sel,
		cfg: cfg,
		log: logger.Named("billboard"),
	}
}

// Start begins decoding every point. It returns immediately; results are
// collected by Poll. Cancelling ctx stops loads that have not started.
func (l *Loader) Start(ctx context.Context, points []Point) {
	paths := make([]string, len(points))
	for i := range points {
		paths[i] = points[i].Path
	}
	results := make(chan Decoded, len(points))
	l.results = results
	l.done = make(chan struct{})
	l.pending.Store(int32(len(points)))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.cfg.Workers)

	go func() {
		defer close(l.done)
		dispatched := 0
		for idx, path := range paths {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				return l.decode(gctx, results, idx, path)
			})
			dispatched++
		}
		l.pending.Add(-int32(len(paths) - dispatched))
		err := g.Wait()
		if err == nil {
			err = ctx.Err()
		}
		l.err = err
		close(results)
	}()
}

func (l *Loader) decode(ctx context.Context, out chan<- Decoded, idx int, path string) error {
	if err := ctx.Err(); err != nil {
		l.pending.Add(-1)
		return err
	}

	data, err := l.src.Read(path)
	if err == nil {
		var img *image.RGBA
		img, err = texture.Decode(path, data)
		if err == nil {
			img = texture.Downscale(img, l.cfg.MaxTextureSide)
			out <- Decoded{Index: idx, Path: path, Image: img}
			return nil
		}
	}

	// A missing still degrades the selection, it does not stop the load.
	l.failed.Add(1)
	l.pending.Add(-1)
	l.log.Warn("still load failed", zap.String("path", path), zap.Error(err))
	return nil
}

// Poll applies every result that is ready without blocking. It must be
// called from the goroutine that owns the selector. It returns the number of
// textures applied.
func (l *Loader) Poll(upload UploadFunc) int {
	if l.results == nil {
		return 0
	}
	n := 0
	for {
		select {
		case d, ok := <-l.results:
			if !ok {
				l.results = nil
				return n
			}
			l.pending.Add(-1)
			tex, err := upload(d)
			if err != nil {
				l.failed.Add(1)
				l.log.Warn("still upload failed", zap.String("path", d.Path), zap.Error(err))
				continue
			}
			if l.sel.Apply(Loaded{Index: d.Index, Texture: tex}) {
				n++
			}
		default:
			return n
		}
	}
}

// Wait blocks until every decode has finished or been skipped.
// It returns the context error if the load was cancelled.
func (l *Loader) Wait() error {
	if l.done == nil {
		return nil
	}
	<-l.done
	return l.err
}

// Pending returns the number of stills not yet applied, failed or skipped
// by cancellation.
func (l *Loader) Pending() int {
	return int(l.pending.Load())
}

// Failed returns the number of stills that could not be loaded.
func (l *Loader) Failed() int {
	return int(l.failed.Load())
}
