// Package player implements command line actions: listing the library,
// dumping books and headless playback.
package player

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gosimple/slug"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"lectern/anim"
	"lectern/audio"
	"lectern/config"
	"lectern/engine"
	"lectern/library"
	"lectern/pager"
	"lectern/render"
)

// Options control headless playback.
type Options struct {
	// Page to open.
	Page int
	// Frames limits playback, 0 plays until the book is closed.
	Frames int
	FPS    int
	// Every Nth frame is saved when Snapshots directory is set.
	Every     int
	Snapshots string
}

// Result describes finished playback.
type Result struct {
	Frames int
	// Pages turned to, in order.
	Pages     []int
	Closed    bool
	Snapshots []string
	Thumbnail string
}

const (
	thumbWidth  = 320
	thumbHeight = 180
	// playback without frame limit stops after an hour of book time
	maxSeconds = 3600
)

// Play reads entry from opts.Page to the end with autoplay on, drawing every
// frame. Time is simulated, playback runs as fast as rendering allows.
func Play(ctx context.Context, cfg *config.Config, lib *library.Library, entry *library.Entry, chrome map[anim.Surface][]byte, shadow []byte, opts Options, log *zap.Logger) (res *Result, err error) {
	if opts.FPS <= 0 {
		return nil, fmt.Errorf("frame rate must be positive, got %d", opts.FPS)
	}
	if opts.Every <= 0 {
		opts.Every = opts.FPS
	}

	local := *cfg
	local.Reader.Autoplay = true

	canvas, err := render.New(&local.Render, chrome, shadow, log)
	if err != nil {
		return nil, fmt.Errorf("unable to prepare canvas: %w", err)
	}
	defer func() {
		if er := canvas.Close(); er != nil {
			err = multierr.Append(err, fmt.Errorf("unable to close canvas: %w", er))
		}
	}()

	if opts.Snapshots != "" {
		if err := os.MkdirAll(opts.Snapshots, 0755); err != nil {
			return nil, fmt.Errorf("unable to create snapshots directory: %w", err)
		}
	}

	eng := engine.New(&local, lib, audio.New(&local.Reader, nil, log), canvas, log)
	defer eng.Close()

	dt := 1 / float64(opts.FPS)
	clock := time.Unix(0, 0)
	ctrl := eng.Controller()
	ctrl.SetViewport(canvas.Viewport())
	ctrl.SetClock(func() time.Time { return clock })

	if err := eng.Open(entry, opts.Page); err != nil {
		return nil, fmt.Errorf("unable to open book: %w", err)
	}
	eng.Wait()
	if eng.State() != engine.StateBook {
		return nil, eng.Err()
	}

	limit := opts.Frames
	if limit <= 0 {
		limit = maxSeconds * opts.FPS
	}
	name := slug.Make(entry.Title())
	if name == "" {
		name = "book"
	}

	res = &Result{}
	for res.Frames < limit {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		clock = clock.Add(time.Duration(dt * float64(time.Second)))
		ev := eng.Tick(dt)
		if ev.Has(pager.EventTurned) {
			res.Pages = append(res.Pages, ctrl.CurrentPage())
			log.Debug("Page turned", zap.Int("page", ctrl.CurrentPage()), zap.Int("frame", res.Frames))
		}

		v := eng.View()
		if err := canvas.Draw(&v); err != nil {
			return res, fmt.Errorf("unable to draw frame %d: %w", res.Frames, err)
		}
		if opts.Snapshots != "" && res.Frames%opts.Every == 0 {
			path := filepath.Join(opts.Snapshots, fmt.Sprintf("%s-%05d.png", name, res.Frames))
			if err := canvas.SavePNG(path); err != nil {
				return res, err
			}
			res.Snapshots = append(res.Snapshots, path)
		}
		res.Frames++

		if ev.Has(pager.EventClosed) {
			res.Closed = true
			break
		}
		// without back cover last spread stays open
		if ctrl.Writing() == pager.WritingDone && !ctrl.IsAnimating() && ctrl.LastSpread() && ctrl.Book().Back == nil {
			break
		}
	}

	if opts.Snapshots != "" {
		res.Thumbnail = filepath.Join(opts.Snapshots, name+"-thumb.png")
		thumb := imaging.Thumbnail(canvas.Image(), thumbWidth, thumbHeight, imaging.Lanczos)
		if err := imaging.Save(thumb, res.Thumbnail); err != nil {
			return res, fmt.Errorf("unable to save thumbnail: %w", err)
		}
	}
	return res, nil
}
