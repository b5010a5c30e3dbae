package delivery

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/gammazero/workerpool"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"

	"github.com/forest-guardian/atcor/internal/atcor"
	"github.com/forest-guardian/atcor/internal/notification"
)

// TileError is the failure of one tile in a batch.
type TileError struct {
	TileID string
	Err    error
}

func (e *TileError) Error() string { return fmt.Sprintf("tile %s: %v", e.TileID, e.Err) }
func (e *TileError) Unwrap() error { return e.Err }

type BatchResult struct {
	Succeeded []TileResult
	Failed    []*TileError
}

// DiscoverTiles lists the tiles in dir: every <tile>.tif whose name starts
// with a supported family prefix, sorted by name. The extension is matched
// exactly since the raster is opened as <tile>.tif.
func DiscoverTiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	var tiles []string
	for _, e := range entries {
		name := e.Name()
		id, ok := strings.CutSuffix(name, atcor.RasterExt)
		if e.IsDir() || !ok {
			continue
		}
		if _, err := atcor.FamilyOf(id); err != nil {
			continue
		}
		tiles = append(tiles, id)
	}
	sort.Strings(tiles)
	return tiles, nil
}

// CorrectBatch corrects every tile on a worker pool. A failing tile does
// not stop the others; the returned error joins every tile failure.
func (s *Service) CorrectBatch(ctx context.Context, tileIDs []string) (BatchResult, error) {
	workers := s.cfg.TileWorkers
	if workers <= 0 {
		workers = 1
	}

	var bar *progressbar.ProgressBar
	if s.cfg.Quiet {
		bar = progressbar.DefaultSilent(int64(len(tileIDs)), "Correcting tiles")
	} else {
		bar = progressbar.Default(int64(len(tileIDs)), "Correcting tiles")
	}

	var (
		mu     sync.Mutex
		result BatchResult
	)
	wp := workerpool.New(workers)
	for _, id := range tileIDs {
		id := id
		wp.Submit(func() {
			var (
				res TileResult
				err = ctx.Err()
			)
			if err == nil {
				res, err = s.CorrectTile(ctx, id)
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Error().Err(err).Str("tile", id).Msg("tile failed")
				result.Failed = append(result.Failed, &TileError{TileID: id, Err: err})
			} else {
				result.Succeeded = append(result.Succeeded, res)
			}
			bar.Add(1)
		})
	}
	wp.StopWait()

	sort.Slice(result.Succeeded, func(i, j int) bool { return result.Succeeded[i].TileID < result.Succeeded[j].TileID })
	sort.Slice(result.Failed, func(i, j int) bool { return result.Failed[i].TileID < result.Failed[j].TileID })

	err := result.Err()
	if s.cfg.Notify {
		s.notify(result)
	}
	return result, err
}

// Err joins the tile failures, nil when every tile succeeded.
func (r BatchResult) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failed))
	for i, f := range r.Failed {
		errs[i] = f
	}
	return fmt.Errorf("%d of %d tiles failed: %w", len(r.Failed), len(r.Failed)+len(r.Succeeded), errors.Join(errs...))
}

func (s *Service) notify(r BatchResult) {
	var err error
	if len(r.Failed) > 0 {
		msgs := make([]string, len(r.Failed))
		for i, f := range r.Failed {
			msgs[i] = f.Error()
		}
		err = notification.SendDiscordErrorNotification(fmt.Sprintf("%d tiles corrected, %d failed.\n%s",
			len(r.Succeeded), len(r.Failed), strings.Join(msgs, "\n")))
	} else {
		err = notification.SendDiscordSuccessNotification(fmt.Sprintf("%d tiles corrected.", len(r.Succeeded)))
	}
	if err != nil {
		log.Warn().Err(err).Msg("failed to send Discord notification")
	}
}
