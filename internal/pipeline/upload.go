package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/medbrief/pkg/gemini"
)

// upload registers every file and waits for each to become usable.
// At most UploadConcurrency files are in flight; the default of one keeps
// the batch sequential. Any failure cancels the rest and fails the batch.
// Results keep input order.
func upload(ctx context.Context, rt *Runtime, logger *slog.Logger, files []File) ([]Uploaded, error) {
	cfg := rt.Gemini.Config()
	out := make([]Uploaded, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.UploadConcurrency, 1))

	for i, f := range files {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			handle, err := rt.Gemini.UploadFile(gctx, f.Name, f.ContentType, f.Data)
			if err != nil {
				return err
			}

			handle, err = rt.Gemini.WaitForActive(gctx, handle)
			if err != nil {
				if !errors.Is(err, gemini.ErrNotReady) || cfg.RequireActive {
					return fmt.Errorf("%w: %s: %w", gemini.ErrUpload, f.Name, err)
				}
				logger.WarnContext(gctx, "file not active, proceeding",
					"file", f.Name,
					"name", handle.Name,
					"state", handle.State,
					"error", err,
				)
			}

			out[i] = Uploaded{
				Name:        f.Name,
				ContentType: f.ContentType,
				Size:        len(f.Data),
				PageCount:   f.PageCount,
				Handle:      handle,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}
