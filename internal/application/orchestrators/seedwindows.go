package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"advent/internal/domain/window"
)

// WindowStoreForSeed defines the store interface needed by SeedWindows.
type WindowStoreForSeed interface {
	Save(ctx context.Context, w window.Window) error
	Count(ctx context.Context) (int, error)
}

// SeedWindowsDeps holds dependencies for SeedWindows.
type SeedWindowsDeps struct {
	WindowStore WindowStoreForSeed
	Now         func() time.Time // nil means time.Now
}

// ExecuteSeedWindows creates the full set of 24 windows with placeholder
// content if none exist yet. Idempotent across restarts.
// PRE: Database is initialized
// POST: Windows 1..24 exist
func ExecuteSeedWindows(ctx context.Context, deps SeedWindowsDeps) error {
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}

	count, err := deps.WindowStore.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil // Already seeded, skip
	}

	for day := window.FirstDay; day <= window.LastDay; day++ {
		if err := deps.WindowStore.Save(ctx, window.NewSeedWindow(day, now())); err != nil {
			return err
		}
	}

	slog.Info("admin_event", "event", "windows_seeded", "count", window.LastDay)
	return nil
}
