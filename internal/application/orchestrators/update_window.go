package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"advent/internal/domain/window"
)

// WindowStoreForUpdate defines the store interface needed by UpdateWindow.
type WindowStoreForUpdate interface {
	GetByDay(ctx context.Context, day int) (window.Window, error)
	Save(ctx context.Context, w window.Window) error
}

// UpdateWindowInput carries the admin edit for one window.
type UpdateWindowInput struct {
	Day         int
	Message     string
	ImageURL    string
	VideoURL    string
	ManualState string
}

// UpdateWindowDeps holds dependencies for UpdateWindow.
type UpdateWindowDeps struct {
	WindowStore WindowStoreForUpdate
	Now         func() time.Time // nil means time.Now
}

var ErrWindowNotFound = errors.New("window not found")

// ExecuteUpdateWindow applies an admin edit to an existing window.
// The image hint is preserved when the image URL is unchanged and reset to the
// custom-image tag when it points somewhere new.
// PRE: Day references a seeded window
// POST: Window content replaced, day untouched, UpdatedAt bumped
func ExecuteUpdateWindow(ctx context.Context, input UpdateWindowInput, deps UpdateWindowDeps) (window.Window, error) {
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}

	state, err := window.ParseState(input.ManualState)
	if err != nil {
		return window.Window{}, err
	}

	existing, err := deps.WindowStore.GetByDay(ctx, input.Day)
	if err != nil {
		return window.Window{}, ErrWindowNotFound
	}

	hint := existing.ImageHint
	if input.ImageURL != existing.ImageURL {
		hint = window.DefaultImageHint
	}

	updated := window.Window{
		Day:         existing.Day,
		Message:     input.Message,
		ImageURL:    input.ImageURL,
		ImageHint:   hint,
		VideoURL:    input.VideoURL,
		ManualState: state,
		UpdatedAt:   now(),
	}

	if err := updated.Validate(); err != nil {
		return window.Window{}, err
	}

	if err := deps.WindowStore.Save(ctx, updated); err != nil {
		return window.Window{}, err
	}

	slog.Info("admin_event", "event", "window_updated", "day", updated.Day, "state", string(updated.ManualState))
	return updated, nil
}
