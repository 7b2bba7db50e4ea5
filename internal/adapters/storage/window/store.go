package window

import (
	"context"

	domain "advent/internal/domain/window"
)

// Store persists Window state.
type Store interface {
	GetByDay(ctx context.Context, day int) (domain.Window, error)
	Save(ctx context.Context, value domain.Window) error
	List(ctx context.Context) ([]domain.Window, error)
	Count(ctx context.Context) (int, error)
}
