package projections

import (
	"context"
	"time"

	"advent/internal/domain/openstate"
	"advent/internal/domain/window"
)

// CalendarWindowStore defines the window store interface for the calendar view.
type CalendarWindowStore interface {
	List(ctx context.Context) ([]window.Window, error)
}

// CalendarDeps holds dependencies for the calendar projection.
type CalendarDeps struct {
	WindowStore CalendarWindowStore
}

// CalendarQuery carries the viewing context: the current instant and the
// viewer's advisory opened-day record.
type CalendarQuery struct {
	Now    time.Time
	Opened *openstate.OpenedDays // nil means nothing opened
}

// WindowView is one calendar slot as shown to a viewer. Content fields are
// only populated when the window is unlocked; a locked window never leaks its
// message or media to the client.
type WindowView struct {
	Day           int
	Unlocked      bool
	Opened        bool
	Message       string
	ImageURL      string
	ImageHint     string
	VideoURL      string
	EmbedVideoURL string
	HasMedia      bool
}

// QueryCalendar builds the public calendar view: every window in day order,
// each evaluated against the unlock policy for the given instant.
// PRE: query.Now is set
// POST: Returns one view per stored window, day ascending, locked content stripped
func QueryCalendar(ctx context.Context, query CalendarQuery, deps CalendarDeps) ([]WindowView, error) {
	windows, err := deps.WindowStore.List(ctx)
	if err != nil {
		return nil, err
	}

	opened := query.Opened
	if opened == nil {
		opened = openstate.New()
	}

	views := make([]WindowView, 0, len(windows))
	for _, w := range windows {
		view := WindowView{
			Day:      w.Day,
			Unlocked: w.IsUnlocked(query.Now),
		}
		if view.Unlocked {
			view.Opened = opened.IsOpened(w.Day)
			view.Message = w.Message
			view.ImageURL = w.ImageURL
			view.ImageHint = w.ImageHint
			view.VideoURL = w.VideoURL
			view.EmbedVideoURL = w.EmbedVideoURL()
			view.HasMedia = w.HasMedia()
		}
		views = append(views, view)
	}
	return views, nil
}
