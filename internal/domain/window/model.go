package window

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ManualState overrides the date-based unlock computation for a window.
type ManualState string

// Manual state constants.
const (
	StateDefault  ManualState = "default"  // date-based unlock applies
	StateUnlocked ManualState = "unlocked" // always visible, used for content QA
	StateLocked   ManualState = "locked"   // always hidden
)

// Calendar constants.
const (
	FirstDay    = 1
	LastDay     = 24
	RevealMonth = time.December
)

// Max length constants.
const (
	MaxMessageLength = 2000
	MaxURLLength     = 2048
)

// DefaultImageHint is applied whenever an admin edits a window to point at a
// new image, replacing whatever provenance tag the old image carried.
const DefaultImageHint = "custom image"

// Domain errors
var (
	ErrDayOutOfRange   = errors.New("day must be between 1 and 24")
	ErrEmptyMessage    = errors.New("message cannot be empty")
	ErrMessageTooLong  = errors.New("message cannot exceed 2000 characters")
	ErrInvalidImageURL = errors.New("image URL must be a valid URL if provided")
	ErrInvalidVideoURL = errors.New("video URL must be a valid URL if provided")
	ErrInvalidState    = errors.New("manual state must be one of: default, unlocked, locked")
)

// Window is one of 24 dated content slots in the advent calendar.
// Day is the immutable key; content fields are mutated by admin edits.
type Window struct {
	Day         int
	Message     string // markdown subset (bold/italic), rendered safely
	ImageURL    string
	ImageHint   string
	VideoURL    string
	ManualState ManualState
	UpdatedAt   time.Time
}

// ParseState converts a raw string into a ManualState.
// POST: returns ErrInvalidState for anything outside the three known states
func ParseState(raw string) (ManualState, error) {
	switch ManualState(raw) {
	case StateDefault, StateUnlocked, StateLocked:
		return ManualState(raw), nil
	default:
		return "", ErrInvalidState
	}
}

// Validate checks the window's invariants.
// PRE: none
// POST: returns nil if valid, error describing the first violation otherwise
func (w *Window) Validate() error {
	if w.Day < FirstDay || w.Day > LastDay {
		return ErrDayOutOfRange
	}
	if strings.TrimSpace(w.Message) == "" {
		return ErrEmptyMessage
	}
	if len(w.Message) > MaxMessageLength {
		return ErrMessageTooLong
	}
	if err := validateOptionalURL(w.ImageURL); err != nil {
		return ErrInvalidImageURL
	}
	if err := validateOptionalURL(w.VideoURL); err != nil {
		return ErrInvalidVideoURL
	}
	if _, err := ParseState(string(w.ManualState)); err != nil {
		return err
	}
	return nil
}

// IsUnlocked decides whether the window's content may be revealed at the
// given instant. Pure: the same (window, now) pair always yields the same
// answer, making the policy trivially testable.
//
// The date comparison is day-granular, so a window becomes visible at local
// midnight of its date. A day number past the end of the reveal month never
// unlocks under the default state; no clamp is applied.
// PRE: ManualState is one of the three known states
// POST: unlocked => true, locked => false, default => date rule
func (w *Window) IsUnlocked(now time.Time) bool {
	switch w.ManualState {
	case StateUnlocked:
		return true
	case StateLocked:
		return false
	case StateDefault:
		return now.Month() == RevealMonth && now.Day() >= w.Day
	default:
		// Unknown states are a configuration error; fail closed.
		return false
	}
}

// EmbedVideoURL converts a YouTube watch URL into its embeddable form.
// Other URLs are returned unchanged.
// INVARIANT: Window fields are not mutated
func (w *Window) EmbedVideoURL() string {
	raw := w.VideoURL
	if !strings.Contains(raw, "youtube.com/watch") {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	id := u.Query().Get("v")
	if id == "" {
		return raw
	}
	return "https://www.youtube.com/embed/" + id
}

// HasMedia returns true if the window carries an image or a video.
// INVARIANT: Window fields are not mutated
func (w *Window) HasMedia() bool {
	return w.ImageURL != "" || w.VideoURL != ""
}

// NewSeedWindow builds the default content for a given day: a placeholder
// message and image, no video, date-based unlocking.
// PRE: day is within the valid range
func NewSeedWindow(day int, now time.Time) Window {
	return Window{
		Day:         day,
		Message:     fmt.Sprintf("A special message for day %d!", day),
		ImageURL:    fmt.Sprintf("https://picsum.photos/seed/%d/600/400", day),
		ImageHint:   "christmas placeholder",
		VideoURL:    "",
		ManualState: StateDefault,
		UpdatedAt:   now,
	}
}

func validateOptionalURL(raw string) error {
	if raw == "" {
		return nil
	}
	if len(raw) > MaxURLLength {
		return errors.New("URL too long")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme == "" || u.Host == "" {
		return errors.New("URL must be absolute")
	}
	return nil
}
