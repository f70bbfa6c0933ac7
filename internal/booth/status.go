package booth

import (
	"fmt"
	"strings"
	"time"

	"github.com/drummonds/gobooth/internal/filter"
	"github.com/drummonds/gobooth/internal/mode"
	"github.com/drummonds/gobooth/internal/session"
)

// Status is a snapshot of the booth for a front end to draw.
type Status struct {
	Mode       mode.Mode
	Filter     filter.Kind
	Title      string
	Mirror     bool
	State      session.State
	Countdown  int // seconds left, 0 when nothing is counting
	PhotoIndex int // next photo of the running session
	Captured   int
	Total      int
	Ready      bool
	Composing  bool
	HasCollage bool
	SessionID  string
	CameraErr  error
	// Generation changes whenever the captured frames are cleared.
	Generation uint64
}

func (b *Booth) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := Status{
		Mode:       b.mode,
		Filter:     b.filter,
		Title:      b.title,
		Mirror:     b.mirror,
		State:      b.machine.State(),
		PhotoIndex: b.machine.PhotoIndex(),
		Captured:   len(b.frames),
		Total:      b.mode.TotalPhotos(),
		Ready:      b.source.Ready(),
		Composing:  b.composing,
		HasCollage: b.collage != nil,
		SessionID:  b.sessionID,
		CameraErr:  b.source.Err(),
		Generation: b.strip,
	}
	if n, ok := b.machine.Remaining(); ok {
		s.Countdown = n
	}
	return s
}

// Caption is the one line prompt shown under the preview.
func (s Status) Caption() string {
	switch {
	case s.CameraErr != nil:
		return "Camera error, press retry"
	case !s.Ready:
		return "Waiting for camera"
	case s.State == session.InSession && s.Countdown > 0:
		return fmt.Sprintf("Next photo in %ds", s.Countdown)
	case s.Composing:
		return "Creating collage..."
	case s.HasCollage:
		return "Collage ready"
	case s.Captured >= s.Total:
		return "Strip full, reset to start again"
	}
	return fmt.Sprintf("%d of %d photos", s.Captured, s.Total)
}

func (s Status) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s, filter %s, %d/%d photos, %v", s.Mode.Label(), s.Filter.Label(), s.Captured, s.Total, s.State)
	if s.Countdown > 0 {
		fmt.Fprintf(&sb, " (%ds)", s.Countdown)
	}
	if s.State == session.InSession || s.State == session.CountingDownInSession {
		fmt.Fprintf(&sb, ", session photo %d", s.PhotoIndex+1)
	}
	if s.Mirror {
		sb.WriteString(", mirrored")
	}
	fmt.Fprintf(&sb, "\ntitle: %s\n%s", s.Title, s.Caption())
	return sb.String()
}

// DefaultTitle is the strip title used until the user sets one, such as
// "🌞 Day 45/365 in 2024".
func DefaultTitle(now time.Time) string {
	days := 365
	if y := now.Year(); y%4 == 0 && (y%100 != 0 || y%400 == 0) {
		days = 366
	}
	return fmt.Sprintf("🌞 Day %d/%d in %d", now.YearDay(), days, now.Year())
}
