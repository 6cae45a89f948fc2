package userpath

import "time"

// Session is one time-bounded burst of a single user's activity. Events
// are the deduplicated members of the burst: consecutive occurrences of
// the same step identifier collapse into the first one. Steps carries
// the resulting identifier sequence.
type Session struct {
	UserID string
	Seq    int

	Events []NormalizedEvent
	Steps  []string
}

// Segment partitions an event stream, ordered by user then time, into
// sessions. A new session starts on a user change, on a gap above
// timeout, or on a negative gap (out of order input is not trusted to
// belong to the same burst). Sessions with fewer than two distinct
// consecutive steps carry no path information and are dropped.
func Segment(events []NormalizedEvent, timeout time.Duration) []Session {
	sessions := []Session{}
	if len(events) == 0 {
		return sessions
	}

	var current *Session
	var prevTime time.Time
	userSeq := map[string]int{}

	flush := func() {
		if current != nil && len(current.Steps) >= 2 {
			sessions = append(sessions, *current)
		}
		current = nil
	}

	for _, e := range events {
		gap := e.Timestamp.Sub(prevTime)
		newSession := current == nil ||
			e.UserID != current.UserID ||
			gap > timeout ||
			gap < 0

		if newSession {
			flush()
			userSeq[e.UserID]++
			current = &Session{UserID: e.UserID, Seq: userSeq[e.UserID]}
		}
		prevTime = e.Timestamp

		// Collapse consecutive repeats of the same step, e.g. double
		// fired page views.
		if n := len(current.Steps); n > 0 && current.Steps[n-1] == e.StepIdentifier {
			continue
		}
		current.Events = append(current.Events, e)
		current.Steps = append(current.Steps, e.StepIdentifier)
	}
	flush()

	return sessions
}
