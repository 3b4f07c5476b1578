package motion

import "github.com/google/uuid"

// Handle identifies a queued entry.
type Handle = uuid.UUID

// Entry is the mutable playback state of one queued motion.
//
// An entry is Created when queued, Started on its first update and Finished
// once its motion ends or its fade-out completes. Entries are owned by a
// single queue and are not safe for concurrent use.
type Entry struct {
	handle Handle
	motion Motion

	available        bool
	started          bool
	finished         bool
	triggeredFadeOut bool

	startTime       float64
	fadeInStartTime float64
	endTime         float64
	fadeOutSeconds  float64

	stateTime   float64
	stateWeight float64

	lastEventCheck float64
}

// NewEntry creates an entry for m with an open end time.
func NewEntry(m Motion) *Entry {
	return &Entry{
		handle:    uuid.New(),
		motion:    m,
		available: true,
		endTime:   -1,
	}
}

// Handle returns the entry's identifier.
func (e *Entry) Handle() Handle { return e.handle }

// Motion returns the motion this entry plays.
func (e *Entry) Motion() Motion { return e.motion }

// Available reports whether the entry may still be updated.
func (e *Entry) Available() bool { return e.available }

// SetAvailable enables or disables updates for the entry.
func (e *Entry) SetAvailable(v bool) { e.available = v }

// Started reports whether the entry has seen its first update.
func (e *Entry) Started() bool { return e.started }

// Finished reports whether playback has ended.
func (e *Entry) Finished() bool { return e.finished }

// SetFinished marks the entry finished. A finished entry is ignored by
// motions and removed by its queue on the next update.
func (e *Entry) SetFinished(v bool) { e.finished = v }

// StartTime returns the user time playback is measured from.
func (e *Entry) StartTime() float64 { return e.startTime }

// SetStartTime sets the user time playback is measured from.
func (e *Entry) SetStartTime(t float64) { e.startTime = t }

// FadeInStartTime returns the user time the fade-in began.
func (e *Entry) FadeInStartTime() float64 { return e.fadeInStartTime }

// SetFadeInStartTime sets the user time the fade-in began.
func (e *Entry) SetFadeInStartTime(t float64) { e.fadeInStartTime = t }

// EndTime returns the scheduled end in user time, or -1 when open.
func (e *Entry) EndTime() float64 { return e.endTime }

// SetEndTime schedules the end in user time. -1 leaves it open.
func (e *Entry) SetEndTime(t float64) { e.endTime = t }

// TriggeredFadeOut reports whether a fade-out has been requested.
func (e *Entry) TriggeredFadeOut() bool { return e.triggeredFadeOut }

// FadeOutSeconds returns the requested fade-out length.
func (e *Entry) FadeOutSeconds() float64 { return e.fadeOutSeconds }

// SetFadeOut requests a fade-out of the given length. The queue turns the
// request into an end time on its next update.
func (e *Entry) SetFadeOut(seconds float64) {
	e.fadeOutSeconds = seconds
	e.triggeredFadeOut = true
}

// StartFadeOut schedules the end seconds after now, never extending an end
// time that is already earlier.
func (e *Entry) StartFadeOut(seconds, now float64) {
	end := now + seconds
	e.triggeredFadeOut = true
	if e.endTime < 0 || end < e.endTime {
		e.endTime = end
	}
}

// Weight returns the fade weight computed by the most recent update.
func (e *Entry) Weight() float64 { return e.stateWeight }

// StateTime returns the user time of the most recent fade-weight update.
func (e *Entry) StateTime() float64 { return e.stateTime }

func (e *Entry) setState(now, weight float64) {
	e.stateTime = now
	e.stateWeight = weight
}

// LastEventCheck returns the user time events were last collected at.
func (e *Entry) LastEventCheck() float64 { return e.lastEventCheck }

// SetLastEventCheck records the user time events were last collected at.
func (e *Entry) SetLastEventCheck(t float64) { e.lastEventCheck = t }
