package motion

// EventHandler receives user events fired by a queued motion.
type EventHandler func(label string, m Motion)

// Queue plays motions in start order. Starting a motion asks every entry
// already queued to fade out, so the newest motion takes over as the older
// ones fade.
//
// A Queue is not safe for concurrent use.
type Queue struct {
	entries []*Entry
	onEvent EventHandler
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// SetEventHandler sets the handler for fired events. nil disables it.
func (q *Queue) SetEventHandler(h EventHandler) { q.onEvent = h }

// Start queues m and returns the handle of its entry.
func (q *Queue) Start(m Motion) (Handle, error) {
	if m == nil {
		return Handle{}, ErrNilMotion
	}

	for _, e := range q.entries {
		e.SetFadeOut(e.motion.FadeOutTime())
	}

	e := NewEntry(m)
	q.entries = append(q.entries, e)
	logger().Debug("motion queued", "handle", e.handle, "queued", len(q.entries))
	return e.handle, nil
}

// Update advances every entry to now, fires events and drops finished
// entries. It reports whether any entry was updated.
func (q *Queue) Update(model Model, now float64) bool {
	updated := false

	kept := q.entries[:0]
	for _, e := range q.entries {
		if e.motion == nil {
			continue
		}

		e.motion.Update(model, e, now)
		updated = true

		fired := e.motion.FiredEvents(e.lastEventCheck-e.startTime, now-e.startTime)
		if q.onEvent != nil {
			for _, label := range fired {
				q.onEvent(label, e.motion)
			}
		}
		e.lastEventCheck = now

		if e.finished {
			logger().Debug("motion finished", "handle", e.handle)
			continue
		}
		if e.triggeredFadeOut {
			e.StartFadeOut(e.fadeOutSeconds, now)
		}
		kept = append(kept, e)
	}
	clear(q.entries[len(kept):])
	q.entries = kept

	return updated
}

// IsFinished reports whether every queued motion has finished.
func (q *Queue) IsFinished() bool {
	for _, e := range q.entries {
		if e.motion != nil && !e.finished {
			return false
		}
	}
	return true
}

// IsHandleFinished reports whether the entry for h has finished or left the
// queue.
func (q *Queue) IsHandleFinished(h Handle) bool {
	e := q.Entry(h)
	return e == nil || e.finished
}

// StopAll drops every entry immediately.
func (q *Queue) StopAll() {
	clear(q.entries)
	q.entries = q.entries[:0]
}

// FadeOutAll requests a fade-out on every entry using each motion's own
// fade-out length.
func (q *Queue) FadeOutAll() {
	for _, e := range q.entries {
		e.SetFadeOut(e.motion.FadeOutTime())
	}
}

// Entry returns the entry for h, or nil.
func (q *Queue) Entry(h Handle) *Entry {
	for _, e := range q.entries {
		if e.handle == h {
			return e
		}
	}
	return nil
}

// Len returns the number of queued entries.
func (q *Queue) Len() int { return len(q.entries) }

// Entries returns the queued entries, oldest first.
func (q *Queue) Entries() []*Entry { return q.entries }
