package motion

// Priority orders competing motion requests. Zero means idle.
type Priority int

// Conventional priorities.
const (
	PriorityNone   Priority = 0
	PriorityIdle   Priority = 1
	PriorityNormal Priority = 2
	PriorityForce  Priority = 3
)

// Manager owns a Queue, the user clock and the current/reserved priority
// pair used to decide whether a new motion may interrupt the playing one.
type Manager struct {
	queue *Queue

	userTime float64
	current  Priority
	reserve  Priority
}

// NewManager returns a manager with an empty queue at user time 0.
func NewManager() *Manager {
	return &Manager{queue: NewQueue()}
}

// Queue returns the underlying queue.
func (m *Manager) Queue() *Queue { return m.queue }

// UserTime returns the accumulated time in seconds.
func (m *Manager) UserTime() float64 { return m.userTime }

// CurrentPriority returns the priority of the playing motion.
func (m *Manager) CurrentPriority() Priority { return m.current }

// ReservePriority returns the reserved priority.
func (m *Manager) ReservePriority() Priority { return m.reserve }

// SetReservePriority overwrites the reserved priority.
func (m *Manager) SetReservePriority(p Priority) { m.reserve = p }

// Reserve claims priority p for a motion that is about to be loaded. It
// fails when p does not beat both the playing and the reserved priority.
func (m *Manager) Reserve(p Priority) bool {
	if p <= m.reserve || p <= m.current {
		return false
	}
	m.reserve = p
	return true
}

// CanStart reports whether a motion at priority p may start now, using the
// force/normal rules: Force always wins, anything else needs the slot free.
func (m *Manager) CanStart(p Priority) bool {
	if p == PriorityForce {
		return true
	}
	return p > m.current && p > m.reserve
}

// Start plays motion at priority p.
func (m *Manager) Start(motion Motion, p Priority) (Handle, error) {
	if p == m.reserve {
		m.reserve = PriorityNone
	}
	h, err := m.queue.Start(motion)
	if err != nil {
		return h, err
	}
	m.current = p
	return h, nil
}

// Update advances the clock by dt and updates the queue. It reports whether
// any motion was applied.
func (m *Manager) Update(model Model, dt float64) bool {
	m.userTime += dt
	updated := m.queue.Update(model, m.userTime)
	if m.queue.IsFinished() {
		m.current = PriorityNone
	}
	return updated
}

// IsFinished reports whether nothing is playing.
func (m *Manager) IsFinished() bool { return m.queue.IsFinished() }

// StopAll drops every motion immediately and clears the playing priority.
func (m *Manager) StopAll() {
	m.queue.StopAll()
	m.current = PriorityNone
}

// ExpressionManager drives an ExpressionBlender on its own clock.
type ExpressionManager struct {
	blender *ExpressionBlender

	userTime float64
	current  Priority
	reserve  Priority
}

// NewExpressionManager returns an idle expression manager.
func NewExpressionManager() *ExpressionManager {
	return &ExpressionManager{blender: NewExpressionBlender()}
}

// Blender returns the underlying blender.
func (m *ExpressionManager) Blender() *ExpressionBlender { return m.blender }

// UserTime returns the accumulated time in seconds.
func (m *ExpressionManager) UserTime() float64 { return m.userTime }

// CurrentPriority returns the priority of the newest expression.
func (m *ExpressionManager) CurrentPriority() Priority { return m.current }

// Reserve claims priority p, see Manager.Reserve.
func (m *ExpressionManager) Reserve(p Priority) bool {
	if p <= m.reserve || p <= m.current {
		return false
	}
	m.reserve = p
	return true
}

// Start layers expr over the active expressions at priority p.
func (m *ExpressionManager) Start(expr *ExpressionMotion, p Priority) (Handle, error) {
	if p == m.reserve {
		m.reserve = PriorityNone
	}
	h, err := m.blender.Start(expr)
	if err != nil {
		return h, err
	}
	m.current = p
	return h, nil
}

// Update advances the clock by dt and commits the blended expressions.
func (m *ExpressionManager) Update(model Model, dt float64) bool {
	m.userTime += dt
	updated := m.blender.Update(model, m.userTime)
	if m.blender.IsFinished() {
		m.current = PriorityNone
	}
	return updated
}

// StopAll fades every expression out.
func (m *ExpressionManager) StopAll() { m.blender.StopAll() }

// IsFinished reports whether no expression is active.
func (m *ExpressionManager) IsFinished() bool { return m.blender.IsFinished() }
