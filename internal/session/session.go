/*
Package session sequences single shots and automated multi-shot sessions.

The Machine has no clock. Whoever owns it calls Tick once a second and acts
on the returned Action; when a capture has been attempted it reports back
through Captured. Only one countdown is ever armed.

	Idle --RequestShot--> CountingDownSingle(3) --0--> capture, Idle
	Idle --StartSession--> InSession(interval 5)
	InSession --0--> CountingDownInSession(3) --0--> capture, awaiting
	awaiting --Captured--> InSession(interval 5) | Idle when complete
*/
package session

import "fmt"

const (
	CountdownDuration = 3 // seconds before a photo is taken
	IntervalDuration  = 5 // seconds between photos in a session
)

type State int

const (
	Idle State = iota
	CountingDownSingle
	InSession
	CountingDownInSession
)

func (s State) String() string {
	switch s {
	case CountingDownSingle:
		return "counting-down"
	case InSession:
		return "in-session"
	case CountingDownInSession:
		return "session-counting-down"
	default:
		return "idle"
	}
}

// Action tells the owner what to do after a tick.
type Action int

const (
	ActionNone Action = iota
	ActionCapture
)

type Machine struct {
	state      State
	remaining  int // seconds left on the armed countdown, 0 when none
	armed      bool
	photoIndex int
	total      int
	awaiting   bool // session capture requested, result not yet reported
	token      uint64
}

func NewMachine() *Machine {
	return &Machine{}
}

func (m *Machine) State() State { return m.state }

// Remaining returns the seconds left on the armed countdown.
func (m *Machine) Remaining() (int, bool) {
	return m.remaining, m.armed
}

// PhotoIndex is the index of the next photo in the running session.
func (m *Machine) PhotoIndex() int { return m.photoIndex }

func (m *Machine) Total() int { return m.total }

// InSession is true from StartSession until the session completes or resets.
func (m *Machine) InSession() bool {
	return m.state == InSession || m.state == CountingDownInSession
}

// Busy is true while any countdown is armed or a session capture is pending.
func (m *Machine) Busy() bool {
	return m.armed || m.awaiting
}

// Token identifies the armed countdown. It changes whenever a countdown is
// armed or cancelled, so a holder of an old token knows it is stale.
func (m *Machine) Token() uint64 { return m.token }

func (m *Machine) arm(state State, seconds int) {
	m.state = state
	m.remaining = seconds
	m.armed = true
	m.token++
}

func (m *Machine) disarm() {
	if m.armed {
		m.token++
	}
	m.remaining = 0
	m.armed = false
}

// RequestShot starts the single shot countdown. It is ignored unless the
// source is ready and the machine is idle.
func (m *Machine) RequestShot(ready bool) bool {
	if !ready || m.state != Idle || m.Busy() {
		return false
	}
	m.arm(CountingDownSingle, CountdownDuration)
	return true
}

// StartSession starts an automated session of total photos.
func (m *Machine) StartSession(ready bool, total int) bool {
	if !ready || total <= 0 || m.state != Idle || m.Busy() {
		return false
	}
	m.photoIndex = 0
	m.total = total
	m.arm(InSession, IntervalDuration)
	return true
}

// Tick advances the armed countdown by one second.
func (m *Machine) Tick() Action {
	if !m.armed {
		return ActionNone
	}
	m.remaining--
	if m.remaining > 0 {
		return ActionNone
	}
	m.disarm()

	switch m.state {
	case CountingDownSingle:
		m.state = Idle
		return ActionCapture
	case InSession:
		if m.photoIndex < m.total {
			m.arm(CountingDownInSession, CountdownDuration)
			return ActionNone
		}
		m.finish()
	case CountingDownInSession:
		m.state = InSession
		m.awaiting = true
		return ActionCapture
	}
	return ActionNone
}

// Captured reports the outcome of the capture a session asked for. ok is
// false when the capture was skipped, the same slot is then retried after
// the next interval.
func (m *Machine) Captured(ok bool) {
	if !m.awaiting {
		return
	}
	m.awaiting = false
	if ok {
		m.photoIndex++
	}
	if m.photoIndex >= m.total {
		m.finish()
		return
	}
	m.arm(InSession, IntervalDuration)
}

func (m *Machine) finish() {
	m.disarm()
	m.state = Idle
	m.awaiting = false
	m.photoIndex = 0
	m.total = 0
}

// Reset cancels any countdown or session.
func (m *Machine) Reset() {
	m.finish()
}

func (m *Machine) String() string {
	if m.armed {
		return fmt.Sprintf("%v(%ds) photo %d/%d", m.state, m.remaining, m.photoIndex, m.total)
	}
	return fmt.Sprintf("%v photo %d/%d", m.state, m.photoIndex, m.total)
}
