package core

// SessionClock counts elapsed session seconds. It holds only the
// accumulated count; an external ticker drives Tick once per second.
type SessionClock struct {
	elapsed int
	running bool
	started bool
}

func NewSessionClock() *SessionClock { return &SessionClock{} }

// Start is idempotent; restarting a paused clock resumes it.
func (c *SessionClock) Start() {
	c.started = true
	c.running = true
}

func (c *SessionClock) Pause() { c.running = false }

func (c *SessionClock) Resume() {
	if c.started {
		c.running = true
	}
}

// Tick advances the counter by one second while running.
func (c *SessionClock) Tick() {
	if c.running {
		c.elapsed++
	}
}

func (c *SessionClock) ElapsedSeconds() int { return c.elapsed }

func (c *SessionClock) Running() bool { return c.running }
