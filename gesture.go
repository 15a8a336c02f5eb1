package main

// GestureSession is the pointer-move/pointer-up listener pair of one drag,
// resize or connection gesture. Close detaches both and is idempotent.
type GestureSession struct {
	hub    *PointerHub
	move   func(point)
	up     func(point)
	cancel func()
	closed bool
	held   bool
}

func (s *GestureSession) Close() {
	if s == nil || s.closed {
		return
	}
	s.closed = true
	if s.hub != nil && s.hub.active == s {
		s.hub.active = nil
	}
}

func (s *GestureSession) Closed() bool {
	return s == nil || s.closed
}

// Hold keeps the session attached past the release being handled, for a
// gesture that continues after a click. It only has effect from inside the
// up callback.
func (s *GestureSession) Hold() {
	if s.Closed() {
		return
	}
	s.held = true
}

// PointerHub owns the window-level pointer listeners. At most one gesture
// session is attached at a time.
type PointerHub struct {
	active *GestureSession
}

func newPointerHub() *PointerHub {
	return &PointerHub{}
}

// Begin attaches a new session. A session that is still attached is
// cancelled first so listeners never accumulate.
func (h *PointerHub) Begin(move, up func(point), cancel func()) *GestureSession {
	h.abort()
	s := &GestureSession{hub: h, move: move, up: up, cancel: cancel}
	h.active = s
	return s
}

func (h *PointerHub) Move(p point) bool {
	s := h.active
	if s == nil {
		return false
	}
	if s.move != nil {
		s.move(p)
	}
	return true
}

// Up runs the release callback and detaches the session unless the
// callback held it.
func (h *PointerHub) Up(p point) bool {
	s := h.active
	if s == nil {
		return false
	}
	s.held = false
	defer func() {
		if !s.held {
			s.Close()
		}
	}()
	if s.up != nil {
		s.up(p)
	}
	return true
}

// Leave ends the gesture without a release, e.g. when the pointer leaves
// the window.
func (h *PointerHub) Leave() bool {
	if h.active == nil {
		return false
	}
	h.abort()
	return true
}

func (h *PointerHub) abort() {
	s := h.active
	if s == nil {
		return
	}
	defer s.Close()
	if s.cancel != nil {
		s.cancel()
	}
}

// Listeners is the number of attached pointer listeners (move and up).
func (h *PointerHub) Listeners() int {
	if h.active == nil {
		return 0
	}
	return 2
}
