package system

import "time"

// Deferred is a cancellable piece of work due after a delay measured in
// accumulated tick time. It never blocks and never fires after Cancel.
type Deferred struct {
	remaining time.Duration
	fn        func()
	cancelled bool
	fired     bool
}

// After returns a token that runs fn once delay of tick time has passed.
func After(delay time.Duration, fn func()) *Deferred {
	return &Deferred{remaining: delay, fn: fn}
}

// Advance consumes dt and runs fn when the delay is used up. Returns true
// on the tick it fires.
func (d *Deferred) Advance(dt time.Duration) bool {
	if d == nil || d.cancelled || d.fired {
		return false
	}
	d.remaining -= dt
	if d.remaining > 0 {
		return false
	}
	d.fired = true
	if d.fn != nil {
		d.fn()
	}
	return true
}

// Cancel prevents the token from firing. Safe to call repeatedly.
func (d *Deferred) Cancel() {
	if d != nil {
		d.cancelled = true
	}
}

// Pending reports whether the token can still fire.
func (d *Deferred) Pending() bool {
	return d != nil && !d.cancelled && !d.fired
}

// Remaining returns the tick time left before firing.
func (d *Deferred) Remaining() time.Duration {
	if d == nil || d.remaining < 0 {
		return 0
	}
	return d.remaining
}
