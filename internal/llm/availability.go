package llm

import (
	"sync"
	"time"
)

// AvailabilityState tells whether the LLM layer may be used.
type AvailabilityState int

const (
	// Enabled means completions may be attempted.
	Enabled AvailabilityState = iota
	// DisabledTransient means the provider is down for a cooldown window,
	// after which attempts resume automatically.
	DisabledTransient
	// DisabledPermanent means the provider is off for the process lifetime,
	// until an explicit Reset.
	DisabledPermanent
)

func (s AvailabilityState) String() string {
	switch s {
	case Enabled:
		return "enabled"
	case DisabledTransient:
		return "disabled_transient"
	case DisabledPermanent:
		return "disabled_permanent"
	default:
		return "unknown"
	}
}

// DefaultCooldown is how long a transient disable lasts.
const DefaultCooldown = 5 * time.Minute

// Availability is the process-wide LLM circuit state. Auth failures and
// model exhaustion trip it permanently; rate limiting trips it for a
// cooldown window.
type Availability struct {
	mu       sync.Mutex
	state    AvailabilityState
	reason   string
	until    time.Time
	cooldown time.Duration
	now      func() time.Time
}

func NewAvailability() *Availability {
	return &Availability{cooldown: DefaultCooldown, now: time.Now}
}

// Enabled reports whether completions may be attempted. A transient
// disable expires on its own once the cooldown has passed.
func (a *Availability) Enabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == DisabledTransient && a.now().After(a.until) {
		a.state = Enabled
		a.reason = ""
	}
	return a.state == Enabled
}

// State returns the current state and the reason it was entered.
func (a *Availability) State() (AvailabilityState, string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state, a.reason
}

// DisablePermanent turns the provider off until Reset.
func (a *Availability) DisablePermanent(reason string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = DisabledPermanent
	a.reason = reason
}

// DisableTransient turns the provider off for one cooldown window.
func (a *Availability) DisableTransient(reason string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == DisabledPermanent {
		return
	}
	a.state = DisabledTransient
	a.reason = reason
	a.until = a.now().Add(a.cooldown)
}

// Reset re-enables the provider regardless of how it was disabled.
func (a *Availability) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = Enabled
	a.reason = ""
}
