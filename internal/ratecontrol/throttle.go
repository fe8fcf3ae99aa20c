package ratecontrol

import (
	"log"

	"golang.org/x/time/rate"
)

// WarnThrottle rate-limits how often the engine logs "missed deadline"
// warnings, so a sustained overload doesn't flood stderr with one line
// per dispatch. It does not affect pacing decisions; it only gates a
// logging side channel.
type WarnThrottle struct {
	limiter *rate.Limiter
}

// NewWarnThrottle allows at most one warning every 1/perSecond seconds,
// with a burst of 1 (no accumulation of suppressed warnings into a burst
// later). A non-positive perSecond is treated as 1.
func NewWarnThrottle(perSecond float64) *WarnThrottle {
	if perSecond <= 0 {
		perSecond = 1
	}
	return &WarnThrottle{limiter: rate.NewLimiter(rate.Limit(perSecond), 1)}
}

// Warnf logs the formatted message iff the throttle currently allows it.
func (t *WarnThrottle) Warnf(format string, args ...any) {
	if t.limiter.Allow() {
		log.Printf("WARN: "+format, args...)
	}
}
