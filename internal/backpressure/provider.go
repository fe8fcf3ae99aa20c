// Package backpressure provides the backpressure signal providers and
// disposition handlers the execution engine consults before dispatching
// each submission.
package backpressure

import "fmt"

// Provider produces a scalar load-pressure signal in [0,1] from
// user-visible health (queue depth, pool utilisation, latency,
// composite). Called at most once per dispatch decision; must be cheap
// and non-blocking.
type Provider interface {
	Level() float64
}

// Describable is an optional capability a Provider may implement to
// explain why it reported the level it did.
type Describable interface {
	Description() string
}

// Describe returns p's description if it implements Describable, else "".
func Describe(p Provider) string {
	if d, ok := p.(Describable); ok {
		return d.Description()
	}
	return ""
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// QueueProvider reports queue occupancy as a fraction of its configured
// maximum: level = min(1, queueDepth/maxQueueDepth).
type QueueProvider struct {
	// QueueDepth returns the current queue depth.
	QueueDepth func() int64
	// MaxQueueDepth is the queue's capacity. Must be > 0.
	MaxQueueDepth int64
}

func (p *QueueProvider) Level() float64 {
	if p.MaxQueueDepth <= 0 {
		return 0
	}
	depth := p.QueueDepth()
	return clamp01(float64(depth) / float64(p.MaxQueueDepth))
}

func (p *QueueProvider) Description() string {
	return fmt.Sprintf("queue %d/%d", p.QueueDepth(), p.MaxQueueDepth)
}

// CompositeProvider reports the maximum level across its children,
// concatenating their descriptions so the dominant signal is
// introspectable.
type CompositeProvider struct {
	Providers []Provider
}

func (p *CompositeProvider) Level() float64 {
	var max float64
	for _, child := range p.Providers {
		if l := child.Level(); l > max {
			max = l
		}
	}
	return max
}

func (p *CompositeProvider) Description() string {
	desc := ""
	for i, child := range p.Providers {
		d := Describe(child)
		if d == "" {
			continue
		}
		if desc != "" {
			desc += "; "
		}
		desc += fmt.Sprintf("[%d] %s", i, d)
	}
	return desc
}

// PoolUtilisationProvider reports pressure once a worker or connection
// pool's utilisation crosses utilThreshold, scaling linearly to 1 at
// full utilisation: level = max(0, (util - utilThreshold)/(1 - utilThreshold)).
type PoolUtilisationProvider struct {
	// Active returns the number of busy pool members.
	Active func() int64
	// Total is the pool's capacity. Must be > 0.
	Total int64
	// UtilThreshold is the utilisation fraction below which level is 0.
	// Must be in [0,1).
	UtilThreshold float64
}

func (p *PoolUtilisationProvider) Level() float64 {
	if p.Total <= 0 || p.UtilThreshold >= 1 {
		return 0
	}
	util := float64(p.Active()) / float64(p.Total)
	if util <= p.UtilThreshold {
		return 0
	}
	return clamp01((util - p.UtilThreshold) / (1 - p.UtilThreshold))
}

func (p *PoolUtilisationProvider) Description() string {
	return fmt.Sprintf("pool %d/%d (threshold %.2f)", p.Active(), p.Total, p.UtilThreshold)
}

// LatencyProvider reports pressure once a recent P95 latency exceeds a
// target: level = min(1, max(0, (latency - target)/target)).
type LatencyProvider struct {
	// RecentP95 returns the recent P95 latency.
	RecentP95 func() float64
	// Target is the latency budget. Must be > 0.
	Target float64
}

func (p *LatencyProvider) Level() float64 {
	if p.Target <= 0 {
		return 0
	}
	latency := p.RecentP95()
	return clamp01((latency - p.Target) / p.Target)
}

func (p *LatencyProvider) Description() string {
	return fmt.Sprintf("p95 %.2f vs target %.2f", p.RecentP95(), p.Target)
}
