package alert

import (
	"sync"
	"time"
)

// Reason explains a withheld alert. Denials are expected outcomes used for
// logging and tests, never errors.
type Reason string

const (
	ReasonInsufficientProfit Reason = "INSUFFICIENT_PROFIT"
	ReasonGlobalCooldown     Reason = "GLOBAL_COOLDOWN"
	ReasonCardCooldown       Reason = "CARD_COOLDOWN"
)

// Decision is the gate's answer for one candidate alert.
type Decision struct {
	Approved bool
	Reason   Reason
}

// Gate suppresses repeat alerts inside per-card and global cooldown windows.
// All timestamp state lives here, guarded by one mutex, and changes only at
// the moment an alert is approved.
type Gate struct {
	cardCooldown   time.Duration
	globalCooldown time.Duration

	mu         sync.Mutex
	lastGlobal time.Time
	lastByCard map[string]time.Time

	now func() time.Time // swapped in tests
}

func NewGate(cardCooldown, globalCooldown time.Duration) *Gate {
	return &Gate{
		cardCooldown:   cardCooldown,
		globalCooldown: globalCooldown,
		lastByCard:     make(map[string]time.Time),
		now:            time.Now,
	}
}

// TryConsume decides whether an alert for the card may fire now and, if
// approved, records both the per-card and the global timestamp. The profit
// threshold is inclusive: profit equal to threshold passes. A nil profit
// (not computable) is never alertable.
func (g *Gate) TryConsume(card string, profit *float64, threshold float64) Decision {
	if profit == nil || *profit < threshold {
		return Decision{Reason: ReasonInsufficientProfit}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if !g.lastGlobal.IsZero() && now.Sub(g.lastGlobal) < g.globalCooldown {
		return Decision{Reason: ReasonGlobalCooldown}
	}
	if last, ok := g.lastByCard[card]; ok && now.Sub(last) < g.cardCooldown {
		return Decision{Reason: ReasonCardCooldown}
	}

	g.lastGlobal = now
	g.lastByCard[card] = now
	return Decision{Approved: true}
}

// LastAlertAt reports when the card last fired, if ever.
func (g *Gate) LastAlertAt(card string) (time.Time, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	ts, ok := g.lastByCard[card]
	return ts, ok
}
