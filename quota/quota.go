// Package quota holds the free-tier usage policy. It sits in the request
// handling layer, entirely decoupled from batch processing.
package quota

import (
	"sync"
	"time"
)

// Entitlements answers whether a caller is on the Pro tier. The billing
// collaborator (checkout plus webhook) flips this flag outside the core.
type Entitlements interface {
	IsPro(callerID string) bool
}

// StaticEntitlements - In-memory Entitlements implementation. A billing
// webhook handler would call SetPro on checkout completion.
type StaticEntitlements struct {
	mu  sync.RWMutex
	pro map[string]bool
}

func NewStaticEntitlements() *StaticEntitlements {
	return &StaticEntitlements{pro: make(map[string]bool)}
}

func (e *StaticEntitlements) SetPro(callerID string, isPro bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pro[callerID] = isPro
}

func (e *StaticEntitlements) IsPro(callerID string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.pro[callerID]
}

// DailyLimiter caps previews per caller per UTC day. Counters reset when
// the day rolls over. Pro checks are the caller's concern; the limiter
// only counts.
type DailyLimiter struct {
	limit int
	now   func() time.Time

	mu     sync.Mutex
	day    string
	counts map[string]int
}

// NewDailyLimiter creates a limiter allowing limit previews per day.
func NewDailyLimiter(limit int) *DailyLimiter {
	return &DailyLimiter{
		limit:  limit,
		now:    time.Now,
		counts: make(map[string]int),
	}
}

// WithClock replaces the limiter's clock, for tests.
func (l *DailyLimiter) WithClock(now func() time.Time) *DailyLimiter {
	l.now = now
	return l
}

// Remaining reports how many previews the caller has left today.
func (l *DailyLimiter) Remaining(callerID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollover()
	remaining := l.limit - l.counts[callerID]
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Spend consumes n previews for the caller. Returns false, leaving the
// counter untouched, when n exceeds what is left.
func (l *DailyLimiter) Spend(callerID string, n int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollover()
	if l.counts[callerID]+n > l.limit {
		return false
	}
	l.counts[callerID] += n
	return true
}

// rollover resets all counters on day change. Callers hold l.mu.
func (l *DailyLimiter) rollover() {
	today := l.now().UTC().Format("2006-01-02")
	if l.day != today {
		l.day = today
		l.counts = make(map[string]int)
	}
}
