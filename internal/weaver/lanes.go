package weaver

import "sync"

// LaneLock provides per-weaving serialization. Prompt cycles for the same
// weaving run one at a time, so the load-mutate-persist sequence cannot
// lose an update to a racing call; prompts for different weavings proceed
// concurrently.
//
// Design: a global mutex protects the lane map; each lane has its own
// mutex for intra-weaving serialization. The global mutex is held only
// briefly to look up or create the per-weaving mutex.
type LaneLock struct {
	mu    sync.Mutex
	lanes map[string]*lane
}

// lane stores per-weaving synchronization metadata.
// refs counts goroutines that acquired (or are waiting on) this lane.
type lane struct {
	mu   sync.Mutex
	refs int
}

// NewLaneLock creates a ready-to-use LaneLock.
func NewLaneLock() *LaneLock {
	return &LaneLock{
		lanes: make(map[string]*lane),
	}
}

// Acquire gets or creates the per-weaving mutex and locks it.
// The caller must call Release with the same key when done.
func (l *LaneLock) Acquire(key string) {
	l.mu.Lock()
	ln, ok := l.lanes[key]
	if !ok {
		ln = &lane{}
		l.lanes[key] = ln
	}
	ln.refs++
	l.mu.Unlock()

	// Lock outside the global mutex so other weavings are not blocked.
	ln.mu.Lock()
}

// Release unlocks the per-weaving mutex for the given key.
// The caller must have previously called Acquire with the same key.
func (l *LaneLock) Release(key string) {
	l.mu.Lock()
	ln, ok := l.lanes[key]
	if !ok {
		l.mu.Unlock()
		return
	}
	ln.refs--
	l.mu.Unlock()

	ln.mu.Unlock()
}

// Sweep removes lane entries with no holders or waiters and returns the
// number removed. Prevents unbounded growth of the lane map over time;
// scheduled by the maintenance module.
func (l *LaneLock) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, ln := range l.lanes {
		if ln.refs == 0 {
			delete(l.lanes, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked lanes.
func (l *LaneLock) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lanes)
}
