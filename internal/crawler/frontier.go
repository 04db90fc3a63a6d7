package crawler

import "sync"

// Frontier tracks discovered versus visited URLs and hands out work items in
// discovery order. A URL is marked seen inside the same critical section that
// accepts it, so concurrent discovery from multiple workers can never enqueue
// the same URL twice.
type Frontier struct {
	mu   sync.Mutex
	cond *sync.Cond

	prefixes []string
	maxURLs  int

	seen     map[string]struct{}
	queue    []WorkItem
	nextSeq  uint64
	accepted int

	// outstanding counts items accepted but not yet fully processed:
	// queued items plus items a worker is still working on.
	outstanding int
	closed      bool
}

// NewFrontier builds a Frontier bounded by the given prefixes and URL budget.
func NewFrontier(prefixes []string, maxURLs int) *Frontier {
	f := &Frontier{
		prefixes: prefixes,
		maxURLs:  maxURLs,
		seen:     make(map[string]struct{}),
	}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// Discover offers a candidate URL to the frontier. It returns true when the
// URL was accepted and enqueued: it matches an allowed prefix, has not been
// seen before, and the URL budget is not spent. Reaching the budget stops new
// discoveries but never aborts work already issued.
func (f *Frontier) Discover(rawURL string, depth int) bool {
	if rawURL == "" || !MatchesPrefix(rawURL, f.prefixes) {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return false
	}
	if _, dup := f.seen[rawURL]; dup {
		return false
	}
	if f.accepted >= f.maxURLs {
		return false
	}

	f.seen[rawURL] = struct{}{}
	item := WorkItem{URL: rawURL, Seq: f.nextSeq, Depth: depth}
	f.nextSeq++
	f.accepted++
	f.queue = append(f.queue, item)
	f.outstanding++
	f.cond.Signal()
	return true
}

// Next blocks until a work item is available and returns it. It returns
// ok=false once the frontier is exhausted: the queue is empty and no worker
// still holds an item that could discover more.
func (f *Frontier) Next() (WorkItem, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for len(f.queue) == 0 && f.outstanding > 0 && !f.closed {
		f.cond.Wait()
	}
	if len(f.queue) == 0 || f.closed {
		return WorkItem{}, false
	}

	item := f.queue[0]
	f.queue = f.queue[1:]
	return item, true
}

// Done marks one issued work item as fully processed (its result submitted
// and its discovered links offered back). When the last outstanding item
// completes, all workers blocked in Next are released.
func (f *Frontier) Done() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.outstanding--
	if f.outstanding <= 0 {
		f.cond.Broadcast()
	}
}

// Close stops the frontier: pending items are discarded and blocked Next
// callers return immediately.
func (f *Frontier) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	f.cond.Broadcast()
}

// Accepted returns the number of distinct URLs admitted so far.
func (f *Frontier) Accepted() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.accepted
}

// SeenCount returns the size of the visited set.
func (f *Frontier) SeenCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seen)
}
