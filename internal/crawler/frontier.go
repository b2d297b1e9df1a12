package crawler

import "container/heap"

// frontierEntry is a candidate URL waiting to be fetched.
type frontierEntry struct {
	url   string
	score int
	seq   int
}

// entryHeap is a max-heap on score; equal scores pop in insertion order.
type entryHeap []frontierEntry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].score != h[j].score {
		return h[i].score > h[j].score
	}
	return h[i].seq < h[j].seq
}

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) { *h = append(*h, x.(frontierEntry)) } //nolint:forcetypeassert // only frontierEntry is pushed

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// frontier is the priority queue of a single crawl. It is only touched
// by the orchestrating goroutine, so it has no lock.
type frontier struct {
	entries entryHeap
	queued  map[string]struct{}
	seq     int
}

func newFrontier() *frontier {
	return &frontier{queued: make(map[string]struct{})}
}

// push adds url unless it was queued before during this crawl.
func (f *frontier) push(url string, score int) bool {
	if _, ok := f.queued[url]; ok {
		return false
	}
	f.queued[url] = struct{}{}
	heap.Push(&f.entries, frontierEntry{url: url, score: score, seq: f.seq})
	f.seq++
	return true
}

// pop removes the highest-priority entry.
func (f *frontier) pop() (frontierEntry, bool) {
	if len(f.entries) == 0 {
		return frontierEntry{}, false
	}
	return heap.Pop(&f.entries).(frontierEntry), true //nolint:forcetypeassert // only frontierEntry is pushed
}

func (f *frontier) len() int { return len(f.entries) }
