package prepass

import "sort"

// readyList holds the positions (within one unit) of instructions ready
// to schedule next, bottom-up — every dependent has already been emitted.
// Entries are kept sorted ascending by the native ordering so the best
// candidate is always the last element.
type readyList struct {
	idx          []int
	criticalPath []uint32
}

func newReadyList(criticalPath []uint32) *readyList {
	return &readyList{criticalPath: criticalPath}
}

// less reports whether a sorts strictly before (is worse than) b: shorter
// critical path to a sink loses first; ties resolve on index, with the
// highest index sorting last so it is preferred — scheduling runs
// bottom-up, so preferring the later instruction keeps
// mutually-independent runs in their original order after the final
// reversal, giving a deterministic, reproducible tie-break.
func (r *readyList) less(a, b int) bool {
	if r.criticalPath[a] != r.criticalPath[b] {
		return r.criticalPath[a] < r.criticalPath[b]
	}
	return a < b
}

func (r *readyList) insert(i int) {
	pos := sort.Search(len(r.idx), func(k int) bool { return !r.less(r.idx[k], i) })
	r.idx = append(r.idx, 0)
	copy(r.idx[pos+1:], r.idx[pos:])
	r.idx[pos] = i
}

func (r *readyList) removeValue(v int) {
	for k, i := range r.idx {
		if i == v {
			r.idx = append(r.idx[:k], r.idx[k+1:]...)
			return
		}
	}
}

func (r *readyList) empty() bool { return len(r.idx) == 0 }

// popBest removes and returns the best (last) candidate, for the
// low-pressure regime's native-ordering pick.
func (r *readyList) popBest() int {
	n := len(r.idx) - 1
	best := r.idx[n]
	r.idx = r.idx[:n]
	return best
}

// futureEntry is one instruction waiting on a latency edge before it can
// join ready.
type futureEntry struct {
	idx        int
	readyCycle uint32
}

// futureReadyList holds entries sorted ascending by readyCycle (ties on
// index) so the soonest-ready entry is always first.
type futureReadyList struct {
	entries []futureEntry
}

func (f *futureReadyList) less(a, b futureEntry) bool {
	if a.readyCycle != b.readyCycle {
		return a.readyCycle < b.readyCycle
	}
	return a.idx < b.idx
}

func (f *futureReadyList) insert(idx int, readyCycle uint32) {
	e := futureEntry{idx: idx, readyCycle: readyCycle}
	pos := sort.Search(len(f.entries), func(k int) bool { return !f.less(f.entries[k], e) })
	f.entries = append(f.entries, futureEntry{})
	copy(f.entries[pos+1:], f.entries[pos:])
	f.entries[pos] = e
}

func (f *futureReadyList) empty() bool { return len(f.entries) == 0 }

// minReadyCycle returns the smallest readyCycle among pending entries,
// the cycle the scheduler fast-forwards to when nothing is ready.
func (f *futureReadyList) minReadyCycle() uint32 { return f.entries[0].readyCycle }

// drainTo moves every entry whose readyCycle <= cycle into ready.
func (f *futureReadyList) drainTo(cycle uint32, ready *readyList) {
	i := 0
	for i < len(f.entries) && f.entries[i].readyCycle <= cycle {
		ready.insert(f.entries[i].idx)
		i++
	}
	f.entries = f.entries[i:]
}

func (f *futureReadyList) removeAt(pos int) {
	f.entries = append(f.entries[:pos], f.entries[pos+1:]...)
}
