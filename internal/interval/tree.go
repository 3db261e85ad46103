package interval

import "sort"

// Entry pairs an Interval with an opaque identifier for the caller to
// resolve back to its own data (a transcript id, an exon index, ...).
type Entry struct {
	Interval
	ID string
}

// Tree answers overlap queries with a binary search on start
// coordinates followed by a backward scan that stops once the running
// prefix-max of end coordinates falls below the query; entries passed
// over in that scan are not bounded by the result size. In the spirit of the
// teacher's cache.IntervalTree (sorted-slice overlap search). Built
// once; not mutated afterward.
type Tree struct {
	entries   []Entry
	prefixMax []int // prefixMax[i] = max(End) over entries[0:i+1]
}

// Build constructs a Tree from a set of entries.
func Build(entries []Entry) *Tree {
	if len(entries) == 0 {
		return &Tree{}
	}

	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	prefixMax := make([]int, len(sorted))
	prefixMax[0] = sorted[0].End
	for i := 1; i < len(sorted); i++ {
		prefixMax[i] = sorted[i].End
		if prefixMax[i-1] > prefixMax[i] {
			prefixMax[i] = prefixMax[i-1]
		}
	}

	return &Tree{entries: sorted, prefixMax: prefixMax}
}

// At returns all entries whose interval contains pos.
func (t *Tree) At(pos int) []Entry {
	return t.Query(Interval{Start: pos, End: pos})
}

// Query returns all entries whose interval overlaps (touching allowed) q.
func (t *Tree) Query(q Interval) []Entry {
	if len(t.entries) == 0 {
		return nil
	}

	var result []Entry

	// Candidates must have start <= q.End; hi is the first index past that.
	hi := sort.Search(len(t.entries), func(i int) bool {
		return t.entries[i].Start > q.End
	})

	for i := hi - 1; i >= 0; i-- {
		if t.entries[i].End >= q.Start {
			result = append(result, t.entries[i])
		}
		// prefixMax[i] is the max End over entries[0:i+1]. If it is
		// already below q.Start, no earlier (lower-start) entry can
		// reach q.Start either, since prefixMax only grows with i.
		if t.prefixMax[i] < q.Start {
			break
		}
	}

	return result
}

// Len reports the number of entries in the tree.
func (t *Tree) Len() int {
	return len(t.entries)
}
