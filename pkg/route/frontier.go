package route

// item is a frontier entry. Entries are never updated in place; a cheaper
// path to a state pushes a new entry and the stale one is skipped on pop.
type item struct {
	f, h float64 // f = g + h
	seq  uint64  // insertion order
	g    float64
	node int32 // index into search.nodes
}

func (a item) less(b item) bool {
	if a.f != b.f {
		return a.f < b.f
	}
	if a.h != b.h {
		return a.h < b.h
	}
	return a.seq < b.seq
}

// frontier is a binary min-heap of items ordered by (f, h, seq).
type frontier []item

func (pq frontier) Len() int           { return len(pq) }
func (pq frontier) Less(i, j int) bool { return pq[i].less(pq[j]) }
func (pq frontier) Swap(i, j int)      { pq[i], pq[j] = pq[j], pq[i] }

func (pq *frontier) Push(x any) {
	*pq = append(*pq, x.(item))
}

func (pq *frontier) Pop() any {
	old := *pq
	n := len(old)
	it := old[n-1]
	*pq = old[:n-1]
	return it
}
