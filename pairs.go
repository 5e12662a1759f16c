package qshadow

// PairCount is C(n, 2), the number of unordered snapshot pairs.
func PairCount(n int) int64 {
	if n < 2 {
		return 0
	}
	return int64(n) * int64(n-1) / 2
}

/*
Batch is a contiguous run of the lexicographic pair enumeration
(0,1), (0,2), ..., (0,n-1), (1,2), ... starting at (First, Second).
*/
type Batch struct {
	First  int
	Second int
	Count  int
}

// Each visits the pairs of the batch in enumeration order.
func (b Batch) Each(n int, fn func(m1, m2 int)) {
	m1, m2 := b.First, b.Second
	for i := 0; i < b.Count; i++ {
		fn(m1, m2)
		m2++
		if m2 == n {
			m1++
			m2 = m1 + 1
		}
	}
}

/*
BatchGenerator lazily cuts the pair enumeration of n snapshots into
batches of at most size pairs. Only the cursor is held, so memory does not
grow with the number of pairs.
*/
type BatchGenerator struct {
	n         int
	size      int
	m1, m2    int
	remaining int64
}

// NewBatchGenerator returns a generator over C(n, 2) pairs. A size below 1
// is treated as 1.
func NewBatchGenerator(n, size int) *BatchGenerator {
	return &BatchGenerator{
		n:         n,
		size:      max(size, 1),
		m1:        0,
		m2:        1,
		remaining: PairCount(n),
	}
}

// Next returns the following batch, or false once every pair was handed out.
func (g *BatchGenerator) Next() (Batch, bool) {
	if g.remaining <= 0 {
		return Batch{}, false
	}

	count := g.size
	if int64(count) > g.remaining {
		count = int(g.remaining)
	}
	b := Batch{First: g.m1, Second: g.m2, Count: count}

	g.remaining -= int64(count)
	g.advance(count)
	return b, true
}

// advance moves the cursor count pairs forward, a row at a time.
func (g *BatchGenerator) advance(count int) {
	for count > 0 && g.m1 < g.n-1 {
		left := g.n - g.m2
		if count < left {
			g.m2 += count
			return
		}
		count -= left
		g.m1++
		g.m2 = g.m1 + 1
	}
}

// DefaultBatchSize splits the pairs into roughly workers*divisor batches.
func DefaultBatchSize(n, workers, divisor int) int {
	total := PairCount(n)
	size := total / int64(max(workers, 1)) / int64(max(divisor, 1))
	if size < 1 {
		return 1
	}
	return int(size)
}
