package nnue

import "github.com/chesscore/chesscore/internal/board"

// Accumulator holds the hidden-layer vector for both perspectives at one
// ply, plus the mirror flag each perspective used (needed to know whether a
// later king move crosses the mirror line and forces a refresh).
type Accumulator struct {
	Values [2][HiddenSize]int16 // [Color]
	Mirror [2]bool
	Bucket [2]int
}

// refreshEntry is one input-bucket cache slot: a cached accumulator vector
// plus the piece bitboards it was computed from, so a later refresh can
// diff against it instead of recomputing from nothing.
type refreshEntry struct {
	values   [HiddenSize]int16
	pieces   [2][6]board.Bitboard
	valid    bool
}

// RefreshCache is keyed by [perspective][mirror][bucket].
type RefreshCache struct {
	entries [2][2][KingBuckets]refreshEntry
}

// NewRefreshCache allocates an empty cache.
func NewRefreshCache() *RefreshCache {
	return &RefreshCache{}
}

// AccumulatorStack holds one Accumulator per ply of search (no unmake, so
// push is a copy and pop is just decrementing the index).
type AccumulatorStack struct {
	stack [MaxPly + 8]Accumulator
	top   int
}

// NewAccumulatorStack creates an empty stack positioned at index 0.
func NewAccumulatorStack() *AccumulatorStack {
	return &AccumulatorStack{}
}

// Current returns the accumulator for the current ply.
func (s *AccumulatorStack) Current() *Accumulator {
	return &s.stack[s.top]
}

// Push copies the current accumulator forward to the next ply and advances.
func (s *AccumulatorStack) Push() {
	if s.top+1 < len(s.stack) {
		s.stack[s.top+1] = s.stack[s.top]
		s.top++
	}
}

// Pop returns to the previous ply's accumulator.
func (s *AccumulatorStack) Pop() {
	if s.top > 0 {
		s.top--
	}
}

// Reset empties the stack back to ply 0.
func (s *AccumulatorStack) Reset() {
	s.top = 0
}

// Activate fills the ply-0 accumulator for both perspectives from scratch.
func (s *AccumulatorStack) Activate(b *board.Board, net *Network, cache *RefreshCache) {
	s.top = 0
	acc := &s.stack[0]
	for _, c := range [2]board.Color{board.White, board.Black} {
		refreshPerspective(acc, b, net, cache, c)
	}
}

func refreshPerspective(acc *Accumulator, b *board.Board, net *Network, cache *RefreshCache, perspective board.Color) {
	kingSq := b.KingSquare(perspective)
	mirror := ShouldMirror(kingSq)
	bucket := KingBucket(kingSq)
	acc.Mirror[perspective] = mirror
	acc.Bucket[perspective] = bucket

	entry := &cache.entries[perspective][boolIndex(mirror)][bucket]
	weights := net.FeatureWeights[bucket]

	if !entry.valid {
		copy(entry.values[:], net.FeatureBias)
		for c := board.White; c <= board.Black; c++ {
			for pt := board.Pawn; pt <= board.King; pt++ {
				entry.pieces[c][pt] = b.Pieces[c][pt]
			}
		}
		features := ActiveFeatures(b, perspective, mirror)
		for _, f := range features {
			addFeature(entry.values[:], weights, f)
		}
		entry.valid = true
		acc.Values[perspective] = entry.values
		return
	}

	// Diff cached piece bitboards against current ones: added = current
	// AND-NOT cached, removed = cached AND-NOT current.
	vals := entry.values
	for c := board.White; c <= board.Black; c++ {
		for pt := board.Pawn; pt <= board.King; pt++ {
			cur := b.Pieces[c][pt]
			cached := entry.pieces[c][pt]
			added := cur &^ cached
			removed := cached &^ cur
			for added != 0 {
				sq := added.PopLSB()
				psq := perspectiveSquare(sq, mirror)
				addFeature(vals[:], weights, FeatureIndex(pt, c, psq))
			}
			for removed != 0 {
				sq := removed.PopLSB()
				psq := perspectiveSquare(sq, mirror)
				subFeature(vals[:], weights, FeatureIndex(pt, c, psq))
			}
			entry.pieces[c][pt] = cur
		}
	}
	entry.values = vals
	acc.Values[perspective] = vals
}

func boolIndex(b bool) int {
	if b {
		return 1
	}
	return 0
}

func addFeature(vals []int16, weights []int16, feature int) {
	base := feature * HiddenSize
	for i := 0; i < HiddenSize; i++ {
		vals[i] += weights[base+i]
	}
}

func subFeature(vals []int16, weights []int16, feature int) {
	base := feature * HiddenSize
	for i := 0; i < HiddenSize; i++ {
		vals[i] -= weights[base+i]
	}
}

// ApplyDelta updates the current accumulator for one perspective with the
// given add/sub feature lists, using that perspective's current bucket.
func (s *AccumulatorStack) ApplyDelta(perspective board.Color, adds, subs []int, net *Network) {
	acc := s.Current()
	bucket := acc.Bucket[perspective]
	weights := net.FeatureWeights[bucket]
	vals := acc.Values[perspective][:]
	for _, f := range adds {
		addFeature(vals, weights, f)
	}
	for _, f := range subs {
		subFeature(vals, weights, f)
	}
}
