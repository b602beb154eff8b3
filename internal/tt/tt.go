// Package tt implements the transposition table: a 3-way bucketed, aged,
// depth-preferred hash table keyed by Zobrist hash, with gated
// replacement, a packed 10-byte entry, and multiplicative-hash indexing.
package tt

import (
	"math/bits"

	"github.com/chesscore/chesscore/internal/board"
)

// Flag is the bound type a stored score represents.
type Flag uint8

const (
	FlagNone Flag = iota
	FlagExact
	FlagLower
	FlagUpper
)

const entriesPerBucket = 3
const ageCycle = 1 << 5
const ageMask = ageCycle - 1

// entry is 10 bytes: key16 + move16 + score16 + staticEval16 + depth8 + flags8.
type entry struct {
	key        uint16
	move       board.Move
	score      int16
	staticEval int16
	depth      uint8
	flags      uint8 // bits 0-1 bound, bit 2 pv, bits 3-7 age
}

func packFlags(flag Flag, pv bool, age uint8) uint8 {
	f := uint8(flag)
	if pv {
		f |= 1 << 2
	}
	f |= age << 3
	return f
}

func (e entry) bound() Flag { return Flag(e.flags & 0b11) }
func (e entry) pv() bool    { return e.flags&0b100 != 0 }
func (e entry) age() uint8  { return e.flags >> 3 }

func (e entry) relativeAge(ttAge uint8) int {
	return int((ageCycle + ttAge - e.age()) & ageMask)
}

// bucket is 32-byte aligned so three 10-byte entries (30 bytes) plus
// 2 bytes of padding fill one cache line's worth of table metadata.
type bucket struct {
	entries [entriesPerBucket]entry
	_       [2]byte
}

// Table is the shared transposition table. Safe for concurrent Probe calls
// from multiple search workers; Store races are benign (worst case a
// dropped or overwritten entry), matching the Lazy-SMP model's tolerance
// for a racy shared table.
type Table struct {
	buckets []bucket
	size    uint64
	age     uint8
}

// New allocates a table sized to hold mib mebibytes of buckets.
func New(mib int) *Table {
	if mib < 1 {
		mib = 1
	}
	n := uint64(mib) * 1024 * 1024 / uint64(bucketSize())
	if n == 0 {
		n = 1
	}
	return &Table{
		buckets: make([]bucket, n),
		size:    n,
	}
}

func bucketSize() int {
	return entriesPerBucket*10 + 2
}

// Resize reallocates the table, discarding all stored entries.
func (t *Table) Resize(mib int) {
	*t = *New(mib)
}

// Clear zeroes every entry and resets the age counter.
func (t *Table) Clear() {
	for i := range t.buckets {
		t.buckets[i] = bucket{}
	}
	t.age = 0
}

// Birthday bumps the table's 5-bit age, marking a new search generation.
func (t *Table) Birthday() {
	t.age = (t.age + 1) & ageMask
}

// Prefetch hints that hash's bucket will be needed soon. Go exposes no
// portable prefetch intrinsic, so this touches the bucket's first word to
// coax it into cache.
func (t *Table) Prefetch(hash uint64) {
	idx := t.index(hash)
	_ = t.buckets[idx].entries[0].key
}

// index computes (hash * size) >> 64 via a 64x64->128 multiply, mapping
// the hash uniformly into the bucket domain without a modulo.
func (t *Table) index(hash uint64) uint64 {
	hi, _ := bits.Mul64(hash, t.size)
	return hi
}

// Probe looks up hash's bucket and returns the first entry whose 16-bit
// key fragment matches, if any. The returned score is still TT-relative;
// callers pass it through AdjustScoreFromTT at the probing ply.
func (t *Table) Probe(hash uint64) (move board.Move, score int, staticEval int, depth int, flag Flag, pvNode bool, found bool) {
	idx := t.index(hash)
	b := &t.buckets[idx]
	keyPart := uint16(hash)
	for i := range b.entries {
		e := &b.entries[i]
		if e.bound() != FlagNone && e.key == keyPart {
			return e.move, int(e.score), int(e.staticEval), int(e.depth), e.bound(), e.pv(), true
		}
	}
	return board.NoMove, 0, 0, 0, FlagNone, false, false
}

// Store writes a search result into hash's bucket, applying a quality-
// based victim selection and a gated replacement rule.
func (t *Table) Store(hash uint64, move board.Move, score, staticEval, depth int, ply int, flag Flag, pv bool) {
	idx := t.index(hash)
	keyPart := uint16(hash)
	b := &t.buckets[idx]

	victim := 0
	minQuality := int(^uint(0) >> 1)
	for i := range b.entries {
		e := &b.entries[i]
		if e.bound() == FlagNone || e.key == keyPart {
			victim = i
			break
		}
		quality := int(e.depth) - 4*e.relativeAge(t.age)
		if quality < minQuality {
			minQuality = quality
			victim = i
		}
	}

	e := &b.entries[victim]
	keyMatch := e.key == keyPart
	if move == board.NoMove && keyMatch {
		move = e.move
	}

	if keyMatch && flag != FlagExact && depth+4 <= int(e.depth) && e.age() == t.age {
		return
	}

	e.key = keyPart
	e.move = move
	e.score = adjustScoreToTT(score, ply)
	e.staticEval = int16(staticEval)
	e.depth = uint8(depth)
	e.flags = packFlags(flag, pv, t.age)
}

// Fill samples the first 1000 entries and returns how many are occupied,
// in parts-per-thousand, for the UCI "hashfull" field.
func (t *Table) Fill() int {
	sample := 1000 / entriesPerBucket
	if sample > len(t.buckets) {
		sample = len(t.buckets)
	}
	if sample == 0 {
		return 0
	}
	used := 0
	total := 0
	for i := 0; i < sample; i++ {
		for _, e := range t.buckets[i].entries {
			total++
			if e.bound() != FlagNone {
				used++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return used * 1000 / total
}

const (
	mateScore = 29000
	maxPly    = 128
)

func adjustScoreToTT(score, ply int) int16 {
	if score >= mateScore-maxPly {
		return int16(score + ply)
	}
	if score <= -mateScore+maxPly {
		return int16(score - ply)
	}
	return int16(score)
}

// AdjustScoreFromTT deabsolutizes a stored mate score back to the current
// search ply on read.
func AdjustScoreFromTT(score, ply int) int {
	if score >= mateScore-maxPly {
		return score - ply
	}
	if score <= -mateScore+maxPly {
		return score + ply
	}
	return score
}
