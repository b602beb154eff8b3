// Package nnue implements the engine's incrementally-updated evaluator:
// 768 piece/color/square features per perspective, king-bucketed and
// horizontally mirrored, feeding a single 1280-wide hidden layer and a
// pair-activation output layer, all quantized to integers.
package nnue

import "github.com/chesscore/chesscore/internal/board"

// Network architecture constants.
const (
	NumPieceTypes = 6  // Pawn..King
	NumColors     = 2
	NumSquares    = 64
	FeatureCount  = NumPieceTypes * NumColors * NumSquares // 768

	HiddenSize = 1280

	KingBuckets = 16

	// Quantization.
	QA    = 255 // clipped-ReLU ceiling for the hidden layer
	QB    = 64  // output-weight quantization scale
	Scale = 400

	MaxPly = 128
)

// kingBucketTable maps a (mirrored) king square to one of KingBuckets
// weight-set indices, grouping the king's own half of the board into 16
// buckets (mirroring already folds files E-H onto A-D, so only 32 squares
// need a bucket; each rank splits into files A-B and files C-D).
var kingBucketTable = [32]int{
	0, 0, 1, 1, 2, 2, 3, 3,
	4, 4, 5, 5, 6, 6, 7, 7,
	8, 8, 9, 9, 10, 10, 11, 11,
	12, 12, 13, 13, 14, 14, 15, 15,
}

// KingBucket returns the input-weight bucket for a perspective's king
// square, after mirroring.
func KingBucket(kingSq board.Square) int {
	mirrored := perspectiveSquare(kingSq, ShouldMirror(kingSq))
	file := mirrored.File()
	rank := mirrored.Rank()
	return kingBucketTable[rank*4+file]
}

// ShouldMirror reports whether a perspective's king square (files E-H)
// requires the horizontal mirror transform on all of that perspective's
// features.
func ShouldMirror(kingSq board.Square) bool {
	return kingSq.File() >= 4
}

// MirrorSquare flips sq horizontally (file only), used once ShouldMirror
// has selected the mirrored perspective.
func MirrorSquare(sq board.Square) board.Square {
	return board.NewSquare(7-sq.File(), sq.Rank())
}

// Network holds quantized weights for all king buckets.
type Network struct {
	// FeatureWeights[bucket][feature][hidden]
	FeatureWeights [][]int16
	FeatureBias    []int16 // [HiddenSize]
	// OutputWeights[perspective][hidden], perspective 0 = us, 1 = them.
	OutputWeights [2][]int16
	OutputBias    int16
}

// NewNetwork allocates zeroed weight storage for KingBuckets buckets.
func NewNetwork() *Network {
	n := &Network{
		FeatureBias: make([]int16, HiddenSize),
	}
	n.FeatureWeights = make([][]int16, KingBuckets)
	for i := range n.FeatureWeights {
		n.FeatureWeights[i] = make([]int16, FeatureCount*HiddenSize)
	}
	n.OutputWeights[0] = make([]int16, HiddenSize)
	n.OutputWeights[1] = make([]int16, HiddenSize)
	return n
}

func clippedReLU(x int16) int32 {
	if x < 0 {
		return 0
	}
	if int32(x) > QA {
		return QA
	}
	return int32(x)
}

// Forward computes the evaluation for the side to move, given the current
// accumulator (already activated for both perspectives) and scaling
// inputs: material-phase scaling and 50-move fade. dotClippedReLU squares
// the clipped activation before multiplying by the output weight (SCReLU),
// so the single division by QA below brings the squared QA-scale term back
// to linear before the QA*QB descale.
func (n *Network) Forward(us, them *[HiddenSize]int16, materialPhase, halfmoveClock int) int {
	var sum int32
	sum += dotClippedReLU(us[:], n.OutputWeights[0])
	sum += dotClippedReLU(them[:], n.OutputWeights[1])

	out := sum/QA + int32(n.OutputBias)
	out = out * Scale / (QA * QB)

	materialScalingBase := int32(28000)
	out = out * (materialScalingBase + int32(materialPhase)) / 32768
	out = out * int32(200-halfmoveClock) / 200
	return int(out)
}
