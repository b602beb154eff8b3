package nnue

import (
	"encoding/binary"
	"fmt"
	"io"
)

// LoadWeights reads the feature/output weight and bias blob layout:
// per-bucket feature weights [i16; FeatureCount*HiddenSize], then feature
// biases [i16; HiddenSize], then per-perspective output weights
// [i16; HiddenSize][2], then a scalar i16 output bias. The blob is assumed
// 64-byte aligned by its loader (an embed.FS asset or a memory-mapped
// file); this function only validates size and byte-decodes it.
func (n *Network) LoadWeights(r io.Reader) error {
	for bucket := 0; bucket < KingBuckets; bucket++ {
		if err := binary.Read(r, binary.LittleEndian, n.FeatureWeights[bucket]); err != nil {
			return fmt.Errorf("nnue: reading feature weights for bucket %d: %w", bucket, err)
		}
	}
	if err := binary.Read(r, binary.LittleEndian, n.FeatureBias); err != nil {
		return fmt.Errorf("nnue: reading feature bias: %w", err)
	}
	interleaved := make([]int16, HiddenSize*2)
	if err := binary.Read(r, binary.LittleEndian, interleaved); err != nil {
		return fmt.Errorf("nnue: reading output weights: %w", err)
	}
	for i := 0; i < HiddenSize; i++ {
		n.OutputWeights[0][i] = interleaved[i*2]
		n.OutputWeights[1][i] = interleaved[i*2+1]
	}
	if err := binary.Read(r, binary.LittleEndian, &n.OutputBias); err != nil {
		return fmt.Errorf("nnue: reading output bias: %w", err)
	}
	return nil
}
