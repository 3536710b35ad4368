package store

import (
	"encoding/binary"
	"fmt"
	"math"

	faqerrors "github.com/faqdesk/faqdesk/internal/errors"
)

// Vectors are stored as raw little-endian float32 blobs, 4 bytes per
// dimension. The encoding carries no header; the expected dimension comes
// from configuration and is enforced on read.

// MarshalVector encodes a vector into its blob form.
func MarshalVector(vec []float32) []byte {
	buf := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// UnmarshalVector decodes a blob produced by MarshalVector. A blob whose
// length is not dims*4 is reported as storage corruption so the caller can
// skip the entry instead of ranking against garbage.
func UnmarshalVector(blob []byte, dims int) ([]float32, error) {
	if len(blob) != dims*4 {
		return nil, faqerrors.StorageCorruption(
			fmt.Sprintf("vector blob is %d bytes, want %d", len(blob), dims*4), nil)
	}

	vec := make([]float32, dims)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vec, nil
}
