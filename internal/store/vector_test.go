package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	faqerrors "github.com/faqdesk/faqdesk/internal/errors"
)

func TestVectorCodec_RoundTrip(t *testing.T) {
	// Given: a vector with negative, zero and subnormal-ish values
	vec := []float32{0.5, -1.25, 0, 3.14159, 1e-30, -0.0001}

	// When: encoded and decoded
	blob := MarshalVector(vec)
	decoded, err := UnmarshalVector(blob, len(vec))

	// Then: the round trip is exact
	require.NoError(t, err)
	assert.Equal(t, vec, decoded)
	assert.Len(t, blob, len(vec)*4)
}

func TestVectorCodec_RoundTrip_ByteIdentical(t *testing.T) {
	vec := []float32{1, 2, 3, 4}

	blob1 := MarshalVector(vec)
	decoded, err := UnmarshalVector(blob1, 4)
	require.NoError(t, err)
	blob2 := MarshalVector(decoded)

	assert.Equal(t, blob1, blob2)
}

func TestUnmarshalVector_WrongLength_IsStorageCorruption(t *testing.T) {
	cases := []struct {
		name string
		blob []byte
		dims int
	}{
		{"truncated", make([]byte, 15), 4},
		{"too long", make([]byte, 20), 4},
		{"empty", nil, 4},
		{"off by one byte", make([]byte, 17), 4},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := UnmarshalVector(tc.blob, tc.dims)

			require.Error(t, err)
			assert.True(t, faqerrors.IsStorageCorruption(err))
		})
	}
}
