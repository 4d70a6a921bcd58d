package address

import (
	"crypto/ed25519"
	"crypto/sha256"
	"testing"

	"filippo.io/edwards25519"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_PublicKey(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	assert.NoError(t, Validate(Encode(pub)))
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name string
		addr string
	}{
		{"empty", ""},
		{"not base58", "0xabc0OIl"},
		{"too short", Encode([]byte{1, 2, 3})},
		{"too long", Encode(make([]byte, 33))},
		{"off curve", Encode(offCurvePoint(t))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.addr)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidAddress))
		})
	}
}

// offCurvePoint hashes a counter until the digest is not a valid curve point.
func offCurvePoint(t *testing.T) []byte {
	t.Helper()
	for i := 0; i < 1000; i++ {
		sum := sha256.Sum256([]byte{byte(i), byte(i >> 8)})
		if _, err := new(edwards25519.Point).SetBytes(sum[:]); err != nil {
			return sum[:]
		}
	}
	t.Fatal("no off-curve point found")
	return nil
}
