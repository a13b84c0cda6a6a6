package crypto

import (
	"crypto/rand"
	"math/big"

	"github.com/gofrs/uuid"
	"github.com/pkg/errors"
)

const alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// MinNonceLength is the shortest nonce EIP-4361 allows.
const MinNonceLength = 8

// GenerateNonce returns a uniformly random alphanumeric string read from
// crypto/rand.
func GenerateNonce(length int) (string, error) {
	if length < MinNonceLength {
		return "", errors.Errorf("nonce length %d is shorter than %d", length, MinNonceLength)
	}

	max := big.NewInt(int64(len(alphanumeric)))
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", errors.WithMessage(err, "Error generating nonce")
		}
		b[i] = alphanumeric[n.Int64()]
	}

	return string(b), nil
}

// NewRequestID returns a random UUID suitable for the Request ID field.
func NewRequestID() (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", errors.WithMessage(err, "Error generating request id")
	}
	return id.String(), nil
}
