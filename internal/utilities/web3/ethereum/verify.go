package ethereum

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

const signatureLength = 65

var (
	ErrInvalidSignatureHex    = errors.New("ethereum: signature is not a valid hex string")
	ErrInvalidSignatureLength = errors.New("ethereum: signature must be 65 bytes")
	ErrInvalidRecoveryID      = errors.New("ethereum: signature recovery id must be 0, 1, 27 or 28")
	ErrInvalidAddress         = errors.New("ethereum: address is not a valid Ethereum address")
	ErrChecksumMismatch       = errors.New("ethereum: mixed-case address does not match its EIP-55 checksum")
	ErrAddressMismatch        = errors.New("ethereum: signature not from expected address")
)

// VerifySignature checks that signature is an EIP-191 personal_sign
// signature of message made by the key controlling address.
//
// Addresses are compared by value, so all-lowercase and all-uppercase forms
// are accepted. A mixed-case address must carry a valid EIP-55 checksum.
func VerifySignature(message string, signature string, address string) error {
	expected, err := parseAddress(address)
	if err != nil {
		return err
	}

	recovered, err := RecoverAddress(message, signature)
	if err != nil {
		return err
	}

	if recovered != expected {
		return ErrAddressMismatch
	}

	return nil
}

// RecoverAddress returns the address whose key produced signature over the
// EIP-191 hash of message.
func RecoverAddress(message string, signature string) (common.Address, error) {
	if !strings.HasPrefix(signature, "0x") && !strings.HasPrefix(signature, "0X") {
		signature = "0x" + signature
	}

	sig, err := hexutil.Decode(signature)
	if err != nil {
		return common.Address{}, ErrInvalidSignatureHex
	}
	if len(sig) != signatureLength {
		return common.Address{}, ErrInvalidSignatureLength
	}

	// Wallets sign with V in {27, 28}, go-ethereum recovers with {0, 1}.
	switch sig[64] {
	case 27, 28:
		sig[64] -= 27
	case 0, 1:
	default:
		return common.Address{}, ErrInvalidRecoveryID
	}

	pubKey, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("ethereum: error recovering public key: %w", err)
	}

	return crypto.PubkeyToAddress(*pubKey), nil
}

// SignMessage produces a personal_sign signature (V in {27, 28}) encoded as
// 0x-prefixed hex.
func SignMessage(key *ecdsa.PrivateKey, message string) (string, error) {
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
	if err != nil {
		return "", fmt.Errorf("ethereum: signing message: %w", err)
	}
	sig[64] += 27

	return hexutil.Encode(sig), nil
}

func parseAddress(address string) (common.Address, error) {
	if !common.IsHexAddress(address) {
		return common.Address{}, ErrInvalidAddress
	}

	addr := common.HexToAddress(address)

	digits := address
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		digits = digits[2:]
	}
	if digits != strings.ToLower(digits) && digits != strings.ToUpper(digits) {
		if addr.Hex()[2:] != digits {
			return common.Address{}, ErrChecksumMismatch
		}
	}

	return addr, nil
}

// Verifier adapts VerifySignature to a boolean check.
type Verifier struct{}

func (Verifier) Verify(message, signature, address string) bool {
	return VerifySignature(message, signature, address) == nil
}
