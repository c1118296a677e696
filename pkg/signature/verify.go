package signature

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ChainSafe/gossamer/lib/crypto/sr25519"
	"github.com/rs/zerolog/log"
	"github.com/vedhavyas/go-subkey"
)

const signatureLength = 64

func NewVerifier() *Verifier {
	return &Verifier{}
}

func (v *Verifier) Verify(message, signature, ss58Address string) (bool, error) {
	return Verify(message, signature, ss58Address)
}

// Verify checks a 0x-hex sr25519 signature over message against the public
// key embedded in a provider's SS58 address. A malformed signature or
// address is an error; a well-formed signature by the wrong key is (false,
// nil).
func Verify(message, signature, ss58Address string) (bool, error) {
	sigBytes, err := decodeSignature(signature)
	if err != nil {
		log.Error().Err(err).Msg("malformed signature")
		return false, err
	}

	_, pubKeyBytes, err := subkey.SS58Decode(ss58Address)
	if err != nil {
		log.Error().Err(err).Str("address", ss58Address).Msg("failed to decode SS58 address")
		return false, fmt.Errorf("decode SS58 address: %w", err)
	}

	publicKey, err := sr25519.NewPublicKey(pubKeyBytes)
	if err != nil {
		log.Error().Err(err).Msg("failed to build public key")
		return false, fmt.Errorf("build public key: %w", err)
	}

	return publicKey.Verify([]byte(message), sigBytes)
}

func decodeSignature(signature string) ([]byte, error) {
	if !strings.HasPrefix(signature, "0x") {
		return nil, fmt.Errorf("signature must start with 0x")
	}

	sigBytes, err := hex.DecodeString(signature[2:])
	if err != nil {
		return nil, fmt.Errorf("decode signature hex: %w", err)
	}
	if len(sigBytes) != signatureLength {
		return nil, fmt.Errorf("signature must be %d bytes, got %d", signatureLength, len(sigBytes))
	}
	return sigBytes, nil
}
