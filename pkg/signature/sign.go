package signature

import (
	"encoding/hex"
	"fmt"

	"github.com/ChainSafe/gossamer/lib/crypto/sr25519"
	"github.com/rs/zerolog/log"
)

// NewProvider wraps a node keypair as a signing provider for snapshot
// submissions.
func NewProvider(keypair *sr25519.Keypair) (*Provider, error) {
	return &Provider{keypair: keypair}, nil
}

// Sign produces an sr25519 signature over message, rendered as 0x-prefixed
// hex. The verifier expects exactly this encoding.
func (p *Provider) Sign(message string) (string, error) {
	if p.keypair == nil {
		return "", fmt.Errorf("node keypair not initialized")
	}

	sig, err := p.keypair.Sign([]byte(message))
	if err != nil {
		log.Error().Err(err).Msg("failed to sign message")
		return "", fmt.Errorf("sign message: %w", err)
	}

	return "0x" + hex.EncodeToString(sig), nil
}
