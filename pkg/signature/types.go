package signature

import "github.com/ChainSafe/gossamer/lib/crypto/sr25519"

const (
	// SubstrateNetworkId is the generic substrate SS58 prefix.
	SubstrateNetworkId = 42

	// DefaultKeyName is the keyring file used when no key name is supplied.
	DefaultKeyName = "node"
)

type SignatureVerifier interface {
	// Verify reports whether signature is valid for message under the key
	// behind the SS58 address.
	Verify(message, signature, ss58Address string) (bool, error)
}

type Verifier struct{}

type SignatureProvider interface {
	// Sign signs message with the node key.
	Sign(message string) (string, error)
}

// Provider signs submission messages with a node keypair.
type Provider struct {
	keypair *sr25519.Keypair
}
