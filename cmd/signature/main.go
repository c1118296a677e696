package main

import (
	"context"
	"flag"
	"log"

	"github.com/animica-labs/poies/pkg/signature"
)

// Signs a message with the node keyring and verifies the result, printing
// the SS58 address and signature. Useful for preparing snapshot submission
// headers by hand.
func main() {
	keyName := flag.String("key", signature.DefaultKeyName, "keyring file name under KEYRING_DIR/keys")
	message := flag.String("message", "", "message to sign")
	flag.Parse()

	if *message == "" {
		log.Fatal("missing -message")
	}

	keypair, err := signature.LoadKeypairFromEnv(context.Background(), *keyName)
	if err != nil {
		log.Fatalf("Failed to load keypair: %v", err)
	}

	provider, err := signature.NewProvider(keypair)
	if err != nil {
		log.Fatalf("Failed to create signature provider: %v", err)
	}

	address := signature.ToSs58Address(keypair)
	sig, err := provider.Sign(*message)
	if err != nil {
		log.Fatalf("Failed to sign message: %v", err)
	}

	log.Printf("Address: %s", address)
	log.Printf("Signature: %s", sig)

	ok, err := signature.Verify(*message, sig, address)
	if err != nil {
		log.Fatalf("Failed to verify signature: %v", err)
	}
	log.Println("Signature valid:", ok)
}
