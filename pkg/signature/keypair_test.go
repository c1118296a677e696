package signature

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/vedhavyas/go-subkey"
)

func TestLoadMnemonic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "node.json")
	content := `{"secretPhrase":"` + subkey.DevPhrase + `","address":"ignored"}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write keyring file: %v", err)
	}

	mnemonic, err := LoadMnemonic(path)
	if err != nil {
		t.Fatalf("LoadMnemonic error: %v", err)
	}
	if mnemonic != subkey.DevPhrase {
		t.Fatalf("unexpected mnemonic: %q", mnemonic)
	}
}

func TestLoadMnemonic_MissingPhrase(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "node.json")
	if err := os.WriteFile(path, []byte(`{"address":"only"}`), 0o600); err != nil {
		t.Fatalf("write keyring file: %v", err)
	}

	if _, err := LoadMnemonic(path); err == nil {
		t.Fatalf("expected error for file without secretPhrase")
	}
}

func TestLoadKeypairFromEnv_SeedPhrase(t *testing.T) {
	t.Setenv("SEED_PHRASE", subkey.DevPhrase)

	keypair, err := LoadKeypairFromEnv(context.Background(), DefaultKeyName)
	if err != nil {
		t.Fatalf("LoadKeypairFromEnv error: %v", err)
	}
	if keypair == nil {
		t.Fatal("expected keypair")
	}
}

func TestLoadKeypairFromEnv_KeyringDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "keys"), 0o700); err != nil {
		t.Fatalf("mkdir keys: %v", err)
	}
	content := `{"secretPhrase":"` + subkey.DevPhrase + `"}`
	if err := os.WriteFile(filepath.Join(dir, "keys", "node.json"), []byte(content), 0o600); err != nil {
		t.Fatalf("write keyring file: %v", err)
	}

	t.Setenv("KEYRING_DIR", dir)
	t.Setenv("SEED_PHRASE", "")

	keypair, err := LoadKeypairFromEnv(context.Background(), "node")
	if err != nil {
		t.Fatalf("LoadKeypairFromEnv error: %v", err)
	}

	// The dev phrase always derives the same address.
	other, err := LoadKeypairFromEnv(context.Background(), "node")
	if err != nil {
		t.Fatalf("LoadKeypairFromEnv error: %v", err)
	}
	if ToSs58Address(keypair) != ToSs58Address(other) {
		t.Fatal("expected deterministic keypair derivation")
	}
}
