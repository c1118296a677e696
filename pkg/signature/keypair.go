package signature

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/ChainSafe/gossamer/lib/crypto/sr25519"
	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"

	"github.com/sethvargo/go-envconfig"
)

// KeyringEnvConfig locates the node keyring. A seed phrase supplied directly
// via the environment takes precedence over the keyring directory.
type KeyringEnvConfig struct {
	KeyringDir string `env:"KEYRING_DIR, default=~/.animica"`
	SeedPhrase string `env:"SEED_PHRASE"`
}

func expandHome(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		usr, err := user.Current()
		if err != nil {
			return "", fmt.Errorf("failed to get current user: %w", err)
		}
		path = filepath.Join(usr.HomeDir, path[2:])
	}
	return path, nil
}

// LoadMnemonic reads the secret phrase out of a keyring JSON file.
func LoadMnemonic(path string) (string, error) {
	path, err := expandHome(path)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("failed to read keyring file")
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	var result map[string]interface{}
	if err := sonic.Unmarshal(data, &result); err != nil {
		log.Error().Err(err).Str("path", path).Msg("failed to parse keyring JSON")
		return "", fmt.Errorf("failed to parse JSON: %w", err)
	}

	seed, ok := result["secretPhrase"]
	if !ok {
		return "", fmt.Errorf("secretPhrase not found in JSON")
	}

	seedPhrase, ok := seed.(string)
	if !ok {
		return "", fmt.Errorf("secretPhrase is not a string")
	}

	return seedPhrase, nil
}

// LoadKeypairFromEnv builds the node keypair from the environment: either a
// SEED_PHRASE directly, or the named key file under KEYRING_DIR/keys.
func LoadKeypairFromEnv(ctx context.Context, keyName string) (*sr25519.Keypair, error) {
	var envCfg KeyringEnvConfig
	if err := envconfig.Process(ctx, &envCfg); err != nil {
		return nil, fmt.Errorf("failed to process keyring environment: %w", err)
	}

	mnemonic := envCfg.SeedPhrase
	if mnemonic == "" {
		path := filepath.Join(envCfg.KeyringDir, "keys", keyName+".json")
		log.Debug().Str("path", path).Str("key_name", keyName).Msg("loading keypair from keyring file")

		var err error
		mnemonic, err = LoadMnemonic(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load seed phrase: %w", err)
		}
	}

	keypair, err := sr25519.NewKeypairFromMnenomic(mnemonic, "")
	if err != nil {
		log.Error().Err(err).Str("key_name", keyName).Msg("failed to create keypair from seed phrase")
		return nil, fmt.Errorf("failed to create keypair from seed phrase: %w", err)
	}

	return keypair, nil
}
