package app

import (
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kyralabs/iamcore/pkg/cryptox"
	"github.com/kyralabs/iamcore/pkg/tokens"
)

// devRSABits keeps ephemeral dev keys cheap to generate.
const devRSABits = 2048

// loadTokenConfig resolves the configured algorithm family into a tagged
// tokens.Config. Symmetric mode loads (or, in dev, creates) a shared secret
// file; asymmetric mode loads a PEM keypair, generating an ephemeral one in
// dev when no paths are configured.
func loadTokenConfig(cfg Config, logger *slog.Logger) (tokens.Config, error) {
	switch cfg.Algorithm {
	case "symmetric":
		secret, err := loadOrCreateSecret(cfg.SecretFile, cfg.Env == "dev")
		if err != nil {
			return tokens.Config{}, fmt.Errorf("load symmetric secret: %w", err)
		}
		return tokens.Symmetric(secret)

	case "asymmetric":
		if cfg.PrivateKey == "" || cfg.PublicKey == "" {
			if cfg.Env != "dev" {
				return tokens.Config{}, fmt.Errorf("asymmetric mode requires IAM_PRIVATE_KEY_FILE and IAM_PUBLIC_KEY_FILE")
			}
			logger.Warn("no RSA key paths configured, generating ephemeral dev keypair")
			return generateEphemeralRSA()
		}

		privPEM, err := os.ReadFile(filepath.Clean(cfg.PrivateKey))
		if err != nil {
			return tokens.Config{}, fmt.Errorf("read private key: %w", err)
		}
		pubPEM, err := os.ReadFile(filepath.Clean(cfg.PublicKey))
		if err != nil {
			return tokens.Config{}, fmt.Errorf("read public key: %w", err)
		}
		return tokens.Asymmetric(privPEM, pubPEM)

	default:
		return tokens.Config{}, fmt.Errorf("unknown algorithm family %q", cfg.Algorithm)
	}
}

// loadOrCreateSecret reads the shared secret file, creating one in dev so a
// fresh checkout runs without ceremony.
func loadOrCreateSecret(path string, createIfMissing bool) ([]byte, error) {
	path = filepath.Clean(path)

	data, err := os.ReadFile(path)
	if err == nil {
		return data, nil
	}
	if !os.IsNotExist(err) || !createIfMissing {
		return nil, err
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}
	secret := []byte(base64.RawURLEncoding.EncodeToString(raw))

	if err := os.WriteFile(path, secret, 0600); err != nil {
		return nil, err
	}
	return secret, nil
}

func generateEphemeralRSA() (tokens.Config, error) {
	privPEM, err := cryptox.GenerateRSAKey(devRSABits)
	if err != nil {
		return tokens.Config{}, err
	}

	block, _ := pem.Decode(privPEM)
	priv, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return tokens.Config{}, err
	}

	pubDER, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return tokens.Config{}, err
	}
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})

	return tokens.Asymmetric(privPEM, pubPEM)
}
