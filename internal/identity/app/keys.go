package app

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"

	"github.com/lockhaven/identity/pkg/cryptox"
	"github.com/lockhaven/identity/pkg/jwtx"
)

// initSigningKey builds the signer and key set from config. A configured key
// file survives restarts; otherwise an ephemeral key is generated and every
// outstanding token dies with the process.
func initSigningKey(cfg Config, logger *slog.Logger) (jwtx.Signer, *jwtx.KeySet, error) {
	pemKey, kid, err := loadOrGenerateKey(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	var signer jwtx.Signer
	switch cfg.Algorithm {
	case jwtx.AlgorithmEdDSA:
		signer, err = jwtx.NewSignerEdDSA(kid, pemKey)
	case jwtx.AlgorithmES256:
		signer, err = jwtx.NewSignerES256(kid, pemKey)
	default:
		return nil, nil, fmt.Errorf("unsupported signing algorithm %q", cfg.Algorithm)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load signing key: %w", err)
	}

	keys := jwtx.NewKeySet()
	if err := keys.AddSigner(signer); err != nil {
		return nil, nil, err
	}
	return signer, keys, nil
}

func loadOrGenerateKey(cfg Config, logger *slog.Logger) ([]byte, string, error) {
	if cfg.SigningKeyFile != "" {
		pemKey, err := os.ReadFile(cfg.SigningKeyFile)
		if err != nil {
			return nil, "", fmt.Errorf("read signing key file: %w", err)
		}
		// Stable kid derived from the key material keeps JWKS consistent
		// across restarts.
		sum := sha256.Sum256(pemKey)
		return pemKey, hex.EncodeToString(sum[:8]), nil
	}

	logger.Warn("no signing key configured, generating ephemeral key; tokens will not survive restarts")

	var (
		pemKey []byte
		err    error
	)
	switch cfg.Algorithm {
	case jwtx.AlgorithmES256:
		pemKey, err = cryptox.GenerateES256Key()
	default:
		pemKey, err = cryptox.GenerateEd25519Key()
	}
	if err != nil {
		return nil, "", fmt.Errorf("generate signing key: %w", err)
	}

	kid, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return nil, "", err
	}
	return pemKey, kid, nil
}
