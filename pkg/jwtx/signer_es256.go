package jwtx

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

type es256Signer struct {
	kid string
	key *ecdsa.PrivateKey
}

func newES256Signer(kid string, pemKey []byte) (*es256Signer, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil {
		return nil, errors.New("jwtx: invalid PEM for ECDSA key")
	}
	if block.Type != "PRIVATE KEY" {
		return nil, fmt.Errorf("jwtx: expected PRIVATE KEY, got %q (ES256 requires PKCS8)", block.Type)
	}

	priv, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("jwtx: parse PKCS8: %w", err)
	}

	key, ok := priv.(*ecdsa.PrivateKey)
	if !ok {
		return nil, errors.New("jwtx: not an ECDSA private key")
	}
	if key.Curve != elliptic.P256() {
		return nil, errors.New("jwtx: ES256 requires a P-256 key")
	}

	return &es256Signer{kid: kid, key: key}, nil
}

func (s *es256Signer) Alg() string { return AlgorithmES256 }
func (s *es256Signer) KID() string { return s.kid }

func (s *es256Signer) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	t.Header["kid"] = s.kid
	return t.SignedString(s.key)
}

func (s *es256Signer) PublicJWK() JWK {
	return NewES256JWK(s.kid, "sig", AlgorithmES256, &s.key.PublicKey)
}

func (s *es256Signer) Validate() error {
	if s.key == nil || s.key.Curve != elliptic.P256() {
		return errors.New("jwtx: invalid ES256 key material")
	}
	return nil
}
