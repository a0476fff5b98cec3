package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates compact JWTs against a KeySet and returns the claims.
// Verification order matters: signature first, then issuer, then token use,
// then expiry. Claims are never trusted before the signature checks out.
type Verifier struct {
	keys   *KeySet
	issuer string
	algs   []string

	// now is injectable for expiry boundary tests.
	now func() time.Time
}

// NewVerifier builds a Verifier accepting the given algorithms. An empty algs
// list accepts both supported algorithms.
func NewVerifier(keys *KeySet, issuer string, algs ...string) *Verifier {
	if len(algs) == 0 {
		algs = []string{AlgorithmEdDSA, AlgorithmES256}
	}
	return &Verifier{
		keys:   keys,
		issuer: issuer,
		algs:   algs,
		now:    time.Now,
	}
}

// Verify checks tokenStr and returns its claims. The expected use must match
// the token_use claim embedded in the signed payload.
func (v *Verifier) Verify(tokenStr string, use TokenUse) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods(v.algs),
		// Expiry is enforced below with zero tolerance; the library's
		// validator is not used.
		jwt.WithoutClaimsValidation(),
	)

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("%w: missing kid header", ErrMalformed)
		}
		pub, err := v.keys.Get(kid)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKID, kid)
		}
		return pub, nil
	})
	if err != nil {
		return Claims{}, mapParseError(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return Claims{}, ErrInvalidClaims
	}

	if err := claims.validateIssuer(v.issuer); err != nil {
		return Claims{}, err
	}
	if err := claims.validateUse(use); err != nil {
		return Claims{}, err
	}
	if err := claims.validateExpiryAt(v.now().UTC()); err != nil {
		return Claims{}, err
	}

	return *claims, nil
}

// mapParseError folds golang-jwt parse failures into this package's error
// taxonomy. Sentinels wrapped by the keyfunc pass through unchanged.
func mapParseError(err error) error {
	switch {
	case errors.Is(err, ErrUnknownKID), errors.Is(err, ErrMalformed):
		return err
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrInvalidSig, err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}
