package jwt

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

// Claims carried by access tokens in addition to the registered set
type Claims struct {
	Scope    string `json:"scope,omitempty"`
	ClientID string `json:"client_id,omitempty"`
	Email    string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Signer issues RS256 signed ID and access tokens and exposes the public
// key as a JWKS. The key pair is generated at startup; rotating it just
// means restarting the process, which also invalidates outstanding tokens.
type Signer struct {
	privateKey     *rsa.PrivateKey
	publicKey      *rsa.PublicKey
	keyID          string
	issuer         string
	accessTokenTTL time.Duration
}

// NewSigner creates a signer with a fresh 2048-bit RSA key pair
func NewSigner(issuer string, accessTokenTTL time.Duration) (*Signer, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("failed to generate signing key: %w", err)
	}

	publicKey := &privateKey.PublicKey
	keyID, err := deriveKeyID(publicKey)
	if err != nil {
		return nil, err
	}

	return &Signer{
		privateKey:     privateKey,
		publicKey:      publicKey,
		keyID:          keyID,
		issuer:         issuer,
		accessTokenTTL: accessTokenTTL,
	}, nil
}

// AccessTokenTTL returns the lifetime stamped into issued tokens
func (s *Signer) AccessTokenTTL() time.Duration {
	return s.accessTokenTTL
}

// SignIDToken issues a signed ID token asserting the subject identity to the client
func (s *Signer) SignIDToken(subject, email, clientID string) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{clientID},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTokenTTL)),
		},
	}
	return s.sign(claims)
}

// SignAccessToken issues a signed access token for the subject and scope
func (s *Signer) SignAccessToken(subject, clientID, scope string) (string, error) {
	now := time.Now()
	claims := Claims{
		Scope:    scope,
		ClientID: clientID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTokenTTL)),
		},
	}
	return s.sign(claims)
}

// Verify parses a token issued by this signer and returns its claims
func (s *Signer) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.publicKey, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// JWKS returns the public key set for token verification
func (s *Signer) JWKS(ctx context.Context) (map[string]interface{}, error) {
	key, err := jwk.FromRaw(s.publicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWK: %w", err)
	}

	if err := key.Set(jwk.KeyIDKey, s.keyID); err != nil {
		return nil, err
	}
	if err := key.Set(jwk.AlgorithmKey, "RS256"); err != nil {
		return nil, err
	}
	if err := key.Set(jwk.KeyUsageKey, "sig"); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"keys": []interface{}{key},
	}, nil
}

func (s *Signer) sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = s.keyID
	return token.SignedString(s.privateKey)
}

func deriveKeyID(key *rsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(key)
	if err != nil {
		return "", fmt.Errorf("failed to derive key id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(der[:8]), nil
}
