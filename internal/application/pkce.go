package application

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"

	"github.com/ipede/auth-hub/internal/domain"
)

// RFC 7636 section 4.1 bounds for the code verifier
const (
	minVerifierLength = 43
	maxVerifierLength = 128
)

// ComputeChallengeS256 derives the S256 code challenge for a verifier.
func ComputeChallengeS256(verifier string) string {
	digest := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(digest[:])
}

// VerifyS256 checks that BASE64URL(SHA256(verifier)) equals the stored
// challenge. The decoded digests are compared in constant time.
func VerifyS256(verifier, challenge string) error {
	if len(verifier) < minVerifierLength || len(verifier) > maxVerifierLength {
		return domain.ErrPKCEVerificationFailed
	}

	expected, err := base64.RawURLEncoding.DecodeString(challenge)
	if err != nil || len(expected) != sha256.Size {
		return domain.ErrPKCEVerificationFailed
	}

	digest := sha256.Sum256([]byte(verifier))
	if subtle.ConstantTimeCompare(digest[:], expected) != 1 {
		return domain.ErrPKCEVerificationFailed
	}

	return nil
}

// generateCode returns a hex encoded 256-bit random value, used for
// authorization codes and session identifiers.
func generateCode() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// generateOpaqueToken returns a base64url encoded 256-bit random value,
// used for refresh tokens.
func generateOpaqueToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
