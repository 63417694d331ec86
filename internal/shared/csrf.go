package shared

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"time"
)

const (
	// CSRFVisitKey is the Visit key holding the issued token.
	CSRFVisitKey = "csrf_token"
	// CSRFFormField is the form field carrying the token back.
	CSRFFormField = "csrf_token"
)

// CSRFManager issues and verifies CSRF tokens bound to a Visit.
type CSRFManager struct {
	secret []byte
}

// NewCSRFManager returns a CSRFManager keyed with the given secret.
func NewCSRFManager(secret string) *CSRFManager {
	return &CSRFManager{secret: []byte(secret)}
}

// EnsureToken returns the Visit's token, minting one if needed.
func (m *CSRFManager) EnsureToken(visit *Visit) (string, error) {
	if visit == nil {
		return "", ErrCSRFTokenMissing
	}
	if token := visit.Get(CSRFVisitKey); token != "" {
		return token, nil
	}
	token := m.mint(visit.ID)
	visit.Set(CSRFVisitKey, token)
	return token, nil
}

// VerifyToken compares a submitted token against the Visit's token.
func (m *CSRFManager) VerifyToken(visit *Visit, token string) error {
	if visit == nil || token == "" {
		return ErrCSRFTokenMissing
	}
	expected := visit.Get(CSRFVisitKey)
	if expected == "" {
		return ErrCSRFTokenMissing
	}
	if !hmac.Equal([]byte(expected), []byte(token)) {
		return ErrCSRFTokenMismatch
	}
	return nil
}

func (m *CSRFManager) mint(visitID string) string {
	mac := hmac.New(sha256.New, m.secret)
	_, _ = mac.Write([]byte(visitID))
	_, _ = mac.Write([]byte{'.'})
	var nonce [8]byte
	binary.BigEndian.PutUint64(nonce[:], uint64(time.Now().UnixNano()))
	_, _ = mac.Write(nonce[:])
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
