// Package auth signs venue requests. The reference venue authenticates
// both REST calls and the WebSocket handshake with the same scheme: an
// RSA-PSS/SHA-256 signature over "<timestamp_ms><METHOD><path>", sent in
// three access headers alongside the key id.
package auth

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"
)

// Header names of the venue's access-header scheme.
const (
	HeaderKey       = "KALSHI-ACCESS-KEY"
	HeaderTimestamp = "KALSHI-ACCESS-TIMESTAMP"
	HeaderSignature = "KALSHI-ACCESS-SIGNATURE"
)

// WebSocketPath is the path signed for WebSocket handshakes.
const WebSocketPath = "/trade-api/ws/v2"

// Signer produces the venue's access headers for a request.
type Signer struct {
	keyID string
	key   *rsa.PrivateKey
}

// NewSigner wraps an already-parsed private key.
func NewSigner(keyID string, key *rsa.PrivateKey) (*Signer, error) {
	if keyID == "" {
		return nil, fmt.Errorf("auth: key id is required")
	}
	if key == nil {
		return nil, fmt.Errorf("auth: private key is required")
	}
	return &Signer{keyID: keyID, key: key}, nil
}

// LoadSigner reads an RSA private key from a PEM file and pairs it with
// keyID.
func LoadSigner(keyID, privateKeyPath string) (*Signer, error) {
	if privateKeyPath == "" {
		return nil, fmt.Errorf("auth: private key path is required")
	}
	key, err := loadPrivateKey(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("auth: load private key: %w", err)
	}
	return NewSigner(keyID, key)
}

// KeyID returns the key id the signer stamps into HeaderKey.
func (s *Signer) KeyID() string { return s.keyID }

// Headers signs (method, path) as of at and returns the three access
// headers. path must be the full URL path the venue will see, including
// any base-path prefix.
func (s *Signer) Headers(method, path string, at time.Time) (http.Header, error) {
	ms := at.UnixMilli()
	sig, err := s.sign(strconv.FormatInt(ms, 10) + method + path)
	if err != nil {
		return nil, err
	}

	h := http.Header{}
	h.Set(HeaderKey, s.keyID)
	h.Set(HeaderTimestamp, strconv.FormatInt(ms, 10))
	h.Set(HeaderSignature, sig)
	return h, nil
}

// WebSocketHeaders signs the handshake for the venue's WebSocket
// endpoint as of at.
func (s *Signer) WebSocketHeaders(at time.Time) (http.Header, error) {
	return s.Headers(http.MethodGet, WebSocketPath, at)
}

// sign produces the base64 RSA-PSS/SHA-256 signature of message.
func (s *Signer) sign(message string) (string, error) {
	hashed := sha256.Sum256([]byte(message))
	sig, err := rsa.SignPSS(rand.Reader, s.key, crypto.SHA256, hashed[:],
		&rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash})
	if err != nil {
		return "", fmt.Errorf("sign message: %w", err)
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

// loadPrivateKey parses a PEM-encoded RSA key, accepting PKCS#8 and
// falling back to PKCS#1.
func loadPrivateKey(path string) (*rsa.PrivateKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}

	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, fmt.Errorf("no PEM block in %s", path)
	}

	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("key in %s is not RSA", path)
		}
		return rsaKey, nil
	}

	rsaKey, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return rsaKey, nil
}
