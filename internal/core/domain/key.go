package domain

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"os"
)

// prefixLen is the number of hex digits of the public key kept in a transaction.
const prefixLen = 16

// Key wraps an ed25519 keypair. The private half is optional.
type Key struct {
	pub  ed25519.PublicKey
	priv ed25519.PrivateKey
}

// GenerateKey creates a fresh keypair.
func GenerateKey() (*Key, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generating key: %w", err)
	}
	return &Key{pub: pub, priv: priv}, nil
}

// ParseKey reads a PEM document holding a PKIX "PUBLIC KEY" or a PKCS8
// "PRIVATE KEY" block.
func ParseKey(data []byte) (*Key, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("%w: no PEM block found", ErrKey)
	}

	switch block.Type {
	case "PUBLIC KEY":
		return parsePKIX(block.Bytes)
	case "PRIVATE KEY":
		generic, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrKey, err)
		}
		priv, ok := generic.(ed25519.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("%w: not an ed25519 private key", ErrKey)
		}
		return &Key{pub: priv.Public().(ed25519.PublicKey), priv: priv}, nil
	}
	return nil, fmt.Errorf("%w: unsupported PEM block %q", ErrKey, block.Type)
}

// LoadKey reads a PEM key file.
func LoadKey(path string) (*Key, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading key file: %w", err)
	}
	return ParseKey(data)
}

// ParsePublic decodes the base64 PKIX form produced by MarshalPublic.
func ParsePublic(s string) (*Key, error) {
	der, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKey, err)
	}
	return parsePKIX(der)
}

func parsePKIX(der []byte) (*Key, error) {
	generic, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKey, err)
	}
	pub, ok := generic.(ed25519.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an ed25519 public key", ErrKey)
	}
	return &Key{pub: pub}, nil
}

// HasPrivate reports whether the key can sign.
func (k *Key) HasPrivate() bool {
	return k != nil && len(k.priv) == ed25519.PrivateKeySize
}

// Public returns a copy holding only the public half.
func (k *Key) Public() *Key {
	return &Key{pub: bytes.Clone(k.pub)}
}

// Sign signs data with the private half.
func (k *Key) Sign(data []byte) ([]byte, error) {
	if !k.HasPrivate() {
		return nil, fmt.Errorf("%w: private key is absent", ErrKey)
	}
	return ed25519.Sign(k.priv, data), nil
}

// Verify checks sig over data against the public half.
func (k *Key) Verify(data, sig []byte) bool {
	if k == nil || len(k.pub) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(k.pub, data, sig)
}

// Equal compares public halves.
func (k *Key) Equal(other *Key) bool {
	if k == nil || other == nil {
		return k == other
	}
	return k.pub.Equal(other.pub)
}

// Prefix is the short public key fingerprint stored in transactions.
func (k *Key) Prefix() string {
	return hex.EncodeToString(k.pub)[:prefixLen]
}

// MarshalPublic renders the public half as base64 PKIX DER.
func (k *Key) MarshalPublic() (string, error) {
	der, err := x509.MarshalPKIXPublicKey(k.pub)
	if err != nil {
		return "", fmt.Errorf("marshaling public key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(der), nil
}

// PublicPEM renders the public half as a PEM document.
func (k *Key) PublicPEM() ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(k.pub)
	if err != nil {
		return nil, fmt.Errorf("marshaling public key: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), nil
}

// PrivatePEM renders the private half as a PKCS8 PEM document.
func (k *Key) PrivatePEM() ([]byte, error) {
	if !k.HasPrivate() {
		return nil, fmt.Errorf("%w: private key is absent", ErrKey)
	}
	der, err := x509.MarshalPKCS8PrivateKey(k.priv)
	if err != nil {
		return nil, fmt.Errorf("marshaling private key: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}
