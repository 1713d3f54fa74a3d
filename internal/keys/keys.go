// Package keys handles ed25519 key material in the chain's text encoding:
// "ed25519:" followed by the base58 key bytes. Signing itself is delegated
// to crypto/ed25519.
package keys

import (
	"crypto/ed25519"
	"crypto/rand"
	"strings"

	"github.com/btcsuite/btcutil/base58"

	nlerr "github.com/mrz1836/nearlight/pkg/errors"
)

// ed25519Prefix tags the text encoding of every key this package produces.
const ed25519Prefix = "ed25519:"

// KeyPair holds an ed25519 signing key and its derived public key.
type KeyPair struct {
	private ed25519.PrivateKey
}

// Generate creates a new random key pair.
func Generate() (*KeyPair, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nlerr.Wrap(err, "generating key")
	}
	return &KeyPair{private: priv}, nil
}

// ParsePrivateKey parses an "ed25519:<base58>" private key string. Both the
// 64-byte expanded form and the 32-byte seed form are accepted.
func ParsePrivateKey(s string) (*KeyPair, error) {
	raw, err := decode(s)
	if err != nil {
		return nil, err
	}

	switch len(raw) {
	case ed25519.PrivateKeySize:
		return &KeyPair{private: ed25519.PrivateKey(raw)}, nil
	case ed25519.SeedSize:
		return &KeyPair{private: ed25519.NewKeyFromSeed(raw)}, nil
	default:
		return nil, nlerr.WithDetails(nlerr.ErrInvalidKey, map[string]string{
			"reason": "wrong private key length",
		})
	}
}

// FromSeed builds a key pair from a 32-byte seed.
func FromSeed(seed []byte) (*KeyPair, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, nlerr.WithDetails(nlerr.ErrInvalidKey, map[string]string{
			"reason": "seed must be 32 bytes",
		})
	}
	return &KeyPair{private: ed25519.NewKeyFromSeed(seed)}, nil
}

// PrivateKeyString returns the "ed25519:<base58>" encoding of the private
// key in its 64-byte expanded form.
func (k *KeyPair) PrivateKeyString() string {
	return ed25519Prefix + base58.Encode(k.private)
}

// PublicKey returns the raw 32-byte public key.
func (k *KeyPair) PublicKey() ed25519.PublicKey {
	return k.private.Public().(ed25519.PublicKey)
}

// PublicKeyString returns the "ed25519:<base58>" encoding of the public key.
func (k *KeyPair) PublicKeyString() string {
	return EncodePublicKey(k.PublicKey())
}

// Sign signs the message (typically a transaction hash) with the private key.
func (k *KeyPair) Sign(message []byte) []byte {
	return ed25519.Sign(k.private, message)
}

// EncodePublicKey renders raw public key bytes in the text encoding.
func EncodePublicKey(pub ed25519.PublicKey) string {
	return ed25519Prefix + base58.Encode(pub)
}

// DecodePublicKey parses an "ed25519:<base58>" public key string.
func DecodePublicKey(s string) (ed25519.PublicKey, error) {
	raw, err := decode(s)
	if err != nil {
		return nil, err
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, nlerr.WithDetails(nlerr.ErrInvalidKey, map[string]string{
			"reason": "wrong public key length",
		})
	}
	return ed25519.PublicKey(raw), nil
}

// Verify checks a signature against an encoded public key.
func Verify(publicKey string, message, sig []byte) bool {
	pub, err := DecodePublicKey(publicKey)
	if err != nil {
		return false
	}
	return ed25519.Verify(pub, message, sig)
}

// decode strips the encoding prefix and base58-decodes the payload.
func decode(s string) ([]byte, error) {
	if !strings.HasPrefix(s, ed25519Prefix) {
		return nil, nlerr.WithDetails(nlerr.ErrInvalidKey, map[string]string{
			"reason": "missing ed25519: prefix",
		})
	}
	raw := base58.Decode(strings.TrimPrefix(s, ed25519Prefix))
	if len(raw) == 0 {
		return nil, nlerr.WithDetails(nlerr.ErrInvalidKey, map[string]string{
			"reason": "invalid base58 payload",
		})
	}
	return raw, nil
}
