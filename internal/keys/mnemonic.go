package keys

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/tyler-smith/go-bip39"

	nlerr "github.com/mrz1836/nearlight/pkg/errors"
)

// DefaultDerivationPath is the standard derivation path NEAR wallets use.
const DefaultDerivationPath = "m/44'/397'/0'"

// slip10Key seeds the SLIP-0010 master key HMAC for the ed25519 curve.
const slip10Key = "ed25519 seed"

// hardenedOffset marks a derivation index as hardened. Ed25519 derivation
// supports hardened children only.
const hardenedOffset = 0x80000000

// NewMnemonic generates a fresh 12-word mnemonic.
func NewMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(128)
	if err != nil {
		return "", nlerr.Wrap(err, "generating entropy")
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", nlerr.Wrap(err, "generating mnemonic")
	}
	return mnemonic, nil
}

// FromMnemonic derives a key pair from a BIP-39 mnemonic at the given
// SLIP-0010 path. An empty path uses DefaultDerivationPath.
func FromMnemonic(mnemonic, path string) (*KeyPair, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, nlerr.ErrInvalidMnemonic
	}
	if path == "" {
		path = DefaultDerivationPath
	}

	indexes, err := parsePath(path)
	if err != nil {
		return nil, err
	}

	seed := bip39.NewSeed(mnemonic, "")

	key, chainCode := masterKey(seed)
	for _, index := range indexes {
		key, chainCode = childKey(key, chainCode, index)
	}

	return FromSeed(key)
}

// masterKey computes the SLIP-0010 ed25519 master key and chain code.
func masterKey(seed []byte) (key, chainCode []byte) {
	mac := hmac.New(sha512.New, []byte(slip10Key))
	mac.Write(seed)
	sum := mac.Sum(nil)
	return sum[:32], sum[32:]
}

// childKey derives one hardened child.
func childKey(key, chainCode []byte, index uint32) (childKeyBytes, childChainCode []byte) {
	data := make([]byte, 1+len(key)+4)
	copy(data[1:], key)
	binary.BigEndian.PutUint32(data[1+len(key):], index)

	mac := hmac.New(sha512.New, chainCode)
	mac.Write(data)
	sum := mac.Sum(nil)
	return sum[:32], sum[32:]
}

// parsePath parses an "m/44'/397'/0'" style path into hardened indexes.
func parsePath(path string) ([]uint32, error) {
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] != "m" {
		return nil, nlerr.WithDetails(nlerr.ErrInvalidKey, map[string]string{
			"path": path,
		})
	}

	indexes := make([]uint32, 0, len(parts)-1)
	for _, part := range parts[1:] {
		// Ed25519 children are always hardened; accept the apostrophe but
		// do not require it.
		part = strings.TrimSuffix(part, "'")
		n, err := strconv.ParseUint(part, 10, 31)
		if err != nil {
			return nil, nlerr.WithDetails(nlerr.ErrInvalidKey, map[string]string{
				"path": path,
			})
		}
		indexes = append(indexes, uint32(n)+hardenedOffset)
	}
	return indexes, nil
}
