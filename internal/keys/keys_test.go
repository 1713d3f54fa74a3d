package keys

import (
	"crypto/ed25519"
	"strings"
	"testing"

	"github.com/btcsuite/btcutil/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nlerr "github.com/mrz1836/nearlight/pkg/errors"
)

func TestGenerateAndRoundTrip(t *testing.T) {
	t.Parallel()

	kp, err := Generate()
	require.NoError(t, err)

	priv := kp.PrivateKeyString()
	pub := kp.PublicKeyString()
	assert.True(t, strings.HasPrefix(priv, "ed25519:"))
	assert.True(t, strings.HasPrefix(pub, "ed25519:"))

	parsed, err := ParsePrivateKey(priv)
	require.NoError(t, err)
	assert.Equal(t, pub, parsed.PublicKeyString())
}

func TestParsePrivateKey_SeedForm(t *testing.T) {
	t.Parallel()

	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		i := i
		seed[i] = byte(i)
	}

	expanded, err := FromSeed(seed)
	require.NoError(t, err)

	// The 32-byte seed form encodes to the same key as the expanded form.
	parsed, err := ParsePrivateKey("ed25519:" + base58.Encode(seed))
	require.NoError(t, err)
	assert.Equal(t, expanded.PublicKeyString(), parsed.PublicKeyString())
}

func TestParsePrivateKey_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"missing prefix", "abc123"},
		{"wrong prefix", "secp256k1:abc"},
		{"bad base58", "ed25519:0OIl"},
		{"wrong length", "ed25519:2g"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParsePrivateKey(tt.input)
			assert.ErrorIs(t, err, nlerr.ErrInvalidKey)
		})
	}
}

func TestSignAndVerify(t *testing.T) {
	t.Parallel()

	kp, err := Generate()
	require.NoError(t, err)

	message := []byte("transaction hash bytes")
	sig := kp.Sign(message)
	require.Len(t, sig, ed25519.SignatureSize)

	assert.True(t, Verify(kp.PublicKeyString(), message, sig))
	assert.False(t, Verify(kp.PublicKeyString(), []byte("tampered"), sig))

	other, err := Generate()
	require.NoError(t, err)
	assert.False(t, Verify(other.PublicKeyString(), message, sig))
}

func TestDecodePublicKey(t *testing.T) {
	t.Parallel()

	kp, err := Generate()
	require.NoError(t, err)

	pub, err := DecodePublicKey(kp.PublicKeyString())
	require.NoError(t, err)
	assert.Equal(t, []byte(kp.PublicKey()), []byte(pub))

	_, err = DecodePublicKey("ed25519:2g")
	assert.ErrorIs(t, err, nlerr.ErrInvalidKey)

	assert.False(t, Verify("not-a-key", []byte("m"), nil))
}

func TestFromSeed_RejectsWrongLength(t *testing.T) {
	t.Parallel()

	_, err := FromSeed(make([]byte, 16))
	assert.ErrorIs(t, err, nlerr.ErrInvalidKey)
}
