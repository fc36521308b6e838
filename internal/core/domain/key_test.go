package domain

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey_SignAndVerify(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	payload := []byte("0000000000000000|1|payload")
	sig, err := key.Sign(payload)
	require.NoError(t, err)

	assert.True(t, key.Verify(payload, sig))
	assert.True(t, key.Public().Verify(payload, sig))
	assert.False(t, key.Verify([]byte("tampered"), sig))

	other, err := GenerateKey()
	require.NoError(t, err)
	assert.False(t, other.Verify(payload, sig))
}

func TestKey_SignWithoutPrivate(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	_, err = key.Public().Sign([]byte("data"))
	assert.True(t, errors.Is(err, ErrKey))
}

func TestKey_PEMRoundTrip(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	privPEM, err := key.PrivatePEM()
	require.NoError(t, err)
	pubPEM, err := key.PublicPEM()
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "id_ed25519"), privPEM, 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "id_ed25519.pub"), pubPEM, 0644))

	priv, err := LoadKey(filepath.Join(dir, "id_ed25519"))
	require.NoError(t, err)
	assert.True(t, priv.HasPrivate())
	assert.True(t, priv.Equal(key))

	pub, err := LoadKey(filepath.Join(dir, "id_ed25519.pub"))
	require.NoError(t, err)
	assert.False(t, pub.HasPrivate())
	assert.True(t, pub.Equal(key))
	assert.Equal(t, key.Prefix(), pub.Prefix())
}

func TestParseKey_Invalid(t *testing.T) {
	_, err := ParseKey([]byte("not a pem"))
	assert.True(t, errors.Is(err, ErrKey))

	_, err = ParseKey([]byte("-----BEGIN CERTIFICATE-----\nAAAA\n-----END CERTIFICATE-----\n"))
	assert.True(t, errors.Is(err, ErrKey))
}

func TestKey_MarshalPublic(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	encoded, err := key.MarshalPublic()
	require.NoError(t, err)
	parsed, err := ParsePublic(encoded)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(key))
	assert.Len(t, parsed.Prefix(), prefixLen)
}

func TestParseInvoice(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)
	inv := NewInvoice(MustParseId("00000000000000ab"), key)

	parsed, err := ParseInvoice(inv.String())
	require.NoError(t, err)
	assert.Equal(t, inv, parsed)

	for _, bad := range []string{"", "abc", "xyz@00000000000000ab", key.Prefix() + "@nothex", key.Prefix()} {
		_, err := ParseInvoice(bad)
		assert.Error(t, err, bad)
	}
}
