package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBcryptHasher_RoundTrip(t *testing.T) {
	h := NewBcryptHasher(4)

	hash, err := h.Hash("correct horse battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", hash)

	assert.NoError(t, h.Compare(hash, "correct horse battery"))
	assert.Error(t, h.Compare(hash, "wrong password"))
}

func TestBcryptHasher_RejectsShortPassword(t *testing.T) {
	h := NewBcryptHasher(4)
	_, err := h.Hash("short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestBcryptHasher_ClampsOutOfRangeCost(t *testing.T) {
	// a misconfigured PETPLAN_BCRYPT_COST must not break registration
	h := NewBcryptHasher(99)
	hash, err := h.Hash("correct horse battery")
	require.NoError(t, err)
	assert.NoError(t, h.Compare(hash, "correct horse battery"))
}

func TestAESEncryptor_RoundTrip(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef") // 32 bytes
	enc, err := NewAESEncryptor(key)
	require.NoError(t, err)

	ct, err := enc.EncryptString("750101/1234")
	require.NoError(t, err)
	assert.NotEqual(t, "750101/1234", ct)

	pt, err := enc.DecryptString(ct)
	require.NoError(t, err)
	assert.Equal(t, "750101/1234", pt)
}

func TestAESEncryptor_InvalidKey(t *testing.T) {
	_, err := NewAESEncryptor([]byte("too short"))
	assert.ErrorIs(t, err, ErrInvalidKeySize)
}

func TestAESEncryptor_TamperedCiphertext(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	enc, err := NewAESEncryptor(key)
	require.NoError(t, err)

	ct, err := enc.Encrypt([]byte("payload"))
	require.NoError(t, err)
	ct[len(ct)-1] ^= 0xff

	_, err = enc.Decrypt(ct)
	assert.ErrorIs(t, err, ErrDecryption)
}
