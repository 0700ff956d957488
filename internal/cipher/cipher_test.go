package cipher_test

import (
	"strings"
	"testing"

	"github.com/insforge/core/internal/apperror"
	"github.com/insforge/core/internal/cipher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	c := cipher.New("test-passphrase")
	plaintext := []byte("super secret value")

	ct, err := c.Encrypt(plaintext)
	require.NoError(t, err)

	got, err := c.Decrypt(ct)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)
}

func TestEncryptProducesThreeHexFields(t *testing.T) {
	c := cipher.New("passphrase")
	ct, err := c.Encrypt([]byte("x"))
	require.NoError(t, err)
	assert.Len(t, strings.Split(ct, ":"), 3)
}

func TestEncryptNeverReusesIV(t *testing.T) {
	c := cipher.New("passphrase")
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		ct, err := c.Encrypt([]byte("same plaintext every time"))
		require.NoError(t, err)
		iv := strings.Split(ct, ":")[0]
		assert.False(t, seen[iv], "iv reused across encrypt calls")
		seen[iv] = true
	}
}

func TestDecryptDetectsTamperedCiphertext(t *testing.T) {
	c := cipher.New("passphrase")
	ct, err := c.Encrypt([]byte("hello"))
	require.NoError(t, err)

	parts := strings.Split(ct, ":")
	// Flip a bit in the ciphertext field.
	tampered := parts[0] + ":" + parts[1] + ":" + flipFirstHexByte(parts[2])

	_, err = c.Decrypt(tampered)
	require.Error(t, err)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CipherCorrupt, appErr.Kind)
}

func TestDecryptRejectsMalformedWireFormat(t *testing.T) {
	c := cipher.New("passphrase")
	_, err := c.Decrypt("not-a-valid-wire-string")
	require.Error(t, err)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CipherCorrupt, appErr.Kind)
}

func TestDifferentPassphrasesProduceDifferentKeys(t *testing.T) {
	a := cipher.New("passphrase-a")
	b := cipher.New("passphrase-b")

	ct, err := a.Encrypt([]byte("payload"))
	require.NoError(t, err)

	_, err = b.Decrypt(ct)
	require.Error(t, err)
}

func flipFirstHexByte(hexStr string) string {
	if len(hexStr) == 0 {
		return hexStr
	}
	b := []byte(hexStr)
	if b[0] == '0' {
		b[0] = '1'
	} else {
		b[0] = '0'
	}
	return string(b)
}
