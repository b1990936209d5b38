package cipher_test

import (
	"encoding/hex"
	"testing"
	"time"

	"github.com/fernet/fernet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ministryofjustice/operations-engineering-reports/internal/adapter/cipher"
	"github.com/ministryofjustice/operations-engineering-reports/internal/port"
)

func newKey(t *testing.T) (*fernet.Key, string) {
	t.Helper()

	var k fernet.Key
	require.NoError(t, k.Generate())
	return &k, hex.EncodeToString([]byte(k.Encode()))
}

func TestDecryptRoundTrip(t *testing.T) {
	t.Parallel()

	key, hexKey := newKey(t)
	d, err := cipher.NewFernetDecrypter(hexKey, cipher.DefaultTTL)
	require.NoError(t, err)

	tok, err := fernet.EncryptAndSign([]byte(`["{\"name\":\"repo-a\"}"]`), key)
	require.NoError(t, err)

	msg, err := d.Decrypt(tok)
	require.NoError(t, err)
	assert.Equal(t, `["{\"name\":\"repo-a\"}"]`, string(msg))
}

func TestDecryptWrongKey(t *testing.T) {
	t.Parallel()

	other, _ := newKey(t)
	_, hexKey := newKey(t)
	d, err := cipher.NewFernetDecrypter(hexKey, 0)
	require.NoError(t, err)

	tok, err := fernet.EncryptAndSign([]byte("secret"), other)
	require.NoError(t, err)

	_, err = d.Decrypt(tok)
	assert.Error(t, err)
}

func TestDecryptGarbage(t *testing.T) {
	t.Parallel()

	_, hexKey := newKey(t)
	d, err := cipher.NewFernetDecrypter(hexKey, 0)
	require.NoError(t, err)

	_, err = d.Decrypt([]byte("not a token"))
	assert.Error(t, err)
}

func TestNewFernetDecrypterRejectsBadKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		key  string
	}{
		{"not hex", "zz-not-hex"},
		{"hex but not a key", hex.EncodeToString([]byte("short"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := cipher.NewFernetDecrypter(tt.key, time.Hour)
			var cfgErr *port.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, "ENCRYPTION_KEY", cfgErr.Field)
		})
	}
}
