// Package cipher decrypts ingestion bodies the producer job encrypts with
// Fernet before posting them.
package cipher

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fernet/fernet-go"

	"github.com/ministryofjustice/operations-engineering-reports/internal/port"
)

// DefaultTTL bounds how old an accepted token may be.
const DefaultTTL = 24 * time.Hour

var errInvalidToken = errors.New("fernet: token is invalid, expired or signed with another key")

// FernetDecrypter implements port.PayloadDecrypter.
type FernetDecrypter struct {
	keys []*fernet.Key
	ttl  time.Duration
}

var _ port.PayloadDecrypter = (*FernetDecrypter)(nil)

// NewFernetDecrypter builds a decrypter from ENCRYPTION_KEY, which holds
// the hex encoding of a url-safe base64 Fernet key. A ttl of zero disables
// the age check.
func NewFernetDecrypter(hexKey string, ttl time.Duration) (*FernetDecrypter, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(hexKey))
	if err != nil {
		return nil, &port.ConfigurationError{Field: "ENCRYPTION_KEY", Reason: "not hex encoded"}
	}
	key, err := fernet.DecodeKey(string(raw))
	if err != nil {
		return nil, &port.ConfigurationError{Field: "ENCRYPTION_KEY", Reason: fmt.Sprintf("invalid fernet key: %v", err)}
	}
	return &FernetDecrypter{keys: []*fernet.Key{key}, ttl: ttl}, nil
}

// Decrypt verifies and decrypts a Fernet token.
func (d *FernetDecrypter) Decrypt(token []byte) ([]byte, error) {
	msg := fernet.VerifyAndDecrypt([]byte(strings.TrimSpace(string(token))), d.ttl, d.keys)
	if msg == nil {
		return nil, errInvalidToken
	}
	return msg, nil
}
