package port

import (
	"errors"
	"fmt"
)

// Sentinel errors used by the session and login flow.
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrTokenExpired     = errors.New("token expired")
	ErrTokenInvalid     = errors.New("token invalid")
	ErrEmailNotVerified = errors.New("email address not verified")
	ErrDomainNotAllowed = errors.New("email domain not allowed")
)

// ConfigurationError reports a missing or invalid setting detected at
// construction time. It is never retried.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Reason)
}

// NotFoundError reports that no report is stored under Name.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("repository report %q not found", e.Name)
}

// StorageUnavailableError wraps any failure of the backing store, including
// timeouts and a table that vanished at runtime.
type StorageUnavailableError struct {
	Op  string
	Err error
}

func (e *StorageUnavailableError) Error() string {
	return fmt.Sprintf("storage unavailable: %s: %v", e.Op, e.Err)
}

func (e *StorageUnavailableError) Unwrap() error { return e.Err }

// DecodeError reports a malformed ingestion entry. Index is the entry's
// position in the batch, or -1 when the whole body could not be decoded.
type DecodeError struct {
	Index int
	Entry string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("decode payload: %v", e.Err)
	}
	return fmt.Sprintf("decode entry %d: %v", e.Index, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// PrivateRepositoryNotSupportedError is returned when a badge is requested
// for a private repository. It is a policy refusal, not a fault.
type PrivateRepositoryNotSupportedError struct {
	Name string
}

func (e *PrivateRepositoryNotSupportedError) Error() string {
	return fmt.Sprintf("repository %q is private: badges are only served for public repositories", e.Name)
}

// IsNotFound reports whether err is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsStorageUnavailable reports whether err is, or wraps, a StorageUnavailableError.
func IsStorageUnavailable(err error) bool {
	var su *StorageUnavailableError
	return errors.As(err, &su)
}
