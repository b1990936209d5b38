package store

import (
	"github.com/ministryofjustice/operations-engineering-reports/internal/port"
)

// wrapError turns driver, network and timeout failures into a
// StorageUnavailableError. Errors already in the port taxonomy pass through.
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	switch err.(type) {
	case *port.StorageUnavailableError, *port.NotFoundError, *port.ConfigurationError:
		return err
	}
	return &port.StorageUnavailableError{Op: op, Err: err}
}
