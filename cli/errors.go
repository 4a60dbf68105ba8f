package cli

import (
	"errors"

	vrterrors "github.com/randalmurphal/vrt/errors"
	"github.com/randalmurphal/vrt/hosting"
)

// decorate attaches suggestions to failures of the release host. Every
// other error, including failed npm and git commands, is returned as is.
func decorate(err error, service string) error {
	var cliErr *vrterrors.CLIError
	if errors.As(err, &cliErr) {
		return err
	}
	var hostErr *hosting.Error
	if !errors.As(err, &hostErr) {
		return err
	}
	if vrterrors.IsConnectionError(err) {
		return vrterrors.WrapConnectionError(err, service)
	}
	return vrterrors.WrapAuthError(err, service)
}
