package hosting

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the release does not exist on the remote.
	ErrNotFound = errors.New("release not found")

	// ErrUnknownProvider indicates the git remote uses an unknown host.
	ErrUnknownProvider = errors.New("unknown git provider")

	// ErrUnknownBackend indicates an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown release backend")

	// ErrNoToken indicates no API token was found for the provider.
	ErrNoToken = errors.New("no API token")

	// ErrNoRemote indicates the repository has no usable remote URL.
	ErrNoRemote = errors.New("no remote URL")
)

// Error is returned by every Publisher when the hosting service or the
// gh CLI rejects an operation.
type Error struct {
	Backend string
	Op      string
	Tag     string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Tag, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
