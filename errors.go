package authzone

import (
	"errors"
	"fmt"

	"github.com/milodns/authzone/dnssec"
)

// Sentinel errors for the taxonomy described in the zone engine's
// error handling design: InvalidInput, OutOfZone, KeyDecodeFailure,
// and NotAnNXDomain. Each is inspectable with errors.Is; this package
// wraps InvalidInput, OutOfZone and NotAnNXDomain in a ZoneError that
// also carries the offending name, while KeyDecodeFailure is returned
// as the dnssec package produced it.
var (
	ErrInvalidInput     = errors.New("authzone: invalid input")
	ErrOutOfZone        = errors.New("authzone: record owner is out of zone")
	ErrNotAnNXDomain    = errors.New("authzone: name exists; not a valid NXDOMAIN proof target")
	ErrKeyDecodeFailure = dnssec.ErrKeyDecodeFailure
)

// ZoneError pairs one of the sentinel errors above with the name that
// triggered it, following the teacher's own lightweight
// "&Error{Err: ..., Name: ...}" pattern (Meyermagic-dns/zone.go).
type ZoneError struct {
	Err  error
	Name string
}

func (e *ZoneError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err, e.Name)
}

func (e *ZoneError) Unwrap() error {
	return e.Err
}

func newZoneError(err error, name string) *ZoneError {
	return &ZoneError{Err: err, Name: name}
}
