// Package exitcodes contains all well-defined exit codes that agiledecrypt
// can return.
package exitcodes

import (
	"errors"

	"github.com/agiledecrypt/agiledecrypt/internal/contentenc"
	"github.com/agiledecrypt/agiledecrypt/internal/cryptocore"
	"github.com/agiledecrypt/agiledecrypt/internal/encinfo"
	"github.com/agiledecrypt/agiledecrypt/internal/integrity"
	"github.com/agiledecrypt/agiledecrypt/internal/keyderiv"
	"github.com/agiledecrypt/agiledecrypt/internal/readpassword"
)

const (
	// Usage - usage error like wrong cli syntax, wrong number of parameters.
	Usage = 1
	// 2 is reserved because it is used by Go panic

	// LoadInfo is an error while loading or parsing the EncryptionInfo stream
	LoadInfo = 8
	// ReadPassword means something went wrong reading the password
	ReadPassword = 9
	// Other error - please inspect the message
	Other = 11
	// PasswordIncorrect - the password verifier did not match.
	PasswordIncorrect = 12
	// PackageKey means that something went wrong when parsing the
	// "--packagekey" command line option
	PackageKey = 14
	// Unsupported - the descriptor uses a cipher, chaining mode or hash we
	// do not implement.
	Unsupported = 15
	// ReadPackage - the EncryptedPackage stream could not be read or is
	// malformed (bad length prefix, truncated).
	ReadPackage = 16
	// Integrity - the HMAC over the package did not match, or there is none.
	Integrity = 17
	// PasswordEmpty - we received an empty password
	PasswordEmpty = 22
	// WriteOutput - could not write the decrypted package
	WriteOutput = 24
)

// Err wraps an error with an associated numeric exit code
type Err struct {
	error
	code int
}

// NewErr returns an error containing "msg" and the exit code "code".
func NewErr(msg string, code int) Err {
	return Err{
		error: errors.New(msg),
		code:  code,
	}
}

// Wrap attaches exit code "code" to "err".
func Wrap(err error, code int) Err {
	return Err{
		error: err,
		code:  code,
	}
}

// Unwrap returns the wrapped error.
func (e Err) Unwrap() error {
	return e.error
}

// Code returns the exit code.
func (e Err) Code() int {
	return e.code
}

// FromError picks the exit code for "err". An explicit Err anywhere in the
// chain wins, otherwise the error taxonomy of the decryption pipeline is
// mapped. 0 for nil.
func FromError(err error) int {
	if err == nil {
		return 0
	}
	var e Err
	if errors.As(err, &e) {
		return e.code
	}
	switch {
	case errors.Is(err, keyderiv.ErrPasswordIncorrect):
		return PasswordIncorrect
	case errors.Is(err, readpassword.ErrEmptyPassword):
		return PasswordEmpty
	case errors.Is(err, cryptocore.ErrUnsupportedAlgorithm),
		errors.Is(err, cryptocore.ErrUnsupportedCipher),
		errors.Is(err, cryptocore.ErrUnsupportedChaining):
		return Unsupported
	case errors.Is(err, encinfo.ErrInvalidEncryptionInfo):
		return LoadInfo
	case errors.Is(err, contentenc.ErrInvalidPackageHeader),
		errors.Is(err, contentenc.ErrTruncated):
		return ReadPackage
	case errors.Is(err, integrity.ErrIntegrity),
		errors.Is(err, integrity.ErrNoIntegrityData):
		return Integrity
	}
	return Other
}
