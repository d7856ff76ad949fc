package exitcodes

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agiledecrypt/agiledecrypt/internal/contentenc"
	"github.com/agiledecrypt/agiledecrypt/internal/cryptocore"
	"github.com/agiledecrypt/agiledecrypt/internal/encinfo"
	"github.com/agiledecrypt/agiledecrypt/internal/integrity"
	"github.com/agiledecrypt/agiledecrypt/internal/keyderiv"
	"github.com/agiledecrypt/agiledecrypt/internal/readpassword"
)

func TestFromError(t *testing.T) {
	testCases := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{errors.New("something"), Other},
		{keyderiv.ErrPasswordIncorrect, PasswordIncorrect},
		{fmt.Errorf("passfile: %w", readpassword.ErrEmptyPassword), PasswordEmpty},
		{fmt.Errorf("<keyData>: %w", cryptocore.ErrUnsupportedChaining), Unsupported},
		{fmt.Errorf("%w: x", cryptocore.ErrUnsupportedAlgorithm), Unsupported},
		{fmt.Errorf("%w: bad xml", encinfo.ErrInvalidEncryptionInfo), LoadInfo},
		{fmt.Errorf("%w: short", contentenc.ErrInvalidPackageHeader), ReadPackage},
		{&contentenc.TruncationError{Declared: 10, Available: 5}, ReadPackage},
		{integrity.ErrIntegrity, Integrity},
		{integrity.ErrNoIntegrityData, Integrity},
		{&cryptocore.PrimitiveError{Op: "DecryptCBC", Err: errors.New("x")}, Other},
		{NewErr("bad flag", Usage), Usage},
		// An explicit code wins over the taxonomy
		{Wrap(keyderiv.ErrPasswordIncorrect, WriteOutput), WriteOutput},
		{fmt.Errorf("outer: %w", Wrap(errors.New("inner"), PackageKey)), PackageKey},
	}
	for i, tc := range testCases {
		assert.Equal(t, tc.want, FromError(tc.err), "testcase %d: %v", i, tc.err)
	}
}

func TestErrUnwrap(t *testing.T) {
	err := Wrap(integrity.ErrIntegrity, Integrity)
	assert.ErrorIs(t, err, integrity.ErrIntegrity)
	assert.Equal(t, Integrity, err.Code())
	assert.Equal(t, integrity.ErrIntegrity.Error(), err.Error())
}
