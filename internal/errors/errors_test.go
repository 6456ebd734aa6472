package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap_PreservesCode(t *testing.T) {
	base := NotFound("sheet Sheet9")
	wrapped := Wrap(base, "failed to read workbook")

	assert.Equal(t, CodeNotFound, GetCode(wrapped))
	assert.Equal(t, "failed to read workbook: sheet Sheet9 not found", wrapped.Error())
	assert.True(t, stderrors.Is(wrapped, base))
}

func TestWrap_ForeignErrorBecomesInternal(t *testing.T) {
	wrapped := Wrapf(fmt.Errorf("disk full"), "writing %s", "out.csv")

	assert.Equal(t, CodeInternalError, GetCode(wrapped))
	assert.Contains(t, wrapped.Error(), "writing out.csv")
	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestGetCode_ThroughFmtWrapping(t *testing.T) {
	err := fmt.Errorf("bulk read: %w", InvalidInput("chunk size must be positive"))

	assert.True(t, HasCode(err, CodeInvalidInput))
	assert.Equal(t, "UNKNOWN", GetCode(fmt.Errorf("plain")))
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeEncoding, fmt.Errorf("bad bytes"))
	assert.Equal(t, CodeEncoding, GetCode(err))
	assert.Equal(t, "bad bytes", err.Error())
}

type decodeError struct{ name string }

func (e *decodeError) Error() string { return "cannot decode " + e.name }

func TestWithCode_KeepsTypedCauseWithoutRepeatingIt(t *testing.T) {
	cause := &decodeError{name: "bad.csv"}
	err := WithCode(CodeEncoding, cause)

	assert.Equal(t, "cannot decode bad.csv", err.Error())
	var got *decodeError
	assert.True(t, stderrors.As(err, &got))
	assert.Same(t, cause, got)

	recoded := WithCode(CodeInvalidInput, err)
	assert.Equal(t, CodeInvalidInput, GetCode(recoded))
	assert.Equal(t, "cannot decode bad.csv", recoded.Error())
}
