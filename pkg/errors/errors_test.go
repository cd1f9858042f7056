// Package errors_test covers the AppError type, factory functions and
// error-chain helpers.
package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/hivscreen/pkg/errors"
)

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal error", errors.CodeInternal, "unexpected failure"},
		{"dataset not found", errors.ErrCodeDatasetNotFound, "HIV_train.csv not found"},
		{"parse failed", errors.ErrCodeDatasetParseFailed, "header is empty"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)

			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail)
			assert.Nil(t, ae.Cause)
		})
	}
}

func TestAppError_ErrorFormat(t *testing.T) {
	ae := errors.New(errors.ErrCodeColumnNotFound, "column not found")
	assert.Equal(t, "[DATA_003] column not found", ae.Error())

	withDetail := ae.WithDetail("column=Label")
	assert.Equal(t, "[DATA_003] column not found: column=Label", withDetail.Error())
	assert.Empty(t, ae.Detail, "WithDetail must not mutate the receiver")
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, errors.Wrap(nil, errors.CodeInternal, "ignored"))
}

func TestWrap_PreservesCodeWhenUnknown(t *testing.T) {
	inner := errors.New(errors.ErrCodeDatasetParseFailed, "bad header")
	outer := errors.Wrap(inner, errors.CodeUnknown, "loading dataset")

	assert.Equal(t, errors.ErrCodeDatasetParseFailed, outer.Code)
	assert.True(t, stderrors.Is(outer, inner))
}

func TestIsCode_TraversesForeignWrapping(t *testing.T) {
	inner := errors.New(errors.ErrCodeDatasetNotFound, "missing")
	wrapped := fmt.Errorf("cli: %w", inner)

	assert.True(t, errors.IsCode(wrapped, errors.ErrCodeDatasetNotFound))
	assert.True(t, errors.IsDatasetNotFound(wrapped))
	assert.True(t, errors.IsNotFound(wrapped))
	assert.False(t, errors.IsParseError(wrapped))
}

func TestIsParseError(t *testing.T) {
	assert.True(t, errors.IsParseError(errors.New(errors.ErrCodeDatasetParseFailed, "x")))
	assert.True(t, errors.IsParseError(errors.New(errors.ErrCodeLabelOutOfDomain, "x")))
	assert.False(t, errors.IsParseError(errors.New(errors.ErrCodeColumnNotFound, "x")))
	assert.False(t, errors.IsParseError(nil))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(stderrors.New("plain")))
	assert.Equal(t, errors.ErrCodeCacheError, errors.GetCode(errors.New(errors.ErrCodeCacheError, "x")))
}

func TestWithCause_NilSafe(t *testing.T) {
	var ae *errors.AppError
	assert.Nil(t, ae.WithCause(stderrors.New("x")))
	assert.Nil(t, ae.WithDetail("x"))
}

func TestExitStatusForCode(t *testing.T) {
	assert.Equal(t, 2, errors.ExitStatusForCode(errors.ErrCodeDatasetNotFound))
	assert.Equal(t, 3, errors.ExitStatusForCode(errors.ErrCodeDatasetParseFailed))
	assert.Equal(t, 3, errors.ExitStatusForCode(errors.ErrCodeLabelOutOfDomain))
	assert.Equal(t, 1, errors.ExitStatusForCode(errors.ErrCodeChartRenderFailed))
	assert.Equal(t, 130, errors.ExitStatusForCode(errors.ErrCodeCancelled))
}

func TestModuleForCode(t *testing.T) {
	assert.Equal(t, "DATA", errors.ModuleForCode(errors.ErrCodeDatasetEmpty))
	assert.Equal(t, "COMMON", errors.ModuleForCode(errors.ErrCodeInternal))
	assert.Equal(t, "UNKNOWN", errors.ModuleForCode(errors.CodeOK))
}

func TestDefaultMessageForCode(t *testing.T) {
	assert.Equal(t, "label must be 0 or 1", errors.DefaultMessageForCode(errors.ErrCodeLabelOutOfDomain))
	assert.Equal(t, "unknown error", errors.DefaultMessageForCode(errors.ErrorCode("NOPE_999")))
}
