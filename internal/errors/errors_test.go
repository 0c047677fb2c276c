package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	e := New(CategoryConstraint, SeverityError, "missing user id")
	assert.Equal(t, "constraint (error): missing user id", e.Error())

	cause := fmt.Errorf("disk I/O error")
	wrapped := Wrap(cause, CategoryStorage, SeverityError, "insert failed")
	assert.Contains(t, wrapped.Error(), "insert failed")
	assert.Contains(t, wrapped.Error(), "disk I/O error")
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("unable to open database file")
	e := ConnectionError(cause, "store unreachable")
	require.ErrorIs(t, e, cause)
	assert.Equal(t, cause, errors.Unwrap(e))
}

func TestTaxonomyCategories(t *testing.T) {
	cases := []struct {
		err      error
		category ErrorCategory
	}{
		{ConnectionError(nil, "x"), CategoryConnection},
		{NotAuthenticatedError(), CategoryAuth},
		{InvalidPinError(), CategoryPin},
		{AlreadyCheckedInError(7), CategoryAlreadyCheckedIn},
		{NoOpenRecordError(), CategoryNoOpenRecord},
		{NotFoundError("record gone"), CategoryNotFound},
		{ConstraintError("bad row"), CategoryConstraint},
	}
	for _, tc := range cases {
		assert.True(t, IsCategory(tc.err, tc.category), "expected %v for %v", tc.category, tc.err)
		assert.Equal(t, tc.category, GetCategory(tc.err))
	}
}

func TestRetryability(t *testing.T) {
	assert.True(t, IsRetryable(ConnectionError(nil, "x")))
	assert.True(t, IsRetryable(NotFoundError("lost race")))

	assert.False(t, IsRetryable(ConstraintError("bad row")))
	assert.False(t, IsRetryable(InvalidPinError()))
	assert.False(t, IsRetryable(AlreadyCheckedInError(1)))
	assert.False(t, IsRetryable(fmt.Errorf("plain error")))
}

func TestWithContext(t *testing.T) {
	e := AlreadyCheckedInError(42)
	require.NotNil(t, e.Context)
	assert.Equal(t, int64(42), e.Context["record_id"])

	e = e.WithContext("user_id", int64(3))
	assert.Equal(t, int64(3), e.Context["user_id"])
}

func TestGetCategoryForeignError(t *testing.T) {
	assert.Equal(t, CategoryInternal, GetCategory(fmt.Errorf("plain")))
}
