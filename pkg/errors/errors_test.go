package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/OpinionGraph/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// New / Wrap
// ─────────────────────────────────────────────────────────────────────────────

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal error", errors.CodeInternal, "unexpected failure"},
		{"empty corpus", errors.ErrCodeEmptyCorpus, "no sentences"},
		{"invalid param", errors.CodeInvalidParam, "threshold must be positive"},
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
			assert.NotEmpty(t, ae.Stack)
		})
	}
}

func TestNewf_FormatsMessage(t *testing.T) {
	ae := errors.Newf(errors.ErrCodeInvalidConfig, "gap %d out of range", 0)
	assert.Equal(t, "gap 0 out of range", ae.Message)
}

func TestWrap_NilErrReturnsNil(t *testing.T) {
	t.Parallel()
	assert.Nil(t, errors.Wrap(nil, errors.CodeInternal, "should not matter"))
}

func TestWrap_CauseChainIsPreserved(t *testing.T) {
	t.Parallel()

	root := stderrors.New("connection refused")
	wrapped := errors.Wrap(root, errors.ErrCodeGraphStore, "persist graph")

	require.NotNil(t, wrapped)
	assert.True(t, stderrors.Is(wrapped, root))
	assert.Equal(t, errors.ErrCodeGraphStore, wrapped.Code)
}

func TestWrap_UnknownCodeKeepsOriginal(t *testing.T) {
	t.Parallel()

	inner := errors.TaggingError(1, 2)
	outer := errors.Wrap(inner, errors.CodeUnknown, "build graph")

	assert.Equal(t, errors.ErrCodeTagging, outer.Code)
}

// ─────────────────────────────────────────────────────────────────────────────
// Error() formatting
// ─────────────────────────────────────────────────────────────────────────────

func TestError_Format(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "[OPN_002] corpus contains no sentences", errors.EmptyCorpus().Error())
	assert.Equal(t,
		"[OPN_001] token has no part-of-speech tag: sentence=3 token=7",
		errors.TaggingError(3, 7).Error())
	assert.Equal(t, "[OPN_006] too many candidate paths: limit=100", errors.CandidateLimit(100).Error())
}

func TestWithDetail_DoesNotMutateReceiver(t *testing.T) {
	t.Parallel()

	base := errors.New(errors.CodeNotFound, "report not found")
	withDetail := base.WithDetail("key=abc")

	assert.Empty(t, base.Detail)
	assert.Equal(t, "key=abc", withDetail.Detail)

	var nilErr *errors.AppError
	assert.Nil(t, nilErr.WithDetail("x"))
	assert.Nil(t, nilErr.WithCause(fmt.Errorf("x")))
}

func TestWithCause_SetsCause(t *testing.T) {
	t.Parallel()

	cause := stderrors.New("boom")
	ae := errors.Internal("failed").WithCause(cause)
	assert.True(t, stderrors.Is(ae, cause))
}

// ─────────────────────────────────────────────────────────────────────────────
// Domain factories
// ─────────────────────────────────────────────────────────────────────────────

func TestDomainFactories(t *testing.T) {
	t.Parallel()

	assert.Equal(t, errors.ErrCodeTagging, errors.TaggingError(0, 0).Code)
	assert.Equal(t, errors.ErrCodeEmptyCorpus, errors.EmptyCorpus().Code)

	iv := errors.InvariantViolation("word=phone has no occurrences")
	assert.Equal(t, errors.ErrCodeInvariantViolation, iv.Code)
	assert.Equal(t, "word=phone has no occurrences", iv.Detail)

	assert.Equal(t, errors.ErrCodeInvalidConfig, errors.InvalidConfig("bad").Code)
	assert.Equal(t, errors.CodeInvalidParam, errors.InvalidParam("bad").Code)
}

// ─────────────────────────────────────────────────────────────────────────────
// Chain inspection
// ─────────────────────────────────────────────────────────────────────────────

func TestIsCode_TraversesFmtWrapping(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("pipeline: %w", errors.EmptyCorpus())
	assert.True(t, errors.IsCode(err, errors.ErrCodeEmptyCorpus))
	assert.False(t, errors.IsCode(err, errors.ErrCodeTagging))
	assert.False(t, errors.IsCode(nil, errors.ErrCodeTagging))
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	assert.True(t, errors.IsNotFound(errors.NotFound("missing")))
	assert.True(t, errors.IsNotFound(fmt.Errorf("wrapped: %w", errors.NotFound("missing"))))
	assert.False(t, errors.IsNotFound(errors.Internal("boom")))
	assert.False(t, errors.IsNotFound(stderrors.New("plain")))
}

func TestGetCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(stderrors.New("plain")))
	assert.Equal(t, errors.ErrCodeTagging, errors.GetCode(fmt.Errorf("x: %w", errors.TaggingError(0, 1))))
}

//Personal.AI order the ending
