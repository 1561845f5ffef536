package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	req := require.New(t)

	req.Equal(KindValidation, KindOf(Validation("bad input")))
	req.Equal(KindUnauthorized, KindOf(Unauthorized("nope")))
	req.Equal(KindNotFound, KindOf(NotFound("missing")))
	req.Equal(KindConflict, KindOf(Conflict("taken")))
	req.Equal(KindUpstream, KindOf(Upstream("s3 down", stderrors.New("dial"))))

	// Untagged errors default to Internal
	req.Equal(KindInternal, KindOf(stderrors.New("plain")))
	req.Equal(KindInternal, KindOf(nil))
}

func TestKindSurvivesWrapping(t *testing.T) {
	req := require.New(t)

	wrapped := fmt.Errorf("handler: %w", NotFound("missing"))
	req.True(Is(wrapped, KindNotFound))
	req.Equal("missing", MessageOf(wrapped))
}

func TestMessageOf_NeverLeaksInternals(t *testing.T) {
	req := require.New(t)

	cause := stderrors.New("pgx: connection refused")
	req.Equal("Internal Server Error", MessageOf(cause))

	tagged := Internal("Something went wrong", cause)
	req.Equal("Something went wrong", MessageOf(tagged))
	// The cause stays reachable for logs
	req.True(stderrors.Is(tagged, cause))
}

func TestErrorString(t *testing.T) {
	req := require.New(t)

	req.Equal("missing", NotFound("missing").Error())
	req.Equal("s3 down: dial", Upstream("s3 down", stderrors.New("dial")).Error())
}
