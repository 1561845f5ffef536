package search

import (
	"context"
	"log/slog"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) *UserIndex {
	t.Helper()
	index, err := NewInMemoryUserIndex(logs.GetLoggerFromLevel(slog.LevelDebug))
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	return index
}

func TestUserIndex_SubstringCaseInsensitive(t *testing.T) {
	req := require.New(t)
	index := newTestIndex(t)

	req.NoError(index.IndexUser("u1", "Alice Martin"))
	req.NoError(index.IndexUser("u2", "Bob Malik"))
	req.NoError(index.IndexUser("u3", "Carol Jones"))

	// Substring inside a token, regardless of case
	ids, err := index.Search(context.Background(), "ALI", "", 10)
	req.NoError(err)
	req.ElementsMatch([]string{"u1", "u2"}, ids)

	ids, err = index.Search(context.Background(), "jones", "", 10)
	req.NoError(err)
	req.Equal([]string{"u3"}, ids)

	ids, err = index.Search(context.Background(), "zzz", "", 10)
	req.NoError(err)
	req.Empty(ids)
}

func TestUserIndex_ExcludesRequester(t *testing.T) {
	req := require.New(t)
	index := newTestIndex(t)

	req.NoError(index.IndexUser("u1", "Alice Martin"))
	req.NoError(index.IndexUser("u2", "Alice Cooper"))

	ids, err := index.Search(context.Background(), "alice", "u1", 10)
	req.NoError(err)
	req.Equal([]string{"u2"}, ids)
}

func TestUserIndex_UpsertFollowsRename(t *testing.T) {
	req := require.New(t)
	index := newTestIndex(t)

	req.NoError(index.IndexUser("u1", "Alice Martin"))
	// The user renames; the old name must stop matching
	req.NoError(index.IndexUser("u1", "Alicia Keys"))

	ids, err := index.Search(context.Background(), "martin", "", 10)
	req.NoError(err)
	req.Empty(ids)

	ids, err = index.Search(context.Background(), "keys", "", 10)
	req.NoError(err)
	req.Equal([]string{"u1"}, ids)
}

func TestUserIndex_LimitApplies(t *testing.T) {
	req := require.New(t)
	index := newTestIndex(t)

	req.NoError(index.IndexUser("u1", "Sam One"))
	req.NoError(index.IndexUser("u2", "Sam Two"))
	req.NoError(index.IndexUser("u3", "Sam Three"))

	ids, err := index.Search(context.Background(), "sam", "", 2)
	req.NoError(err)
	req.Len(ids, 2)
}
