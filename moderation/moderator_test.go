package moderation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModerator_CensorMasksWords(t *testing.T) {
	req := require.New(t)
	moderator, err := NewModerator([]string{"darn", "golly"}, '*')
	req.NoError(err)
	req.NotNil(moderator)

	req.Equal("well **** it", moderator.Censor("well darn it"))
	req.Equal("***** and ****", moderator.Censor("golly and darn"))
	req.Equal("nothing to hide", moderator.Censor("nothing to hide"))
}

func TestModerator_CaseInsensitiveKeepsLength(t *testing.T) {
	req := require.New(t)
	moderator, err := NewModerator([]string{"darn"}, '#')
	req.NoError(err)

	censored := moderator.Censor("DaRn, what a day")
	req.Equal("####, what a day", censored)
	req.Len(censored, len("DaRn, what a day"))
}

func TestModerator_NilIsDisabled(t *testing.T) {
	req := require.New(t)

	// No usable words means no moderator at all
	moderator, err := NewModerator([]string{"", "  "}, '*')
	req.NoError(err)
	req.Nil(moderator)

	// And a nil moderator passes text through untouched
	req.Equal("darn", moderator.Censor("darn"))
	req.Equal("", moderator.Censor(""))
}

func TestNewModeratorFromFile(t *testing.T) {
	req := require.New(t)

	path := filepath.Join(t.TempDir(), "words.txt")
	req.NoError(os.WriteFile(path, []byte("darn\n\ngolly\n"), 0o600))

	moderator, err := NewModeratorFromFile(path, '*')
	req.NoError(err)
	req.NotNil(moderator)
	req.Equal("****!", moderator.Censor("darn!"))

	// Empty path disables moderation
	moderator, err = NewModeratorFromFile("", '*')
	req.NoError(err)
	req.Nil(moderator)

	_, err = NewModeratorFromFile(filepath.Join(t.TempDir(), "missing.txt"), '*')
	req.Error(err)
}

func TestModerator_UnicodeText(t *testing.T) {
	req := require.New(t)
	moderator, err := NewModerator([]string{"zut"}, '*')
	req.NoError(err)

	req.Equal("héhé *** alors", moderator.Censor("héhé ZUT alors"))
}
