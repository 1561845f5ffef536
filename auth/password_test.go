package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	req := require.New(t)

	hash, err := HashPassword("s3cret-password")
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$argon2id$"))

	ok, err := ComparePassword("s3cret-password", hash)
	req.NoError(err)
	req.True(ok)

	ok, err = ComparePassword("wrong-password", hash)
	req.NoError(err)
	req.False(ok)
}

func TestHashPassword_SaltsDiffer(t *testing.T) {
	req := require.New(t)

	first, err := HashPassword("same")
	req.NoError(err)
	second, err := HashPassword("same")
	req.NoError(err)

	req.NotEqual(first, second)
}

func TestComparePassword_MalformedHash(t *testing.T) {
	req := require.New(t)

	for _, encoded := range []string{
		"",
		"plain",
		"$bcrypt$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		"$argon2id$v=19$bad$c2FsdA$aGFzaA",
	} {
		_, err := ComparePassword("pw", encoded)
		req.Error(err)
	}
}
