package media

import (
	"context"
	"log/slog"
	"regexp"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"pairchat/errors"
)

func TestUpload_RejectsNonImages(t *testing.T) {
	req := require.New(t)
	store := &S3Store{log: logs.GetLoggerFromLevel(slog.LevelDebug)}

	_, err := store.Upload(context.Background(), nil)
	req.True(errors.Is(err, errors.KindValidation))

	_, err = store.Upload(context.Background(), []byte("just some text"))
	req.True(errors.Is(err, errors.KindValidation))

	_, err = store.Upload(context.Background(), []byte(`{"json":"payload"}`))
	req.True(errors.Is(err, errors.KindValidation))
}

func TestStorageKey(t *testing.T) {
	req := require.New(t)

	key := storageKey(".png")
	req.Regexp(regexp.MustCompile(`^uploads/\d{4}/\d{2}/\d{2}/[0-9a-f-]{36}\.png$`), key)
	req.NotEqual(key, storageKey(".png"))
}
