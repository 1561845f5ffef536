package main

import (
	"fmt"
	"time"
)

type Config struct {
	Host     string `env:"HOST,default=localhost"`
	Port     int    `env:"PORT,default=8080"`
	LogLevel string `env:"LOG_LEVEL,default=INFO"`

	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath  string `env:"BLUGE_FILEPATH,required=true"`

	AccessTokenSecret  string        `env:"ACCESS_TOKEN_SECRET,required=true"`
	RefreshTokenSecret string        `env:"REFRESH_TOKEN_SECRET,required=true"`
	AccessTokenTTL     time.Duration `env:"ACCESS_TOKEN_TTL,default=15m"`
	RefreshTokenTTL    time.Duration `env:"REFRESH_TOKEN_TTL,default=168h"`

	PresenceGrace     time.Duration `env:"PRESENCE_GRACE,default=1s"`
	ChannelBufferSize int           `env:"CHANNEL_BUFFER_SIZE,default=256"`

	CORSOrigin    string `env:"CORS_ORIGIN,default=*"`
	SecureCookies bool   `env:"SECURE_COOKIES,default=false"`

	CensoredWordsPath string `env:"CENSORED_WORDS_PATH"`
	ModerationMask    string `env:"MODERATION_CHARACTER_REPLACEMENT,default=*"`

	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3Region    string `env:"S3_REGION,default=us-east-1"`
	S3Bucket    string `env:"S3_BUCKET,required=true"`
	S3AccessKey string `env:"S3_ACCESS_KEY,required=true"`
	S3SecretKey string `env:"S3_SECRET_KEY,required=true"`
	S3PublicURL string `env:"S3_PUBLIC_URL,required=true"`
}

func (c Config) maskRune() (rune, error) {
	r := []rune(c.ModerationMask)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"MODERATION_CHARACTER_REPLACEMENT must be a single character, got %q",
			c.ModerationMask,
		)
	}
	return r[0], nil
}
