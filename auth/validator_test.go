package auth

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pairchat/errors"
)

func TestValidateStruct_Signup(t *testing.T) {
	req := require.New(t)

	valid := SignupRequest{
		Email:    "alice@example.com",
		FullName: "Alice",
		Password: "s3cret-password",
		Bio:      "hello",
	}
	req.NoError(ValidateStruct(valid))

	cases := map[string]SignupRequest{
		"missing email":  {FullName: "Alice", Password: "s3cret-password", Bio: "hello"},
		"bad email":      {Email: "not-an-email", FullName: "Alice", Password: "s3cret-password", Bio: "hello"},
		"short password": {Email: "alice@example.com", FullName: "Alice", Password: "short", Bio: "hello"},
		"short name":     {Email: "alice@example.com", FullName: "A", Password: "s3cret-password", Bio: "hello"},
		"missing bio":    {Email: "alice@example.com", FullName: "Alice", Password: "s3cret-password"},
	}
	for name, request := range cases {
		err := ValidateStruct(request)
		req.Truef(errors.Is(err, errors.KindValidation), "case %q should fail validation", name)
	}
}

func TestValidateStruct_Login(t *testing.T) {
	req := require.New(t)

	req.NoError(ValidateStruct(LoginRequest{Email: "alice@example.com", Password: "pw"}))

	err := ValidateStruct(LoginRequest{Email: "alice@example.com"})
	req.True(errors.Is(err, errors.KindValidation))
}

func TestValidateStruct_SendMessageTextLimit(t *testing.T) {
	req := require.New(t)

	req.NoError(ValidateStruct(SendMessageRequest{Text: "hi"}))
	// The one-of rule lives in the service, empty passes tag validation
	req.NoError(ValidateStruct(SendMessageRequest{}))

	long := make([]byte, 5000)
	for i := range long {
		long[i] = 'a'
	}
	err := ValidateStruct(SendMessageRequest{Text: string(long)})
	req.True(errors.Is(err, errors.KindValidation))
}
