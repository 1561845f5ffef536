package auth

import (
	"github.com/go-playground/validator/v10"

	"pairchat/errors"
)

var validate = validator.New()

// SignupRequest carries the signup form fields. ProfilePic is an optional
// base64 or data-URI image payload uploaded before the account is created.
type SignupRequest struct {
	Email      string `json:"email" validate:"required,email"`
	FullName   string `json:"fullName" validate:"required,min=2,max=80"`
	Password   string `json:"password" validate:"required,min=8,max=72"`
	Bio        string `json:"bio" validate:"required,max=300"`
	ProfilePic string `json:"profilePic,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	FullName   string `json:"fullName" validate:"required,min=2,max=80"`
	Bio        string `json:"bio" validate:"required,max=300"`
	ProfilePic string `json:"profilePic,omitempty"`
}

// SendMessageRequest requires at least one of Text or Image; that rule is
// cross-field and enforced in the chat service, not by tags.
type SendMessageRequest struct {
	Text  string `json:"text,omitempty" validate:"max=4096"`
	Image string `json:"image,omitempty"`
}

// ValidateStruct runs tag validation and converts failures to the
// Validation error kind so callers never see validator internals.
func ValidateStruct(req any) error {
	if err := validate.Struct(req); err != nil {
		return errors.Validation("All Fields are required.")
	}
	return nil
}
