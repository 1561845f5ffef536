//go:generate go run go.uber.org/mock/mockgen -source=auth_service.go -destination=../mocks/mock_auth_service.go -package=mocks
package services

import (
	"context"
	"strings"

	"pairchat/auth"
	"pairchat/domain"
	"pairchat/errors"
	"pairchat/media"
	"pairchat/repositories"
	"pairchat/search"
)

type IAuthService interface {
	Signup(ctx context.Context, req auth.SignupRequest) (domain.User, error)
	Login(ctx context.Context, email, password string) (domain.User, TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)
	Logout(ctx context.Context, userID string) error
	CheckAuth(ctx context.Context, accessToken string) (domain.User, error)
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type AuthService struct {
	users  repositories.IUserRepository
	issuer *auth.TokenIssuer
	media  media.IStore
	index  *search.UserIndex
}

func NewAuthService(users repositories.IUserRepository, issuer *auth.TokenIssuer, mediaStore media.IStore, index *search.UserIndex) IAuthService {
	return &AuthService{users: users, issuer: issuer, media: mediaStore, index: index}
}

// Signup creates an account. An optional profile picture is uploaded to
// the media store before the user record exists, so a failed upload never
// leaves a half-created account.
func (s *AuthService) Signup(ctx context.Context, req auth.SignupRequest) (domain.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	req.Bio = strings.TrimSpace(req.Bio)

	if err := auth.ValidateStruct(req); err != nil {
		return domain.User{}, err
	}

	var profilePicURL string
	if req.ProfilePic != "" {
		url, err := s.media.Upload(ctx, []byte(req.ProfilePic))
		if err != nil {
			return domain.User{}, err
		}
		profilePicURL = url
	}

	// Validation runs before any expensive cryptographic work.
	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return domain.User{}, errors.Internal("Something went wrong while registering the user", err)
	}

	user, err := s.users.Create(req.Email, req.FullName, req.Bio, profilePicURL, hashed)
	if err != nil {
		return domain.User{}, err
	}

	if err := s.index.IndexUser(user.ID, user.FullName); err != nil {
		// The account exists; a stale search index only degrades discovery.
		return user, nil
	}
	return user, nil
}

// Login verifies credentials and issues a fresh token pair, persisting the
// refresh value so it can be matched on renewal.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, TokenPair, error) {
	email = strings.TrimSpace(email)
	password = strings.TrimSpace(password)
	if email == "" || password == "" {
		return domain.User{}, TokenPair{}, errors.Validation("Email and password are required")
	}

	user, err := s.users.GetByEmail(email)
	if err != nil {
		// Generic failure to prevent user enumeration.
		return domain.User{}, TokenPair{}, errors.Unauthorized("Invalid credentials!")
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return domain.User{}, TokenPair{}, errors.Unauthorized("Invalid credentials!")
	}

	pair, err := s.issuePair(user.ID)
	if err != nil {
		return domain.User{}, TokenPair{}, err
	}
	return user, pair, nil
}

// Refresh validates the presented refresh token against both its signature
// and the stored per-user value, then rotates the pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	if refreshToken == "" {
		return TokenPair{}, errors.Unauthorized("Unauthorized request")
	}

	userID, err := s.issuer.VerifyRefresh(refreshToken)
	if err != nil {
		return TokenPair{}, err
	}

	user, err := s.users.GetByID(userID)
	if err != nil {
		return TokenPair{}, errors.Unauthorized("Invalid refresh token")
	}
	if user.RefreshToken == "" || user.RefreshToken != refreshToken {
		return TokenPair{}, errors.Unauthorized("Refresh token is expired or used!")
	}

	return s.issuePair(user.ID)
}

// Logout invalidates the stored refresh credential.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	return s.users.SetRefreshToken(userID, "")
}

// CheckAuth resolves an access token to its user. Used by the API
// middleware on every authenticated request.
func (s *AuthService) CheckAuth(ctx context.Context, accessToken string) (domain.User, error) {
	userID, err := s.issuer.VerifyAccess(accessToken)
	if err != nil {
		return domain.User{}, err
	}
	user, err := s.users.GetByID(userID)
	if err != nil {
		return domain.User{}, errors.Unauthorized("Invalid Access Token!")
	}
	return user, nil
}

func (s *AuthService) issuePair(userID string) (TokenPair, error) {
	access, refresh, err := s.issuer.IssuePair(userID)
	if err != nil {
		return TokenPair{}, errors.Internal("token generation failed", err)
	}
	if err := s.users.SetRefreshToken(userID, refresh); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
