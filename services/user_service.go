package services

import (
	"context"
	"strings"

	"github.com/samber/lo"

	"pairchat/auth"
	"pairchat/domain"
	"pairchat/errors"
	"pairchat/media"
	"pairchat/repositories"
	"pairchat/search"
)

type IUserService interface {
	UpdateProfile(ctx context.Context, userID string, req auth.UpdateProfileRequest) (domain.User, error)
	Search(ctx context.Context, query, requesterID string) ([]domain.PublicProfile, error)
}

const searchLimit = 20

type UserService struct {
	users repositories.IUserRepository
	media media.IStore
	index *search.UserIndex
}

func NewUserService(users repositories.IUserRepository, mediaStore media.IStore, index *search.UserIndex) IUserService {
	return &UserService{users: users, media: mediaStore, index: index}
}

// UpdateProfile changes display name and bio, optionally re-uploading the
// profile picture first. The search index follows the rename.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req auth.UpdateProfileRequest) (domain.User, error) {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Bio = strings.TrimSpace(req.Bio)
	req.ProfilePic = strings.TrimSpace(req.ProfilePic)

	if err := auth.ValidateStruct(req); err != nil {
		return domain.User{}, errors.Validation("Full name and bio are required")
	}

	var profilePicURL string
	if req.ProfilePic != "" {
		url, err := s.media.Upload(ctx, []byte(req.ProfilePic))
		if err != nil {
			return domain.User{}, err
		}
		profilePicURL = url
	}

	user, err := s.users.UpdateProfile(userID, req.FullName, req.Bio, profilePicURL)
	if err != nil {
		return domain.User{}, err
	}

	if err := s.index.IndexUser(user.ID, user.FullName); err != nil {
		return user, nil // profile saved; stale index only degrades search
	}
	return user, nil
}

// Search matches display names case-insensitively, excluding the
// requesting user. An empty query is a validation failure.
func (s *UserService) Search(ctx context.Context, query, requesterID string) ([]domain.PublicProfile, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.Validation("Query required")
	}

	ids, err := s.index.Search(ctx, query, requesterID, searchLimit)
	if err != nil {
		return nil, errors.Internal("Server error while searching users", err)
	}
	if len(ids) == 0 {
		return []domain.PublicProfile{}, nil
	}

	users, err := s.users.GetByIDs(ids)
	if err != nil {
		return nil, err
	}
	return lo.Map(users, func(user domain.User, _ int) domain.PublicProfile {
		return user.Public()
	}), nil
}
