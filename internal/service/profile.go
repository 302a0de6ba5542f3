package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/chatkit/chatauth/internal/model"
	"github.com/chatkit/chatauth/internal/repository"
	"github.com/chatkit/chatauth/internal/validation"
)

var ErrImageUpload = errors.New("failed to upload image")

type ProfileService struct {
	userRepository repository.UserRepository
	fileService    *FileService
}

func NewProfileService(userRepository repository.UserRepository, fileService *FileService) *ProfileService {
	return &ProfileService{
		userRepository: userRepository,
		fileService:    fileService,
	}
}

// UpdateProfilePic replaces the user's avatar with the image encoded in payload
// (data URL or bare base64).
func (s *ProfileService) UpdateProfilePic(ctx context.Context, userID, payload string) (*model.User, error) {
	img, err := validation.DecodeImage(payload)
	if err != nil {
		return nil, err
	}

	current, err := s.userRepository.ByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	url, err := s.fileService.UploadAvatar(ctx, img)
	if err != nil {
		slog.Error("avatar upload failed", "error", err, "user_id", userID)
		return nil, fmt.Errorf("%w: %w", ErrImageUpload, err)
	}

	user, err := s.userRepository.UpdateProfilePic(ctx, userID, url)
	if err != nil {
		s.fileService.DeleteByURL(ctx, url)
		return nil, fmt.Errorf("failed to update profile pic: %w", err)
	}

	s.fileService.DeleteByURL(ctx, current.ProfilePic)

	slog.Info("profile pic updated", "user_id", userID)
	return user, nil
}

func (s *ProfileService) UpdateFullName(ctx context.Context, userID, name string) (*model.User, error) {
	name = validation.NormalizeName(name)

	err := validation.ValidateName(name)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepository.UpdateFullName(ctx, userID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to update name: %w", err)
	}

	return user, nil
}
