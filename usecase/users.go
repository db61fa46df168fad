package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mileusna/useragent"
	"go.mongodb.org/mongo-driver/mongo"

	"notero/model"
	"notero/repository"
	"notero/services"
	"notero/utils"
)

// UserService is the auth collaborator: it registers accounts and mints the
// tokens whose subject the stores stamp on notes and tags. It performs no
// authorization beyond credential checks.
type UserService struct {
	UsersRepo *repository.UsersRepo
}

func (svc *UserService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	if !services.ValidatePassword(password) {
		utils.TrackAuthAttempt("failure", "register")
		return nil, utils.NewFieldValidationError(utils.FieldViolation{
			Field:   "password",
			Message: "must be at least 6 characters with a number and a special character",
		})
	}

	hash, err := services.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		UserID:       uuid.NewString(),
		Username:     strings.TrimSpace(username),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := svc.UsersRepo.AddUser(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			utils.TrackAuthAttempt("failure", "register")
			return nil, utils.NewFieldValidationError(utils.FieldViolation{
				Field:   "email",
				Message: "is already registered",
			})
		}
		return nil, err
	}

	utils.TrackAuthAttempt("success", "register")
	return user, nil
}

// Login verifies credentials and returns the user plus a signed access
// token. The device is parsed from the User-Agent header for the login
// audit trail.
func (svc *UserService) Login(ctx context.Context, email, password, userAgentHeader string) (*model.User, string, error) {
	user, err := svc.UsersRepo.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, "", err
	}
	if user == nil || !services.VerifyPassword(user.PasswordHash, password) {
		utils.TrackAuthAttempt("failure", "login")
		return nil, "", utils.NewValidationError("invalid email or password")
	}

	token, err := utils.GenerateToken(user.UserID)
	if err != nil {
		return nil, "", err
	}

	now := time.Now().UTC()
	if err := svc.UsersRepo.RecordLogin(ctx, user.UserID, loginDevice(userAgentHeader), now); err != nil {
		return nil, "", err
	}
	user.LastLoginAt = &now

	utils.TrackAuthAttempt("success", "login")
	return user, token, nil
}

func (svc *UserService) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	user, err := svc.UsersRepo.FindUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, utils.NewNotFoundError("user", userID)
	}
	return user, nil
}

func loginDevice(userAgentHeader string) string {
	if userAgentHeader == "" {
		return "unknown"
	}
	ua := useragent.Parse(userAgentHeader)
	parts := make([]string, 0, 3)
	if ua.Name != "" {
		parts = append(parts, ua.Name)
	}
	if ua.OS != "" {
		parts = append(parts, ua.OS)
	}
	if ua.Device != "" {
		parts = append(parts, ua.Device)
	}
	if len(parts) == 0 {
		return "unknown"
	}
	return strings.Join(parts, " / ")
}
