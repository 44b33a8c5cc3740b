package service

import (
	"context"
	"fmt"
	"strings"

	"daily-tasks-bot/internal/models"
	"daily-tasks-bot/internal/repository"

	"github.com/sirupsen/logrus"
)

// UserService is the user and team directory.
type UserService struct {
	repo   repository.UserRepository
	logger *logrus.Logger
}

func NewUserService(repo repository.UserRepository) *UserService {
	return &UserService{repo: repo, logger: newLogger()}
}

// CreateUser registers a user with the client role
func (s *UserService) CreateUser(ctx context.Context, chatID int64, username, firstName, lastName string) (*models.User, error) {
	if firstName == "" {
		return nil, &ValidationError{Field: "first_name", Reason: "must not be empty"}
	}

	user := &models.User{
		ChatID:    chatID,
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
		Role:      models.RoleClient,
		Active:    true,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// GetUser returns the user registered for chatID
func (s *UserService) GetUser(ctx context.Context, chatID int64) (*models.User, error) {
	user, err := s.repo.GetByChatID(ctx, chatID)
	if err != nil {
		return nil, storeErr("get user", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user with chat %d: %w", chatID, ErrNotFound)
	}
	return user, nil
}

// GetUserByID returns a user by primary key
func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("get user", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return user, nil
}

// JoinTeam moves the user into teamID
func (s *UserService) JoinTeam(ctx context.Context, chatID int64, teamID string) error {
	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return &ValidationError{Field: "team_id", Reason: "must not be empty"}
	}

	s.logger.WithFields(logrus.Fields{
		"chat_id": chatID,
		"team_id": teamID,
	}).Info("User joining team")

	return s.repo.UpdateTeam(ctx, chatID, teamID)
}

// SetActive includes or excludes the user from team listings
func (s *UserService) SetActive(ctx context.Context, id uint, active bool) error {
	return s.repo.SetActive(ctx, id, active)
}

// ActiveMembers lists the active users of a team
func (s *UserService) ActiveMembers(ctx context.Context, teamID string) ([]*models.User, error) {
	return s.repo.GetActiveByTeam(ctx, teamID)
}

// GetAllUsers returns every registered user
func (s *UserService) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	return s.repo.GetAll(ctx)
}

// IsAdmin reports whether chatID belongs to an admin
func (s *UserService) IsAdmin(ctx context.Context, chatID int64) (bool, error) {
	user, err := s.repo.GetByChatID(ctx, chatID)
	if err != nil {
		return false, err
	}
	return user != nil && user.IsAdmin(), nil
}

// SetRole changes the role of the user registered for targetChatID
func (s *UserService) SetRole(ctx context.Context, targetChatID int64, role string) error {
	if role != models.RoleAdmin && role != models.RoleClient {
		return &ValidationError{Field: "role", Reason: fmt.Sprintf("unknown role %q", role)}
	}

	s.logger.WithFields(logrus.Fields{
		"chat_id": targetChatID,
		"role":    role,
	}).Info("Changing user role")

	return s.repo.UpdateRole(ctx, targetChatID, role)
}

// InitializeAdmin promotes or creates the admin configured for the bot
func (s *UserService) InitializeAdmin(ctx context.Context, adminChatID int64) error {
	if adminChatID == 0 {
		return nil
	}

	existing, err := s.repo.GetByChatID(ctx, adminChatID)
	if err != nil {
		return err
	}
	if existing != nil {
		return s.repo.UpdateRole(ctx, adminChatID, models.RoleAdmin)
	}

	return s.repo.Create(ctx, &models.User{
		ChatID:    adminChatID,
		Username:  "admin",
		FirstName: "Administrator",
		Role:      models.RoleAdmin,
		Active:    true,
	})
}

// FormatUserInfo renders a user profile for chat output
func (s *UserService) FormatUserInfo(user *models.User) string {
	var lines []string

	lines = append(lines, "👤 Profile:")
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("🆔 Chat ID: %d", user.ChatID))
	if user.Username != "" {
		lines = append(lines, fmt.Sprintf("📛 Username: @%s", user.Username))
	}
	lines = append(lines, fmt.Sprintf("👨‍💼 Name: %s", user.DisplayName()))

	team := user.TeamID
	if team == "" {
		team = "-"
	}
	lines = append(lines, fmt.Sprintf("👥 Team: %s", team))

	roleEmoji := "👤"
	if user.IsAdmin() {
		roleEmoji = "👑"
	}
	lines = append(lines, fmt.Sprintf("%s Role: %s", roleEmoji, user.Role))

	return strings.Join(lines, "\n")
}
