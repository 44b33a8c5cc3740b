package handler

import (
	"context"
	"errors"

	"daily-tasks-bot/internal/models"
	"daily-tasks-bot/internal/repository"
	"daily-tasks-bot/internal/service"

	"github.com/sirupsen/logrus"
)

// replyError turns a service error into a chat reply. Store failures are logged and not shown verbatim.
func (h *Handler) replyError(chatID int64, action string, err error) {
	var validationErr *service.ValidationError
	var rangeErr *service.RangeError
	var storeErr *service.StoreError

	switch {
	case errors.As(err, &validationErr), errors.As(err, &rangeErr):
		logrus.WithError(err).WithField("chat_id", chatID).Warn(action + " rejected")
		h.client.SendText(chatID, "❌ "+err.Error())
	case errors.Is(err, service.ErrNotFound), errors.Is(err, repository.ErrUserNotFound), errors.Is(err, repository.ErrTaskNotFound):
		h.client.SendText(chatID, "❌ Not found: "+err.Error())
	case errors.As(err, &storeErr):
		logrus.WithError(err).WithField("chat_id", chatID).Error(action + " failed")
		h.client.SendText(chatID, "❌ Storage is unavailable, please try again later.")
	default:
		logrus.WithError(err).WithField("chat_id", chatID).Error(action + " failed")
		h.client.SendText(chatID, "❌ "+action+" failed: "+err.Error())
	}
}

// requireUser loads the sender's profile or tells them to create one.
func (h *Handler) requireUser(ctx context.Context, chatID int64) (*models.User, bool) {
	user, err := h.userService.GetUser(ctx, chatID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			h.client.SendText(chatID, "❌ Profile not found.\nUse /createprofile to create one.")
		} else {
			h.replyError(chatID, "Profile lookup", err)
		}
		return nil, false
	}
	return user, true
}

// requireAdmin loads the sender's profile and checks the admin role.
func (h *Handler) requireAdmin(ctx context.Context, chatID int64) (*models.User, bool) {
	user, ok := h.requireUser(ctx, chatID)
	if !ok {
		return nil, false
	}
	if !user.IsAdmin() {
		logrus.WithField("chat_id", chatID).Warn("Unauthorized access to admin command")
		h.client.SendText(chatID, "❌ Access denied. This command is for administrators only.")
		return nil, false
	}
	return user, true
}
