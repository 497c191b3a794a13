package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/moviepick/moviepick/lib/validation"
	"github.com/moviepick/moviepick/models"
)

// resetTokenTTL is how long a password reset token stays valid.
const resetTokenTTL = 24 * time.Hour

type userResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
}

func toUserResponse(u models.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, Name: u.Name, Avatar: u.Avatar}
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"max=128"`
	Avatar   string `json:"avatar" validate:"max=512"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := validation.DecodeJSON(r, &req); err != nil {
		validation.WriteError(w, err, http.StatusBadRequest)
		return
	}

	var existing models.User
	err := a.db.Where("username = ?", req.Username).First(&existing).Error
	if err == nil {
		a.writeMessage(w, http.StatusConflict, "Username already exists")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		a.logger.Error("Failed to check username", slog.Any("error", err))
		a.writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	hash, err := a.auth.HashPassword(req.Password)
	if err != nil {
		a.logger.Error("Failed to hash password", slog.Any("error", err))
		a.writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	user := models.User{
		Username:     req.Username,
		PasswordHash: hash,
		Name:         req.Name,
		Avatar:       req.Avatar,
	}
	if err := a.db.Create(&user).Error; err != nil {
		a.logger.Error("Failed to create user", slog.Any("error", err))
		a.writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if err := a.auth.SetSession(w, user.ID); err != nil {
		a.logger.Error("Failed to set session", slog.Any("error", err))
		a.writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	a.logger.Info("User registered", slog.String("username", user.Username), slog.Uint64("user_id", uint64(user.ID)))
	a.writeJSON(w, http.StatusCreated, toUserResponse(user))
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := validation.DecodeJSON(r, &req); err != nil {
		validation.WriteError(w, err, http.StatusBadRequest)
		return
	}

	var user models.User
	if err := a.db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		a.writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if !a.auth.CheckPassword(user.PasswordHash, req.Password) {
		a.writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if err := a.auth.SetSession(w, user.ID); err != nil {
		a.logger.Error("Failed to set session", slog.Any("error", err))
		a.writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	a.logger.Info("User logged in", slog.String("username", user.Username), slog.Uint64("user_id", uint64(user.ID)))
	a.writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	a.auth.ClearSession(w)
	a.writeMessage(w, http.StatusOK, "Logged out successfully")
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.auth.SessionUserID(r)
	if !ok {
		a.writeMessage(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		a.writeMessage(w, http.StatusNotFound, "User not found")
		return
	}

	a.writeJSON(w, http.StatusOK, toUserResponse(user))
}

type forgotPasswordRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
}

func (a *API) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := validation.DecodeJSON(r, &req); err != nil {
		validation.WriteError(w, err, http.StatusBadRequest)
		return
	}

	var user models.User
	if err := a.db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		// Don't reveal whether the account exists.
		a.writeMessage(w, http.StatusOK, "If an account with that username exists, a password reset link has been sent.")
		return
	}

	token := uuid.NewString()
	expiry := time.Now().Add(resetTokenTTL)
	user.ResetToken = &token
	user.ResetTokenExpiry = &expiry
	if err := a.db.Save(&user).Error; err != nil {
		a.logger.Error("Failed to store reset token", slog.Any("error", err))
		a.writeMessage(w, http.StatusInternalServerError, "An error occurred processing your request")
		return
	}

	if a.mail.Enabled() && req.Email != "" {
		if err := a.mail.SendPasswordReset(req.Email, token, user.Username); err == nil {
			a.writeMessage(w, http.StatusOK, "A password reset link has been sent to your email.")
			return
		}
		a.logger.Error("Failed to send password reset email", slog.String("username", user.Username))
	}

	// No email delivery available: hand the token back directly.
	a.writeJSON(w, http.StatusOK, map[string]string{
		"message":    "Password reset initiated",
		"resetToken": token,
		"note":       "Email service not configured. Use this token to reset your password.",
	})
}

type resetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

func (a *API) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := validation.DecodeJSON(r, &req); err != nil {
		validation.WriteError(w, err, http.StatusBadRequest)
		return
	}

	var user models.User
	err := a.db.Where("reset_token = ? AND reset_token_expiry > ?", req.Token, time.Now()).First(&user).Error
	if err != nil {
		a.writeMessage(w, http.StatusBadRequest, "Invalid or expired reset token")
		return
	}

	hash, err := a.auth.HashPassword(req.NewPassword)
	if err != nil {
		a.logger.Error("Failed to hash password", slog.Any("error", err))
		a.writeMessage(w, http.StatusInternalServerError, "Failed to update password")
		return
	}

	user.PasswordHash = hash
	user.ResetToken = nil
	user.ResetTokenExpiry = nil
	if err := a.db.Save(&user).Error; err != nil {
		a.logger.Error("Failed to update password", slog.Any("error", err))
		a.writeMessage(w, http.StatusInternalServerError, "Failed to update password")
		return
	}

	a.writeMessage(w, http.StatusOK, "Password has been reset successfully")
}
