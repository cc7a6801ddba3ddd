package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"estatelist/backend/internal/database"
	"estatelist/backend/internal/models"
	"estatelist/backend/internal/notifications"
	appconfig "estatelist/backend/pkg/config"
	applog "estatelist/backend/pkg/log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const resetTokenLifetime = 1 * time.Hour

// PasswordResetHandler carries the injected email notifier for the
// "forgot password" flow.
type PasswordResetHandler struct {
	notifier notifications.EmailNotifier
}

func NewPasswordResetHandler(notifier notifications.EmailNotifier) *PasswordResetHandler {
	return &PasswordResetHandler{notifier: notifier}
}

type RequestResetPayload struct {
	Email string `json:"email" binding:"required,email"`
}

// RequestReset issues a reset token and mails the reset link. The response
// is 200 whether or not the email exists, so account existence is not
// revealed. Issuing a new token atomically replaces any prior one for the
// same user.
func (h *PasswordResetHandler) RequestReset(c *gin.Context) {
	log := applog.L.Named("RequestReset")
	var payload RequestResetPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	db := database.GetDB()
	var user models.User
	if err := db.Where("email = ?", payload.Email).First(&user).Error; err != nil {
		log.Info("Password reset requested for non-existent email", zap.String("email", payload.Email))
		c.JSON(http.StatusOK, gin.H{"message": "If an account with that email exists, a reset link has been sent."})
		return
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		log.Error("Failed to generate password reset token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	token := hex.EncodeToString(tokenBytes)

	expiresAt := time.Now().Add(resetTokenLifetime)
	if err := models.UpsertPasswordResetToken(db, user.ID, token, expiresAt); err != nil {
		log.Error("Failed to save password reset token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save token"})
		return
	}

	resetLink := fmt.Sprintf("%s/reset-password?token=%s", appconfig.Cfg.FrontendBaseURL, token)
	bodyHTML := fmt.Sprintf(`<p>Click the link to reset your password (expires in 1h):</p><a href="%s">%s</a>`, resetLink, resetLink)
	bodyText := fmt.Sprintf("Reset your password (expires in 1h): %s", resetLink)

	if err := notifications.SendEmailNotification(c.Request.Context(), h.notifier, user.Email, "Password Reset", bodyHTML, bodyText); err != nil {
		// Do not surface mail failures to the caller.
		log.Error("Failed to send password reset email", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"message": "If an account with that email exists, a reset link has been sent."})
}

type ResetByTokenPayload struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

// ResetByToken consumes a reset token and sets the new password. An
// expired token is rejected but left in place; only a successful reset
// deletes it.
func (h *PasswordResetHandler) ResetByToken(c *gin.Context) {
	log := applog.L.Named("ResetByToken")
	var payload ResetByTokenPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	db := database.GetDB()
	var resetToken models.PasswordResetToken
	if err := db.Where("token = ?", payload.Token).First(&resetToken).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired token"})
		return
	}

	if time.Now().After(resetToken.ExpiresAt) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired token"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(payload.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash new password", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process new password"})
		return
	}

	if err := db.Model(&models.User{}).Where("user_id = ?", resetToken.UserID).
		Update("password", string(hashedPassword)).Error; err != nil {
		log.Error("Failed to update password", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update password"})
		return
	}

	// Single use: a successful reset consumes the token.
	if err := db.Unscoped().Delete(&resetToken).Error; err != nil {
		log.Error("Failed to delete consumed reset token", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset successful"})
}
