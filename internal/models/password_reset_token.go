package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PasswordResetToken stores tokens for the "forgot password" flow.
// user_id carries a unique index so each user has at most one live token.
type PasswordResetToken struct {
	gorm.Model
	Token     string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	User      User      `gorm:"foreignKey:UserID"`
	ExpiresAt time.Time `gorm:"not null"`
}

// UpsertPasswordResetToken issues a token for the user, replacing any prior
// one in a single ON CONFLICT statement. Two concurrent reset requests for
// the same user can therefore never leave two live tokens behind.
func UpsertPasswordResetToken(db *gorm.DB, userID uuid.UUID, token string, expiresAt time.Time) error {
	reset := PasswordResetToken{
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt,
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"token":      token,
			"expires_at": expiresAt,
			"updated_at": time.Now(),
		}),
	}).Create(&reset).Error
}
