package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Favorite is a user<->property bookmark. The composite unique index makes
// duplicate bookmarks impossible at the store level.
type Favorite struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_favorites_user_property" json:"user_id"`
	PropertyID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_favorites_user_property" json:"property_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func (f *Favorite) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return
}

// AddFavorite inserts the bookmark, swallowing the duplicate silently so a
// second add of the same (user, property) pair is a no-op for the caller.
func AddFavorite(db *gorm.DB, userID, propertyID uuid.UUID) error {
	fav := Favorite{UserID: userID, PropertyID: propertyID}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "property_id"}},
		DoNothing: true,
	}).Create(&fav).Error
}
