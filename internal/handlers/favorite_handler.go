package handlers

import (
	"net/http"

	"estatelist/backend/internal/database"
	"estatelist/backend/internal/models"
	applog "estatelist/backend/pkg/log"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type FavoritePayload struct {
	UserID     string `json:"user_id" binding:"required"`
	PropertyID string `json:"property_id" binding:"required"`
}

// ListFavoritesHandler returns the properties a user has bookmarked.
func ListFavoritesHandler(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	db := database.GetDB()
	var props []models.Property
	err = db.Joins("JOIN favorites ON favorites.property_id = properties.property_id").
		Where("favorites.user_id = ?", userID).
		Find(&props).Error
	if err != nil {
		applog.L.Error("Failed to list favorites", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch favorites"})
		return
	}

	c.JSON(http.StatusOK, props)
}

// AddFavoriteHandler bookmarks a property for a user. Adding the same
// pair twice is a no-op, not an error.
func AddFavoriteHandler(c *gin.Context) {
	userID, propertyID, ok := bindFavoritePayload(c)
	if !ok {
		return
	}

	if err := models.AddFavorite(database.GetDB(), userID, propertyID); err != nil {
		applog.L.Error("Failed to add favorite", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add favorite"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Favorite added"})
}

// RemoveFavoriteHandler drops the bookmark. Removing a pair that is not
// bookmarked succeeds quietly.
func RemoveFavoriteHandler(c *gin.Context) {
	userID, propertyID, ok := bindFavoritePayload(c)
	if !ok {
		return
	}

	err := database.GetDB().
		Where("user_id = ? AND property_id = ?", userID, propertyID).
		Delete(&models.Favorite{}).Error
	if err != nil {
		applog.L.Error("Failed to remove favorite", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove favorite"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Favorite removed"})
}

func bindFavoritePayload(c *gin.Context) (userID, propertyID uuid.UUID, ok bool) {
	var payload FavoritePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id and property_id are required"})
		return uuid.Nil, uuid.Nil, false
	}

	userID, err := uuid.Parse(payload.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user_id"})
		return uuid.Nil, uuid.Nil, false
	}
	propertyID, err = uuid.Parse(payload.PropertyID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property_id"})
		return uuid.Nil, uuid.Nil, false
	}
	return userID, propertyID, true
}
