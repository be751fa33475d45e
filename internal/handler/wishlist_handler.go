package handler

import (
	"net/http"

	"gamedex/backend/internal/catalog"
	"gamedex/backend/internal/database"
	"gamedex/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// AddToWishlist godoc
// @Summary      Wish for a game
// @Description  Adds the game to the viewer's wishlist. Rating the game later removes it automatically.
// @Tags         wishlist
// @Produce      json
// @Security     BearerAuth
// @Param        code path string true "5-character game code"
// @Success      201 {object} map[string]string "{"message": "Added to wishlist"}"
// @Failure      404 {object} ErrorResponse "Game not found"
// @Failure      409 {object} ErrorResponse "Already wished"
// @Router       /games/{code}/wish [post]
func AddToWishlist(c *gin.Context) {
	userID, _ := c.Get("userID")

	game, ok := gameByCodeParam(c)
	if !ok {
		return
	}

	var existing int64
	database.DB.Model(&models.Wishlist{}).
		Where("game_id = ? AND user_id = ?", game.ID, userID).Count(&existing)
	if existing > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Already wished"})
		return
	}

	wish := models.Wishlist{GameID: game.ID, UserID: userID.(uint)}
	if err := database.DB.Create(&wish).Error; err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Added to wishlist"})
}

// RemoveFromWishlist godoc
// @Summary      Unwish a game
// @Tags         wishlist
// @Produce      json
// @Security     BearerAuth
// @Param        code path string true "5-character game code"
// @Success      200 {object} map[string]string "{"message": "Removed from wishlist"}"
// @Failure      404 {object} ErrorResponse "Game not wished"
// @Router       /games/{code}/wish [delete]
func RemoveFromWishlist(c *gin.Context) {
	userID, _ := c.Get("userID")

	game, ok := gameByCodeParam(c)
	if !ok {
		return
	}

	result := database.DB.Where("game_id = ? AND user_id = ?", game.ID, userID).
		Delete(&models.Wishlist{})
	if result.Error != nil {
		abortWithError(c, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not wished"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Removed from wishlist"})
}

// GetMyWishlist godoc
// @Summary      Viewer's wishlist
// @Description  Retrieves the full summaries of the viewer's wished games, newest wish first.
// @Tags         wishlist
// @Produce      json
// @Security     BearerAuth
// @Param        country query string false "Reference country" default(US)
// @Success      200  {array}  catalog.Summary
// @Failure      401  {object}  ErrorResponse
// @Router       /users/me/wishlist [get]
func GetMyWishlist(c *gin.Context) {
	userID, _ := c.Get("userID")
	viewer := userID.(uint)

	var wishes []models.Wishlist
	if err := database.DB.Where("user_id = ?", viewer).
		Order("created_at desc").Find(&wishes).Error; err != nil {
		abortWithError(c, err)
		return
	}

	summaries, err := index.Summaries(requestCountry(c), &viewer)
	if err != nil {
		abortWithError(c, err)
		return
	}
	byID := make(map[uint]*catalog.Summary, len(summaries))
	for _, s := range summaries {
		byID[s.ID] = s
	}

	response := make([]*catalog.Summary, 0, len(wishes))
	for _, wish := range wishes {
		if s, ok := byID[wish.GameID]; ok {
			response = append(response, s)
		}
	}
	c.JSON(http.StatusOK, response)
}
