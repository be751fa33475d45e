package handler

import (
	"net/http"
	"strconv"

	"gamedex/backend/internal/database"
	"gamedex/backend/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// region --- DTOs ---

type MediaInput struct {
	MediaType models.MediaType `json:"media_type" binding:"required,oneof=IMG YTB"`
	URL       string           `json:"url" binding:"required,max=256"`
}

type MediaResponse struct {
	ID        uint             `json:"id"`
	MediaType models.MediaType `json:"media_type"`
	URL       string           `json:"url"`
	Order     int              `json:"order"`
}

// endregion

// GetGameMedia godoc
// @Summary      Media of a game
// @Description  Retrieves the game's media assets in display order.
// @Tags         media
// @Produce      json
// @Param        code path string true "5-character game code"
// @Success      200  {array}   MediaResponse
// @Failure      404  {object}  ErrorResponse "Game not found"
// @Router       /games/{code}/media [get]
func GetGameMedia(c *gin.Context) {
	game, ok := gameByCodeParam(c)
	if !ok {
		return
	}

	var media []models.Media
	if err := database.DB.Where("game_id = ?", game.ID).
		Order("\"order\" asc").Find(&media).Error; err != nil {
		abortWithError(c, err)
		return
	}

	response := make([]MediaResponse, 0, len(media))
	for _, m := range media {
		response = append(response, MediaResponse{
			ID: m.ID, MediaType: m.MediaType, URL: m.URL, Order: m.Order,
		})
	}
	c.JSON(http.StatusOK, response)
}

// AddGameMedia godoc
// @Summary      Add a media asset
// @Description  Appends an image URL or youtube code to the game's media, after the existing assets.
// @Tags         admin-media
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int        true "Game ID"
// @Param        input body MediaInput true "Media Info"
// @Success      201  {object}  MediaResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Admin access required"
// @Failure      404  {object}  ErrorResponse "Game not found"
// @Router       /admin/games/{id}/media [post]
func AddGameMedia(c *gin.Context) {
	var input MediaInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	gameID, _ := strconv.Atoi(c.Param("id"))
	var game models.Game
	if err := database.DB.First(&game, gameID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}

	var count int64
	if err := database.DB.Model(&models.Media{}).
		Where("game_id = ?", game.ID).Count(&count).Error; err != nil {
		abortWithError(c, err)
		return
	}

	media := models.Media{
		MediaType: input.MediaType,
		URL:       input.URL,
		GameID:    game.ID,
		Order:     int(count),
	}
	if err := database.DB.Create(&media).Error; err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MediaResponse{
		ID: media.ID, MediaType: media.MediaType, URL: media.URL, Order: media.Order,
	})
}

// DeleteGameMedia godoc
// @Summary      Delete a media asset
// @Description  Removes the asset and closes the gap in the remaining order.
// @Tags         admin-media
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Media ID"
// @Success      200 {object} map[string]string "{"message": "Media deleted"}"
// @Failure      403 {object} ErrorResponse "Admin access required"
// @Failure      404 {object} ErrorResponse "Media not found"
// @Router       /admin/media/{id} [delete]
func DeleteGameMedia(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	var media models.Media
	if err := database.DB.First(&media, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Media not found"})
		return
	}

	if err := database.DB.Delete(&media).Error; err != nil {
		abortWithError(c, err)
		return
	}

	// Close the ordering gap left behind.
	if err := database.DB.Model(&models.Media{}).
		Where("game_id = ? AND \"order\" > ?", media.GameID, media.Order).
		UpdateColumn("order", gorm.Expr("\"order\" - 1")).Error; err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Media deleted"})
}
