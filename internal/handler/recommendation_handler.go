package handler

import (
	"net/http"
	"strconv"

	"gamedex/backend/internal/database"
	"gamedex/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// RecommendationInput carries the viewer's verdict on a game.
type RecommendationInput struct {
	Recommends *bool `json:"recommends" binding:"required"`
}

// RecommendationResponse is one of the viewer's verdicts.
type RecommendationResponse struct {
	GameCode   string `json:"game_code"`
	Title      string `json:"title"`
	Recommends bool   `json:"recommends"`
}

// endregion

// region --- Public Handlers ---

// RecommendGame godoc
// @Summary      Recommend or disrecommend a game
// @Description  Casts the viewer's verdict, removes the game from their wishlist, and re-evaluates highlight thresholds. Retract first to change a verdict.
// @Tags         recommendations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        code  path string              true "5-character game code"
// @Param        input body RecommendationInput true "Verdict"
// @Success      201 {object} map[string]string "{"message": "Recommendation recorded"}"
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse "Game not found"
// @Failure      409 {object} ErrorResponse "Already rated"
// @Router       /games/{code}/recommend [post]
func RecommendGame(c *gin.Context) {
	userID, _ := c.Get("userID")

	var input RecommendationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := engine.CastRecommendation(c.Param("code"), userID.(uint), *input.Recommends); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Recommendation recorded"})
}

// RetractRecommendation godoc
// @Summary      Retract a recommendation
// @Description  Removes the viewer's verdict; highlight thresholds are re-evaluated.
// @Tags         recommendations
// @Produce      json
// @Security     BearerAuth
// @Param        code path string true "5-character game code"
// @Success      200 {object} map[string]string "{"message": "Recommendation retracted"}"
// @Failure      404 {object} ErrorResponse "No such recommendation"
// @Router       /games/{code}/recommend [delete]
func RetractRecommendation(c *gin.Context) {
	userID, _ := c.Get("userID")

	if err := engine.RetractRecommendation(c.Param("code"), userID.(uint)); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Recommendation retracted"})
}

// GetMyRecommendations godoc
// @Summary      Viewer's recommendations
// @Description  Retrieves every verdict the viewer has cast, newest first.
// @Tags         recommendations
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  RecommendationResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /users/me/recommendations [get]
func GetMyRecommendations(c *gin.Context) {
	userID, _ := c.Get("userID")

	var recs []models.Recommendation
	if err := database.DB.Where("user_id = ?", userID).
		Order("created_at desc").Find(&recs).Error; err != nil {
		abortWithError(c, err)
		return
	}

	response := make([]RecommendationResponse, 0, len(recs))
	for _, rec := range recs {
		var game models.Game
		if err := database.DB.Preload("GameUS").Preload("GameEU").
			First(&game, rec.GameID).Error; err != nil {
			continue
		}
		response = append(response, RecommendationResponse{
			GameCode:   game.CodeUnique,
			Title:      game.Title(),
			Recommends: rec.Recommends,
		})
	}
	c.JSON(http.StatusOK, response)
}

// endregion

// region --- Admin Handlers ---

// ConfirmHighlight godoc
// @Summary      Staff-highlight a game
// @Description  Records a staff highlight that overrides recommendation thresholds.
// @Tags         admin-games
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Game ID"
// @Success      201 {object} map[string]string "{"message": "Game highlighted"}"
// @Failure      403 {object} ErrorResponse "Admin access required"
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /admin/games/{id}/highlight [post]
func ConfirmHighlight(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	if err := engine.SetHighlightConfirmation(uint(id), models.SourceStaff); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Game highlighted"})
}

// UnconfirmHighlight godoc
// @Summary      Clear a staff highlight
// @Description  Removes the staff highlight; vote-sourced highlights are unaffected.
// @Tags         admin-games
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Game ID"
// @Success      200 {object} map[string]string "{"message": "Highlight cleared"}"
// @Failure      403 {object} ErrorResponse "Admin access required"
// @Router       /admin/games/{id}/highlight [delete]
func UnconfirmHighlight(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	if err := engine.ClearHighlightConfirmation(uint(id), models.SourceStaff); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Highlight cleared"})
}

// endregion
