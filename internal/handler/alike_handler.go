package handler

import (
	"net/http"
	"strconv"

	"gamedex/backend/internal/database"
	"gamedex/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// AlikePairResponse is one directed alike pair with its support.
type AlikePairResponse struct {
	Game1ID    uint   `json:"game1_id"`
	Game1Title string `json:"game1_title"`
	Game2ID    uint   `json:"game2_id"`
	Game2Title string `json:"game2_title"`
	Votes      int64  `json:"votes"`
	Confirmed  bool   `json:"confirmed"`
}

// endregion

// region --- Public Handlers ---

// VoteAlike godoc
// @Summary      Vote two games alike
// @Description  Casts the viewer's vote that the two games are alike; confirmation thresholds are re-evaluated.
// @Tags         alike
// @Produce      json
// @Security     BearerAuth
// @Param        code  path string true "5-character game code"
// @Param        other path string true "5-character code of the alike game"
// @Success      201 {object} map[string]string "{"message": "Vote recorded"}"
// @Failure      400 {object} ErrorResponse "A game cannot be alike itself"
// @Failure      404 {object} ErrorResponse "Game not found"
// @Failure      409 {object} ErrorResponse "Already voted"
// @Router       /games/{code}/alike/{other}/vote [post]
func VoteAlike(c *gin.Context) {
	userID, _ := c.Get("userID")

	if err := engine.CastAlikeVote(c.Param("code"), c.Param("other"), userID.(uint)); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Vote recorded"})
}

// RetractAlikeVote godoc
// @Summary      Retract an alike vote
// @Description  Removes the viewer's vote; confirmation thresholds are re-evaluated.
// @Tags         alike
// @Produce      json
// @Security     BearerAuth
// @Param        code  path string true "5-character game code"
// @Param        other path string true "5-character code of the alike game"
// @Success      200 {object} map[string]string "{"message": "Vote retracted"}"
// @Failure      404 {object} ErrorResponse "No such vote"
// @Router       /games/{code}/alike/{other}/vote [delete]
func RetractAlikeVote(c *gin.Context) {
	userID, _ := c.Get("userID")

	if err := engine.RetractAlikeVote(c.Param("code"), c.Param("other"), userID.(uint)); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Vote retracted"})
}

// GetVotedAlike godoc
// @Summary      Viewer's alike votes on a game
// @Description  Retrieves the codes of the games the viewer voted alike to this one.
// @Tags         alike
// @Produce      json
// @Security     BearerAuth
// @Param        code path string true "5-character game code"
// @Success      200  {array}  string
// @Failure      401  {object}  ErrorResponse
// @Router       /games/{code}/alike/voted [get]
func GetVotedAlike(c *gin.Context) {
	userID, _ := c.Get("userID")

	var codes []string
	err := database.DB.Model(&models.AlikeVote{}).
		Joins("JOIN games g1 ON g1.id = alike_votes.game1_id").
		Joins("JOIN games g2 ON g2.id = alike_votes.game2_id").
		Where("g1.code_unique = ? AND alike_votes.user_id = ?", c.Param("code"), userID).
		Pluck("g2.code_unique", &codes).Error
	if err != nil {
		abortWithError(c, err)
		return
	}
	if codes == nil {
		codes = []string{}
	}
	c.JSON(http.StatusOK, codes)
}

// endregion

// region --- Admin Handlers ---

// AdminListAlikePairs godoc
// @Summary      List alike pairs for staff
// @Description  Every voted alike pair with its vote count and confirmation state, strongest first.
// @Tags         admin-alike
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   AlikePairResponse
// @Failure      403  {object}  ErrorResponse "Admin access required"
// @Router       /admin/alike [get]
func AdminListAlikePairs(c *gin.Context) {
	type pairRow struct {
		Game1ID uint
		Game2ID uint
		Votes   int64
	}
	var pairs []pairRow
	err := database.DB.Model(&models.AlikeVote{}).
		Select("game1_id, game2_id, count(*) as votes").
		Where("game1_id < game2_id").
		Group("game1_id, game2_id").
		Order("votes desc").
		Scan(&pairs).Error
	if err != nil {
		abortWithError(c, err)
		return
	}

	response := make([]AlikePairResponse, 0, len(pairs))
	for _, pair := range pairs {
		var g1, g2 models.Game
		if err := database.DB.Preload("GameUS").Preload("GameEU").
			First(&g1, pair.Game1ID).Error; err != nil {
			continue
		}
		if err := database.DB.Preload("GameUS").Preload("GameEU").
			First(&g2, pair.Game2ID).Error; err != nil {
			continue
		}

		var confirmed int64
		database.DB.Model(&models.ConfirmedAlike{}).
			Where("game1_id = ? AND game2_id = ?", pair.Game1ID, pair.Game2ID).
			Count(&confirmed)

		response = append(response, AlikePairResponse{
			Game1ID:    g1.ID,
			Game1Title: g1.Title(),
			Game2ID:    g2.ID,
			Game2Title: g2.Title(),
			Votes:      pair.Votes,
			Confirmed:  confirmed > 0,
		})
	}
	c.JSON(http.StatusOK, response)
}

// ConfirmAlike godoc
// @Summary      Staff-confirm an alike pair
// @Description  Records a staff confirmation for both directions of the pair.
// @Tags         admin-alike
// @Produce      json
// @Security     BearerAuth
// @Param        game1ID path int true "First game ID"
// @Param        game2ID path int true "Second game ID"
// @Success      201 {object} map[string]string "{"message": "Pair confirmed"}"
// @Failure      403 {object} ErrorResponse "Admin access required"
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /admin/alike/{game1ID}/{game2ID}/confirm [post]
func ConfirmAlike(c *gin.Context) {
	game1ID, _ := strconv.Atoi(c.Param("game1ID"))
	game2ID, _ := strconv.Atoi(c.Param("game2ID"))

	if err := engine.SetAlikeConfirmation(uint(game1ID), uint(game2ID), models.SourceStaff); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Pair confirmed"})
}

// UnconfirmAlike godoc
// @Summary      Clear a staff alike confirmation
// @Description  Removes the staff confirmation for both directions; vote-sourced confirmations are unaffected.
// @Tags         admin-alike
// @Produce      json
// @Security     BearerAuth
// @Param        game1ID path int true "First game ID"
// @Param        game2ID path int true "Second game ID"
// @Success      200 {object} map[string]string "{"message": "Confirmation cleared"}"
// @Failure      403 {object} ErrorResponse "Admin access required"
// @Router       /admin/alike/{game1ID}/{game2ID}/confirm [delete]
func UnconfirmAlike(c *gin.Context) {
	game1ID, _ := strconv.Atoi(c.Param("game1ID"))
	game2ID, _ := strconv.Atoi(c.Param("game2ID"))

	if err := engine.ClearAlikeConfirmation(uint(game1ID), uint(game2ID), models.SourceStaff); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Confirmation cleared"})
}

// endregion
