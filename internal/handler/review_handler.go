package handler

import (
	"errors"
	"net/http"
	"strconv"

	"gamedex/backend/internal/database"
	"gamedex/backend/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// region --- DTOs ---

type ReviewInput struct {
	Text string `json:"text" binding:"required,max=4000"`
}

type ReviewResponse struct {
	ID         uint   `json:"id"`
	Text       string `json:"text"`
	Nickname   string `json:"nickname"`
	Recommends bool   `json:"recommends"`
	HasEdited  bool   `json:"has_edited"`
	Likes      int64  `json:"likes"`
	Dislikes   int64  `json:"dislikes"`
	MyVote     *bool  `json:"my_vote"`
}

func newReviewResponse(review models.Review, viewerID *uint) ReviewResponse {
	var likes, dislikes int64
	database.DB.Model(&models.ReviewVote{}).
		Where("review_id = ? AND vote = ?", review.ID, true).Count(&likes)
	database.DB.Model(&models.ReviewVote{}).
		Where("review_id = ? AND vote = ?", review.ID, false).Count(&dislikes)

	var myVote *bool
	if viewerID != nil {
		var vote models.ReviewVote
		err := database.DB.Where("review_id = ? AND user_id = ?", review.ID, *viewerID).
			First(&vote).Error
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			myVote = &vote.Vote
		}
	}

	return ReviewResponse{
		ID:         review.ID,
		Text:       review.Text,
		Nickname:   review.User.Nickname,
		Recommends: review.Recommendation.Recommends,
		HasEdited:  review.HasEdited,
		Likes:      likes,
		Dislikes:   dislikes,
		MyVote:     myVote,
	}
}

// endregion

// region --- Handlers ---

// GetGameReviews godoc
// @Summary      Reviews of a game
// @Description  Retrieves the game's reviews with vote counts, newest first.
// @Tags         reviews
// @Produce      json
// @Param        code path string true "5-character game code"
// @Success      200  {array}   ReviewResponse
// @Failure      404  {object}  ErrorResponse "Game not found"
// @Router       /games/{code}/reviews [get]
func GetGameReviews(c *gin.Context) {
	game, ok := gameByCodeParam(c)
	if !ok {
		return
	}

	var reviews []models.Review
	if err := database.DB.Preload("User").Preload("Recommendation").
		Where("game_id = ?", game.ID).
		Order("created_at desc").Find(&reviews).Error; err != nil {
		abortWithError(c, err)
		return
	}

	viewerID := currentUserID(c)
	response := make([]ReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		response = append(response, newReviewResponse(review, viewerID))
	}
	c.JSON(http.StatusOK, response)
}

// WriteReview godoc
// @Summary      Write or edit a review
// @Description  Creates the viewer's review of a game they have rated, or replaces the text of an existing one.
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        code  path string      true "5-character game code"
// @Param        input body ReviewInput true "Review text"
// @Success      200 {object} ReviewResponse
// @Failure      400 {object} ErrorResponse "Rate the game before reviewing it"
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /games/{code}/reviews [put]
func WriteReview(c *gin.Context) {
	userID, _ := c.Get("userID")

	var input ReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	game, ok := gameByCodeParam(c)
	if !ok {
		return
	}

	// A review hangs off the author's recommendation; without one there
	// is nothing to attach it to.
	var rec models.Recommendation
	if err := database.DB.Where("game_id = ? AND user_id = ?", game.ID, userID).
		First(&rec).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rate the game before reviewing it"})
		return
	}

	var review models.Review
	err := database.DB.Where("game_id = ? AND user_id = ?", game.ID, userID).
		First(&review).Error
	switch {
	case err == nil:
		review.Text = input.Text
		review.HasEdited = true
	case errors.Is(err, gorm.ErrRecordNotFound):
		review = models.Review{
			Text:             input.Text,
			GameID:           game.ID,
			UserID:           userID.(uint),
			RecommendationID: rec.ID,
		}
	default:
		abortWithError(c, err)
		return
	}

	if err := database.DB.Save(&review).Error; err != nil {
		abortWithError(c, err)
		return
	}

	database.DB.Preload("User").Preload("Recommendation").First(&review, review.ID)
	viewer := userID.(uint)
	c.JSON(http.StatusOK, newReviewResponse(review, &viewer))
}

// DeleteReview godoc
// @Summary      Delete own review
// @Tags         reviews
// @Produce      json
// @Security     BearerAuth
// @Param        code path string true "5-character game code"
// @Success      200 {object} map[string]string "{"message": "Review deleted"}"
// @Failure      404 {object} ErrorResponse "Review not found"
// @Router       /games/{code}/reviews [delete]
func DeleteReview(c *gin.Context) {
	userID, _ := c.Get("userID")

	game, ok := gameByCodeParam(c)
	if !ok {
		return
	}

	result := database.DB.Where("game_id = ? AND user_id = ?", game.ID, userID).
		Delete(&models.Review{})
	if result.Error != nil {
		abortWithError(c, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review deleted"})
}

// VoteReview godoc
// @Summary      Vote on a review
// @Description  Records or replaces the viewer's up/down vote on a review.
// @Tags         reviews
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  int   true  "Review ID"
// @Param        vote query bool  true  "true for up, false for down"
// @Success      200 {object} map[string]string "{"message": "Vote recorded"}"
// @Failure      404 {object} ErrorResponse "Review not found"
// @Router       /reviews/{id}/vote [post]
func VoteReview(c *gin.Context) {
	userID, _ := c.Get("userID")
	reviewID, _ := strconv.Atoi(c.Param("id"))
	voteValue, _ := strconv.ParseBool(c.DefaultQuery("vote", "true"))

	var review models.Review
	if err := database.DB.First(&review, reviewID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		return
	}

	var vote models.ReviewVote
	err := database.DB.Where("review_id = ? AND user_id = ?", review.ID, userID).
		First(&vote).Error
	switch {
	case err == nil:
		if err := database.DB.Model(&vote).Update("vote", voteValue).Error; err != nil {
			abortWithError(c, err)
			return
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		vote = models.ReviewVote{ReviewID: review.ID, UserID: userID.(uint), Vote: voteValue}
		if err := database.DB.Create(&vote).Error; err != nil {
			abortWithError(c, err)
			return
		}
	default:
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Vote recorded"})
}

// RetractReviewVote godoc
// @Summary      Retract a review vote
// @Tags         reviews
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Review ID"
// @Success      200 {object} map[string]string "{"message": "Vote retracted"}"
// @Failure      404 {object} ErrorResponse "No such vote"
// @Router       /reviews/{id}/vote [delete]
func RetractReviewVote(c *gin.Context) {
	userID, _ := c.Get("userID")
	reviewID, _ := strconv.Atoi(c.Param("id"))

	result := database.DB.Where("review_id = ? AND user_id = ?", reviewID, userID).
		Delete(&models.ReviewVote{})
	if result.Error != nil {
		abortWithError(c, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No such vote"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Vote retracted"})
}

// endregion

// gameByCodeParam loads the game named by the :code path parameter,
// writing the 404 itself when it is missing.
func gameByCodeParam(c *gin.Context) (*models.Game, bool) {
	var game models.Game
	if err := database.DB.Where("code_unique = ?", c.Param("code")).
		First(&game).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return nil, false
	}
	return &game, true
}
