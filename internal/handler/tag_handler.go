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

type TagGroupInput struct {
	Name              string `json:"name" binding:"required"`
	AllowVote         *bool  `json:"allow_vote"`
	MinGamesForSearch int    `json:"min_games_for_search"`
}

type TagGroupResponse struct {
	ID                uint   `json:"id"`
	Name              string `json:"name"`
	AllowVote         bool   `json:"allow_vote"`
	MinGamesForSearch int    `json:"min_games_for_search"`
}

type TagInput struct {
	Name       string `json:"name" binding:"required"`
	TagGroupID uint   `json:"tag_group_id" binding:"required"`
}

type TagResponse struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	GroupID uint   `json:"group_id"`
	Group   string `json:"group,omitempty"`
}

// GroupedTagsResponse is one tag group with its tags, for voting and
// filter-building UIs.
type GroupedTagsResponse struct {
	Group TagGroupResponse `json:"group"`
	Tags  []TagResponse    `json:"tags"`
}

func newTagGroupResponse(group models.TagGroup) TagGroupResponse {
	return TagGroupResponse{
		ID:                group.ID,
		Name:              group.Name,
		AllowVote:         group.AllowVote,
		MinGamesForSearch: group.MinGamesForSearch,
	}
}

func newTagResponse(tag models.Tag) TagResponse {
	return TagResponse{
		ID:      tag.ID,
		Name:    tag.Name,
		GroupID: tag.TagGroupID,
		Group:   tag.TagGroup.Name,
	}
}

// endregion

// region --- Public Handlers ---

// GetVotableTags godoc
// @Summary      Tags open for voting
// @Description  Retrieves every tag whose group allows user voting, grouped.
// @Tags         tags
// @Produce      json
// @Success      200  {array}  GroupedTagsResponse
// @Router       /tags/votable [get]
func GetVotableTags(c *gin.Context) {
	groupedTags(c, database.DB.Where("allow_vote = ?", true))
}

// GetGroupedTags godoc
// @Summary      All tags, grouped
// @Description  Retrieves every tag group with its tags.
// @Tags         tags
// @Produce      json
// @Success      200  {array}  GroupedTagsResponse
// @Router       /tags [get]
func GetGroupedTags(c *gin.Context) {
	groupedTags(c, database.DB)
}

func groupedTags(c *gin.Context, groupQuery *gorm.DB) {
	var groups []models.TagGroup
	if err := groupQuery.Order("name asc").Find(&groups).Error; err != nil {
		abortWithError(c, err)
		return
	}

	response := make([]GroupedTagsResponse, 0, len(groups))
	for _, group := range groups {
		var tags []models.Tag
		if err := database.DB.Where("tag_group_id = ?", group.ID).
			Order("name asc").Find(&tags).Error; err != nil {
			abortWithError(c, err)
			return
		}

		section := GroupedTagsResponse{Group: newTagGroupResponse(group)}
		for _, tag := range tags {
			section.Tags = append(section.Tags, TagResponse{
				ID: tag.ID, Name: tag.Name, GroupID: tag.TagGroupID,
			})
		}
		response = append(response, section)
	}
	c.JSON(http.StatusOK, response)
}

// GetSearchableTags godoc
// @Summary      Tags usable as search facets
// @Description  Retrieves tags confirmed on at least their group's minimum number of games.
// @Tags         tags
// @Produce      json
// @Success      200  {array}  TagResponse
// @Router       /tags/searchable [get]
func GetSearchableTags(c *gin.Context) {
	var tags []models.Tag
	if err := database.DB.Preload("TagGroup").Order("name asc").Find(&tags).Error; err != nil {
		abortWithError(c, err)
		return
	}

	response := []TagResponse{}
	for _, tag := range tags {
		var confirmed int64
		if err := database.DB.Model(&models.ConfirmedTag{}).
			Joins("JOIN games ON games.id = confirmed_tags.game_id AND games.hide = ?", false).
			Where("confirmed_tags.tag_id = ?", tag.ID).
			Distinct("confirmed_tags.game_id").Count(&confirmed).Error; err != nil {
			abortWithError(c, err)
			return
		}
		if confirmed >= int64(tag.TagGroup.MinGamesForSearch) && confirmed > 0 {
			response = append(response, newTagResponse(tag))
		}
	}
	c.JSON(http.StatusOK, response)
}

// GetVotedTags godoc
// @Summary      Viewer's tag votes on a game
// @Description  Retrieves the IDs of the tags the viewer voted for on one game.
// @Tags         tags
// @Produce      json
// @Security     BearerAuth
// @Param        code path string true "5-character game code"
// @Success      200  {array}  int
// @Failure      401  {object}  ErrorResponse
// @Router       /games/{code}/tags/voted [get]
func GetVotedTags(c *gin.Context) {
	userID, _ := c.Get("userID")

	var tagIDs []uint
	err := database.DB.Model(&models.TagVote{}).
		Joins("JOIN games ON games.id = tag_votes.game_id").
		Where("games.code_unique = ? AND tag_votes.user_id = ?", c.Param("code"), userID).
		Pluck("tag_votes.tag_id", &tagIDs).Error
	if err != nil {
		abortWithError(c, err)
		return
	}
	if tagIDs == nil {
		tagIDs = []uint{}
	}
	c.JSON(http.StatusOK, tagIDs)
}

// VoteTag godoc
// @Summary      Vote a tag onto a game
// @Description  Casts the viewer's vote that the tag describes the game; confirmation thresholds are re-evaluated.
// @Tags         tags
// @Produce      json
// @Security     BearerAuth
// @Param        code path string true "5-character game code"
// @Param        id   path int    true "Tag ID"
// @Success      201 {object} map[string]string "{"message": "Vote recorded"}"
// @Failure      400 {object} ErrorResponse "Group does not allow voting"
// @Failure      404 {object} ErrorResponse "Game or tag not found"
// @Failure      409 {object} ErrorResponse "Already voted"
// @Router       /games/{code}/tags/{id}/vote [post]
func VoteTag(c *gin.Context) {
	userID, _ := c.Get("userID")
	tagID, _ := strconv.Atoi(c.Param("id"))

	if err := engine.CastTagVote(uint(tagID), c.Param("code"), userID.(uint)); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Vote recorded"})
}

// RetractTagVote godoc
// @Summary      Retract a tag vote
// @Description  Removes the viewer's vote; confirmation thresholds are re-evaluated.
// @Tags         tags
// @Produce      json
// @Security     BearerAuth
// @Param        code path string true "5-character game code"
// @Param        id   path int    true "Tag ID"
// @Success      200 {object} map[string]string "{"message": "Vote retracted"}"
// @Failure      404 {object} ErrorResponse "No such vote"
// @Router       /games/{code}/tags/{id}/vote [delete]
func RetractTagVote(c *gin.Context) {
	userID, _ := c.Get("userID")
	tagID, _ := strconv.Atoi(c.Param("id"))

	if err := engine.RetractTagVote(uint(tagID), c.Param("code"), userID.(uint)); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Vote retracted"})
}

// endregion

// region --- Admin Handlers ---

// CreateTagGroup godoc
// @Summary      Create a tag group
// @Tags         admin-tags
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body TagGroupInput true "Group Info"
// @Success      201  {object}  TagGroupResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Admin access required"
// @Failure      409  {object}  ErrorResponse "Group already exists"
// @Router       /admin/tag-groups [post]
func CreateTagGroup(c *gin.Context) {
	var input TagGroupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group := models.TagGroup{
		Name:              input.Name,
		AllowVote:         true,
		MinGamesForSearch: input.MinGamesForSearch,
	}
	if input.AllowVote != nil {
		group.AllowVote = *input.AllowVote
	}

	if err := database.DB.Create(&group).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Tag group already exists or another error occurred"})
		return
	}
	c.JSON(http.StatusCreated, newTagGroupResponse(group))
}

// UpdateTagGroup godoc
// @Summary      Update a tag group
// @Tags         admin-tags
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int           true "Group ID"
// @Param        input body TagGroupInput true "New Group Info"
// @Success      200  {object}  TagGroupResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Admin access required"
// @Failure      404  {object}  ErrorResponse "Group not found"
// @Router       /admin/tag-groups/{id} [put]
func UpdateTagGroup(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	var input TagGroupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var group models.TagGroup
	if err := database.DB.First(&group, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tag group not found"})
		return
	}

	group.Name = input.Name
	group.MinGamesForSearch = input.MinGamesForSearch
	if input.AllowVote != nil {
		group.AllowVote = *input.AllowVote
	}
	if err := database.DB.Save(&group).Error; err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTagGroupResponse(group))
}

// CreateTag godoc
// @Summary      Create a new tag
// @Description  Creates a new tag inside a group.
// @Tags         admin-tags
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body TagInput true "Tag Info"
// @Success      201  {object}  TagResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Admin access required"
// @Failure      409  {object}  ErrorResponse "Tag already exists"
// @Router       /admin/tags [post]
func CreateTag(c *gin.Context) {
	var input TagInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tag := models.Tag{Name: input.Name, TagGroupID: input.TagGroupID}
	if err := database.DB.Create(&tag).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Tag already exists or another error occurred"})
		return
	}
	c.JSON(http.StatusCreated, TagResponse{ID: tag.ID, Name: tag.Name, GroupID: tag.TagGroupID})
}

// UpdateTag godoc
// @Summary      Update a tag
// @Description  Renames a tag or moves it to another group.
// @Tags         admin-tags
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int      true  "Tag ID"
// @Param        input body TagInput true "New Tag Info"
// @Success      200  {object}  TagResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Admin access required"
// @Failure      404  {object}  ErrorResponse "Tag not found"
// @Router       /admin/tags/{id} [put]
func UpdateTag(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return
	}

	var input TagInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var tag models.Tag
	if err := database.DB.First(&tag, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tag not found"})
		return
	}

	tag.Name = input.Name
	tag.TagGroupID = input.TagGroupID
	if err := database.DB.Save(&tag).Error; err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, TagResponse{ID: tag.ID, Name: tag.Name, GroupID: tag.TagGroupID})
}

// DeleteTag godoc
// @Summary      Delete a tag
// @Description  Deletes an existing tag and its votes and confirmations.
// @Tags         admin-tags
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Tag ID"
// @Success      200  {object}  map[string]string "{"message": "Tag deleted"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Admin access required"
// @Failure      404  {object}  ErrorResponse "Tag not found"
// @Router       /admin/tags/{id} [delete]
func DeleteTag(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return
	}

	result := database.DB.Unscoped().Delete(&models.Tag{}, id)
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tag not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tag deleted"})
}

// MergeTags godoc
// @Summary      Merge two tags
// @Description  Folds the losing tag's votes and confirmations into the surviving tag and deletes it.
// @Tags         admin-tags
// @Produce      json
// @Security     BearerAuth
// @Param        id     path int true "Surviving tag ID"
// @Param        dropID path int true "Tag ID to fold in"
// @Success      200 {object} map[string]string "{"message": "Tags merged"}"
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse "Admin access required"
// @Failure      404 {object} ErrorResponse "Tag not found"
// @Router       /admin/tags/{id}/merge/{dropID} [post]
func MergeTags(c *gin.Context) {
	keepID, _ := strconv.Atoi(c.Param("id"))
	dropID, _ := strconv.Atoi(c.Param("dropID"))

	if err := engine.MergeTags(uint(keepID), uint(dropID)); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Tags merged"})
}

// TagSuggestionResponse is one (game, tag) pair users have voted on,
// with its vote count and whether it is already confirmed.
type TagSuggestionResponse struct {
	GameID    uint   `json:"game_id"`
	GameCode  string `json:"game_code"`
	TagID     uint   `json:"tag_id"`
	TagName   string `json:"tag_name"`
	Votes     int64  `json:"votes"`
	Confirmed bool   `json:"confirmed"`
}

// AdminListTagSuggestions godoc
// @Summary      List voted tag suggestions
// @Description  Every (game, tag) pair with votes, most voted first, flagged when already confirmed.
// @Tags         admin-tags
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   TagSuggestionResponse
// @Failure      403  {object}  ErrorResponse "Admin access required"
// @Router       /admin/tags/suggestions [get]
func AdminListTagSuggestions(c *gin.Context) {
	var rows []TagSuggestionResponse
	err := database.DB.Model(&models.TagVote{}).
		Select("tag_votes.game_id AS game_id, games.code_unique AS game_code, " +
			"tag_votes.tag_id AS tag_id, tags.name AS tag_name, COUNT(*) AS votes").
		Joins("JOIN games ON games.id = tag_votes.game_id").
		Joins("JOIN tags ON tags.id = tag_votes.tag_id").
		Group("tag_votes.game_id, games.code_unique, tag_votes.tag_id, tags.name").
		Order("votes DESC").
		Scan(&rows).Error
	if err != nil {
		abortWithError(c, err)
		return
	}

	for i := range rows {
		var confirmed int64
		if err := database.DB.Model(&models.ConfirmedTag{}).
			Where("tag_id = ? AND game_id = ?", rows[i].TagID, rows[i].GameID).
			Count(&confirmed).Error; err != nil {
			abortWithError(c, err)
			return
		}
		rows[i].Confirmed = confirmed > 0
	}
	c.JSON(http.StatusOK, rows)
}

// AdminGameTags godoc
// @Summary      Confirmed tags of a game, by source
// @Description  Maps each confirmation source to the tags it confirmed on the game.
// @Tags         admin-tags
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Game ID"
// @Success      200  {object}  map[string][]TagResponse
// @Failure      403  {object}  ErrorResponse "Admin access required"
// @Failure      404  {object}  ErrorResponse "Game not found"
// @Router       /admin/games/{id}/tags [get]
func AdminGameTags(c *gin.Context) {
	gameID, _ := strconv.Atoi(c.Param("id"))

	var game models.Game
	if err := database.DB.First(&game, gameID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}

	var confirmations []models.ConfirmedTag
	if err := database.DB.Preload("Tag").
		Where("game_id = ?", game.ID).Find(&confirmations).Error; err != nil {
		abortWithError(c, err)
		return
	}

	response := map[string][]TagResponse{}
	for _, confirmation := range confirmations {
		source := string(confirmation.ConfirmedBy)
		response[source] = append(response[source], TagResponse{
			ID:      confirmation.Tag.ID,
			Name:    confirmation.Tag.Name,
			GroupID: confirmation.Tag.TagGroupID,
		})
	}
	c.JSON(http.StatusOK, response)
}

// ConfirmTag godoc
// @Summary      Staff-confirm a tag on a game
// @Description  Records a staff confirmation that overrides vote thresholds.
// @Tags         admin-tags
// @Produce      json
// @Security     BearerAuth
// @Param        id     path int true "Game ID"
// @Param        tagID  path int true "Tag ID"
// @Success      201 {object} map[string]string "{"message": "Tag confirmed"}"
// @Failure      403 {object} ErrorResponse "Admin access required"
// @Failure      404 {object} ErrorResponse "Game or tag not found"
// @Router       /admin/games/{id}/tags/{tagID}/confirm [post]
func ConfirmTag(c *gin.Context) {
	gameID, _ := strconv.Atoi(c.Param("id"))
	tagID, _ := strconv.Atoi(c.Param("tagID"))

	if err := engine.SetTagConfirmation(uint(tagID), uint(gameID), models.SourceStaff); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Tag confirmed"})
}

// UnconfirmTag godoc
// @Summary      Clear a staff tag confirmation
// @Description  Removes the staff confirmation; vote-sourced confirmations are unaffected.
// @Tags         admin-tags
// @Produce      json
// @Security     BearerAuth
// @Param        id     path int true "Game ID"
// @Param        tagID  path int true "Tag ID"
// @Success      200 {object} map[string]string "{"message": "Confirmation cleared"}"
// @Failure      403 {object} ErrorResponse "Admin access required"
// @Router       /admin/games/{id}/tags/{tagID}/confirm [delete]
func UnconfirmTag(c *gin.Context) {
	gameID, _ := strconv.Atoi(c.Param("id"))
	tagID, _ := strconv.Atoi(c.Param("tagID"))

	if err := engine.ClearTagConfirmation(uint(tagID), uint(gameID), models.SourceStaff); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Confirmation cleared"})
}

// endregion
