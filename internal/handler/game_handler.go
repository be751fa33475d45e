package handler

import (
	"net/http"
	"strconv"
	"strings"

	"gamedex/backend/internal/catalog"
	"gamedex/backend/internal/database"
	"gamedex/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// GameSelectResponse is the minimal row for select inputs.
type GameSelectResponse struct {
	Code  string `json:"game_code"`
	Title string `json:"title"`
}

// AdminGameResponse is the staff catalog row.
type AdminGameResponse struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Code        string `json:"code_unique"`
	Likes       int64  `json:"likes"`
	Dislikes    int64  `json:"dislikes"`
	Image       string `json:"image"`
	Highlighted bool   `json:"highlighted"`
	Hide        bool   `json:"hide"`
}

// endregion

// region --- Public Handlers ---

// SearchGames godoc
// @Summary      Search games
// @Description  Filters, ranks and paginates the game catalog.
// @Tags         games
// @Produce      json
// @Param        text            query  string  false  "Free-text query against titles"
// @Param        tags            query  string  false  "Comma-separated tag IDs; games must carry all of them"
// @Param        order_by        query  string  false  "Sort key, '-' prefix for descending"
// @Param        released        query  string  false  "released | unreleased | latest | between"
// @Param        date_from       query  string  false  "YYYY-MM-DD, used with released=between"
// @Param        date_to         query  string  false  "YYYY-MM-DD, used with released=between"
// @Param        price_from      query  number  false  "Minimum current price"
// @Param        price_to        query  number  false  "Maximum current price"
// @Param        sales_only      query  bool    false  "Only games on sale"
// @Param        min_discount    query  int     false  "Minimum discount percent"
// @Param        highlights_only query  bool    false  "Only highlighted games"
// @Param        unrated_only    query  bool    false  "Exclude games the viewer already rated"
// @Param        qtd             query  int     false  "Page size"
// @Param        offset          query  int     false  "Page offset"
// @Param        country         query  string  false  "Reference country"  default(US)
// @Success      200  {array}   catalog.Summary
// @Failure      400  {object}  ErrorResponse
// @Router       /games [get]
func SearchGames(c *gin.Context) {
	filter, err := filterFromQuery(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	games, err := index.Search(filter, requestCountry(c), currentUserID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	if games == nil {
		games = []*catalog.Summary{}
	}
	c.JSON(http.StatusOK, games)
}

// filterFromQuery maps the search query string onto a catalog filter.
// Unparseable numeric values are ignored rather than rejected.
func filterFromQuery(c *gin.Context) (*catalog.Filter, error) {
	var filter catalog.Filter

	filter.Text = c.Query("text")
	filter.OrderBy = c.Query("order_by")
	filter.Released = c.Query("released")
	filter.DateFrom = c.Query("date_from")
	filter.DateTo = c.Query("date_to")

	for _, raw := range splitCommaSeparated(c.Query("tags")) {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			filter.Tags = append(filter.Tags, uint(id))
		}
	}

	if raw := c.Query("price_from"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			filter.PriceFrom = &v
		}
	}
	if raw := c.Query("price_to"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			filter.PriceTo = &v
		}
	}

	filter.SalesOnly, _ = strconv.ParseBool(c.Query("sales_only"))
	filter.HighlightsOnly, _ = strconv.ParseBool(c.Query("highlights_only"))
	filter.UnratedOnly, _ = strconv.ParseBool(c.Query("unrated_only"))
	filter.MinDiscount, _ = strconv.Atoi(c.DefaultQuery("min_discount", "0"))
	filter.Quantity, _ = strconv.Atoi(c.DefaultQuery("qtd", "0"))
	filter.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	if err := filter.Validate(); err != nil {
		return nil, err
	}
	return &filter, nil
}

// GetGame godoc
// @Summary      Get a single game
// @Description  Retrieves the full summary of one game by its unique code.
// @Tags         games
// @Produce      json
// @Param        code    path   string  true   "5-character game code"
// @Param        country query  string  false  "Reference country"  default(US)
// @Success      200  {object}  catalog.Summary
// @Failure      404  {object}  ErrorResponse "Game not found"
// @Router       /games/{code} [get]
func GetGame(c *gin.Context) {
	summary, err := index.Get(c.Param("code"), requestCountry(c), currentUserID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetAlikeGames godoc
// @Summary      Games alike to a game
// @Description  Retrieves the confirmed alike games, ordered by vote count.
// @Tags         games
// @Produce      json
// @Param        code    path   string  true   "5-character game code"
// @Param        country query  string  false  "Reference country"  default(US)
// @Success      200  {array}   catalog.Summary
// @Failure      404  {object}  ErrorResponse "Game not found"
// @Router       /games/{code}/alike [get]
func GetAlikeGames(c *gin.Context) {
	games, err := index.Alike(c.Param("code"), requestCountry(c), currentUserID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	if games == nil {
		games = []*catalog.Summary{}
	}
	c.JSON(http.StatusOK, games)
}

// SelectGames godoc
// @Summary      Game picker rows
// @Description  Code and title of every visible game, for select inputs.
// @Tags         games
// @Produce      json
// @Success      200  {array}  GameSelectResponse
// @Router       /games/select [get]
func SelectGames(c *gin.Context) {
	summaries, err := index.Summaries(requestCountry(c), nil)
	if err != nil {
		abortWithError(c, err)
		return
	}

	response := make([]GameSelectResponse, 0, len(summaries))
	for _, s := range summaries {
		response = append(response, GameSelectResponse{Code: s.Code, Title: s.Title})
	}
	c.JSON(http.StatusOK, response)
}

// endregion

// region --- Admin Handlers ---

// AdminListGames godoc
// @Summary      List all games for staff
// @Description  Every game, hidden included, with vote and highlight summary.
// @Tags         admin-games
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   AdminGameResponse
// @Failure      403  {object}  ErrorResponse "Admin access required"
// @Router       /admin/games [get]
func AdminListGames(c *gin.Context) {
	var games []models.Game
	if err := database.DB.Preload("GameUS").Preload("GameEU").Find(&games).Error; err != nil {
		abortWithError(c, err)
		return
	}

	likes := countRecommendations(true)
	dislikes := countRecommendations(false)

	var highlightIDs []uint
	database.DB.Model(&models.ConfirmedHighlight{}).
		Distinct("game_id").Pluck("game_id", &highlightIDs)
	highlighted := make(map[uint]bool, len(highlightIDs))
	for _, id := range highlightIDs {
		highlighted[id] = true
	}

	response := make([]AdminGameResponse, 0, len(games))
	for i := range games {
		g := &games[i]
		response = append(response, AdminGameResponse{
			ID:          g.ID,
			Title:       g.Title(),
			Code:        g.CodeUnique,
			Likes:       likes[g.ID],
			Dislikes:    dislikes[g.ID],
			Image:       g.Image(),
			Highlighted: highlighted[g.ID],
			Hide:        g.Hide,
		})
	}
	c.JSON(http.StatusOK, response)
}

func countRecommendations(recommends bool) map[uint]int64 {
	type row struct {
		GameID uint
		N      int64
	}
	var rows []row
	database.DB.Model(&models.Recommendation{}).
		Select("game_id, count(*) as n").
		Where("recommends = ?", recommends).
		Group("game_id").
		Scan(&rows)

	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.GameID] = r.N
	}
	return counts
}

// HideGame godoc
// @Summary      Hide a game
// @Description  Removes the game from every discovery surface until unhidden.
// @Tags         admin-games
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Game ID"
// @Success      200 {object} map[string]string "{"message": "Game updated"}"
// @Failure      403 {object} ErrorResponse "Admin access required"
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /admin/games/{id}/hide [post]
func HideGame(c *gin.Context) {
	setGameHidden(c, true)
}

// UnhideGame godoc
// @Summary      Unhide a game
// @Description  Returns a hidden game to the public catalog.
// @Tags         admin-games
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Game ID"
// @Success      200 {object} map[string]string "{"message": "Game updated"}"
// @Failure      403 {object} ErrorResponse "Admin access required"
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /admin/games/{id}/hide [delete]
func UnhideGame(c *gin.Context) {
	setGameHidden(c, false)
}

func setGameHidden(c *gin.Context, hidden bool) {
	id, _ := strconv.Atoi(c.Param("id"))

	var game models.Game
	if err := database.DB.First(&game, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}

	if err := database.DB.Model(&game).Update("hide", hidden).Error; err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Game updated"})
}

// MergeGames godoc
// @Summary      Merge two games
// @Description  Folds the dropped game's region record, votes, prices and media into the kept game and deletes it.
// @Tags         admin-games
// @Produce      json
// @Security     BearerAuth
// @Param        id     path int true "Surviving game ID"
// @Param        dropID path int true "Game ID to fold in"
// @Success      200 {object} map[string]string "{"message": "Games merged"}"
// @Failure      403 {object} ErrorResponse "Admin access required"
// @Failure      404 {object} ErrorResponse "Game not found"
// @Failure      409 {object} ErrorResponse "Ambiguous region merge"
// @Router       /admin/games/{id}/merge/{dropID} [post]
func MergeGames(c *gin.Context) {
	keepID, _ := strconv.Atoi(c.Param("id"))
	dropID, _ := strconv.Atoi(c.Param("dropID"))

	if err := index.MergeGames(uint(keepID), uint(dropID)); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Games merged"})
}

// endregion

// Helper to split comma-separated strings
func splitCommaSeparated(s string) []string {
	var result []string
	parts := strings.Split(s, ",")
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
