package handler

import (
	"net/http"
	"strconv"

	"gamedex/backend/internal/catalog"
	"gamedex/backend/internal/database"
	"gamedex/backend/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// region --- DTOs ---

type SlotResponse struct {
	ID    uint               `json:"id"`
	Order int                `json:"order"`
	Lists []GameListResponse `json:"lists"`
}

type GameListInput struct {
	Title      string `json:"title" binding:"required,max=128"`
	QueryJSON  string `json:"query" binding:"required,max=512"`
	LoggedOnly bool   `json:"logged_only"`
	Frequency  int    `json:"frequency"`
	SlotID     uint   `json:"slot_id" binding:"required"`
}

type GameListResponse struct {
	ID         uint   `json:"id"`
	Title      string `json:"title"`
	QueryJSON  string `json:"query"`
	LoggedOnly bool   `json:"logged_only"`
	Frequency  int    `json:"frequency"`
	SlotID     uint   `json:"slot_id"`
}

func newGameListResponse(list models.GameList) GameListResponse {
	return GameListResponse{
		ID:         list.ID,
		Title:      list.Title,
		QueryJSON:  list.QueryJSON,
		LoggedOnly: list.LoggedOnly,
		Frequency:  list.Frequency,
		SlotID:     list.SlotID,
	}
}

// endregion

// region --- Public Handlers ---

// GetHome godoc
// @Summary      Home page sections
// @Description  Resolves every slot to one of its lists, weighted by frequency, and runs its saved search.
// @Tags         home
// @Produce      json
// @Param        country query string false "Reference country" default(US)
// @Success      200  {array}  discovery.ResolvedSlot
// @Router       /home [get]
func GetHome(c *gin.Context) {
	sections, err := resolver.Resolve(currentUserID(c), requestCountry(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, sections)
}

// endregion

// region --- Admin Handlers ---

// GetSlots godoc
// @Summary      List home slots
// @Description  Every slot in display order, with its saved lists.
// @Tags         admin-lists
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   SlotResponse
// @Failure      403  {object}  ErrorResponse "Admin access required"
// @Router       /admin/slots [get]
func GetSlots(c *gin.Context) {
	var slots []models.ListSlot
	if err := database.DB.Order("\"order\" asc").Find(&slots).Error; err != nil {
		abortWithError(c, err)
		return
	}

	response := make([]SlotResponse, 0, len(slots))
	for _, slot := range slots {
		var lists []models.GameList
		if err := database.DB.Where("slot_id = ?", slot.ID).Find(&lists).Error; err != nil {
			abortWithError(c, err)
			return
		}

		row := SlotResponse{ID: slot.ID, Order: slot.Order}
		for _, list := range lists {
			row.Lists = append(row.Lists, newGameListResponse(list))
		}
		response = append(response, row)
	}
	c.JSON(http.StatusOK, response)
}

// CreateSlot godoc
// @Summary      Create a home slot
// @Description  Appends a new slot after the existing ones.
// @Tags         admin-lists
// @Produce      json
// @Security     BearerAuth
// @Success      201  {object}  SlotResponse
// @Failure      403  {object}  ErrorResponse "Admin access required"
// @Router       /admin/slots [post]
func CreateSlot(c *gin.Context) {
	var count int64
	if err := database.DB.Model(&models.ListSlot{}).Count(&count).Error; err != nil {
		abortWithError(c, err)
		return
	}

	slot := models.ListSlot{Order: int(count)}
	if err := database.DB.Create(&slot).Error; err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, SlotResponse{ID: slot.ID, Order: slot.Order})
}

// MoveSlot godoc
// @Summary      Move a home slot
// @Description  Swaps the slot with its neighbour in the given direction.
// @Tags         admin-lists
// @Produce      json
// @Security     BearerAuth
// @Param        id        path  int     true "Slot ID"
// @Param        direction query string  true "up or down"
// @Success      200  {object}  SlotResponse
// @Failure      400  {object}  ErrorResponse "Slot already at the edge"
// @Failure      403  {object}  ErrorResponse "Admin access required"
// @Failure      404  {object}  ErrorResponse "Slot not found"
// @Router       /admin/slots/{id}/move [post]
func MoveSlot(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	var slot models.ListSlot
	if err := database.DB.First(&slot, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Slot not found"})
		return
	}

	target := slot.Order - 1
	if c.Query("direction") == "down" {
		target = slot.Order + 1
	}

	var neighbour models.ListSlot
	if err := database.DB.Where("\"order\" = ?", target).First(&neighbour).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Slot already at the edge"})
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ListSlot{}).Where("id = ?", neighbour.ID).
			Update("order", slot.Order).Error; err != nil {
			return err
		}
		return tx.Model(&models.ListSlot{}).Where("id = ?", slot.ID).
			Update("order", target).Error
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, SlotResponse{ID: slot.ID, Order: target})
}

// DeleteSlot godoc
// @Summary      Delete a home slot
// @Description  Removes the slot and every list saved in it, closing the ordering gap.
// @Tags         admin-lists
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Slot ID"
// @Success      200 {object} map[string]string "{"message": "Slot deleted"}"
// @Failure      403 {object} ErrorResponse "Admin access required"
// @Failure      404 {object} ErrorResponse "Slot not found"
// @Router       /admin/slots/{id} [delete]
func DeleteSlot(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	var slot models.ListSlot
	if err := database.DB.First(&slot, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Slot not found"})
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.ListSlot{}, slot.ID).Error; err != nil {
			return err
		}
		if err := tx.Where("slot_id = ?", slot.ID).
			Delete(&models.GameList{}).Error; err != nil {
			return err
		}
		return tx.Model(&models.ListSlot{}).Where("\"order\" > ?", slot.Order).
			UpdateColumn("order", gorm.Expr("\"order\" - 1")).Error
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Slot deleted"})
}

// CreateGameList godoc
// @Summary      Save a list
// @Description  Saves a weighted search into a slot. The query is validated before saving so the home page never executes a broken filter.
// @Tags         admin-lists
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body GameListInput true "List Info"
// @Success      201  {object}  GameListResponse
// @Failure      400  {object}  ErrorResponse "Invalid saved query"
// @Failure      403  {object}  ErrorResponse "Admin access required"
// @Failure      404  {object}  ErrorResponse "Slot not found"
// @Router       /admin/lists [post]
func CreateGameList(c *gin.Context) {
	var input GameListInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := catalog.ParseFilter(input.QueryJSON); err != nil {
		abortWithError(c, err)
		return
	}

	var slot models.ListSlot
	if err := database.DB.First(&slot, input.SlotID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Slot not found"})
		return
	}

	list := models.GameList{
		Title:      input.Title,
		QueryJSON:  input.QueryJSON,
		LoggedOnly: input.LoggedOnly,
		Frequency:  input.Frequency,
		SlotID:     input.SlotID,
	}
	if list.Frequency <= 0 {
		list.Frequency = 1
	}
	if err := database.DB.Create(&list).Error; err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newGameListResponse(list))
}

// UpdateGameList godoc
// @Summary      Update a saved list
// @Tags         admin-lists
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int           true "List ID"
// @Param        input body GameListInput true "New List Info"
// @Success      200  {object}  GameListResponse
// @Failure      400  {object}  ErrorResponse "Invalid saved query"
// @Failure      403  {object}  ErrorResponse "Admin access required"
// @Failure      404  {object}  ErrorResponse "List not found"
// @Router       /admin/lists/{id} [put]
func UpdateGameList(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	var input GameListInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := catalog.ParseFilter(input.QueryJSON); err != nil {
		abortWithError(c, err)
		return
	}

	var list models.GameList
	if err := database.DB.First(&list, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "List not found"})
		return
	}

	list.Title = input.Title
	list.QueryJSON = input.QueryJSON
	list.LoggedOnly = input.LoggedOnly
	list.Frequency = input.Frequency
	list.SlotID = input.SlotID
	if list.Frequency <= 0 {
		list.Frequency = 1
	}
	if err := database.DB.Save(&list).Error; err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newGameListResponse(list))
}

// DeleteGameList godoc
// @Summary      Delete a saved list
// @Tags         admin-lists
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "List ID"
// @Success      200 {object} map[string]string "{"message": "List deleted"}"
// @Failure      403 {object} ErrorResponse "Admin access required"
// @Failure      404 {object} ErrorResponse "List not found"
// @Router       /admin/lists/{id} [delete]
func DeleteGameList(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	result := database.DB.Delete(&models.GameList{}, id)
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "List not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "List deleted"})
}

// endregion
