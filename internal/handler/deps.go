package handler

import (
	"errors"
	"net/http"

	"gamedex/backend/internal/apperr"
	"gamedex/backend/internal/catalog"
	"gamedex/backend/internal/classification"
	"gamedex/backend/internal/discovery"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var (
	engine   *classification.Engine
	index    *catalog.Index
	resolver *discovery.Resolver
)

// Init wires the services the handlers call. Must run before the
// router starts serving.
func Init(db *gorm.DB, cfg classification.Config) {
	engine = classification.NewEngine(db, cfg)
	index = catalog.NewIndex(db)
	resolver = discovery.NewResolver(db, index, nil)
}

// abortWithError translates service error kinds to HTTP statuses.
func abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

// currentUserID returns the authenticated user's ID, or nil for
// anonymous requests (routes behind OptionalAuthMiddleware).
func currentUserID(c *gin.Context) *uint {
	v, exists := c.Get("userID")
	if !exists {
		return nil
	}
	id, ok := v.(uint)
	if !ok {
		return nil
	}
	return &id
}

// requestCountry returns the viewer's reference country, defaulting to US.
func requestCountry(c *gin.Context) string {
	country := c.Query("country")
	if country == "" {
		return "US"
	}
	return country
}
