package classification

import (
	"fmt"

	"gamedex/backend/internal/apperr"
	"gamedex/backend/internal/models"

	"gorm.io/gorm"
)

// CastRecommendation records userID's like or dislike of the game.
// The game disappears from the voter's wishlist and the highlight
// state is re-evaluated, all in one transaction. Changing an existing
// recommendation requires retracting it first.
func (e *Engine) CastRecommendation(gameCode string, userID uint, recommends bool) error {
	return e.db.Transaction(func(tx *gorm.DB) error {
		game, err := gameByCode(tx, gameCode)
		if err != nil {
			return err
		}

		var count int64
		tx.Model(&models.Recommendation{}).
			Where("game_id = ? AND user_id = ?", game.ID, userID).
			Count(&count)
		if count > 0 {
			return fmt.Errorf("recommendation already cast: %w", apperr.ErrConflict)
		}

		rec := models.Recommendation{GameID: game.ID, UserID: userID, Recommends: recommends}
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}

		// Rating a game resolves the wish for it.
		if err := tx.Where("game_id = ? AND user_id = ?", game.ID, userID).
			Delete(&models.Wishlist{}).Error; err != nil {
			return err
		}

		return e.reevaluateHighlight(tx, game.ID)
	})
}

// RetractRecommendation removes userID's recommendation and
// re-evaluates the game's highlight state.
func (e *Engine) RetractRecommendation(gameCode string, userID uint) error {
	return e.db.Transaction(func(tx *gorm.DB) error {
		game, err := gameByCode(tx, gameCode)
		if err != nil {
			return err
		}

		res := tx.Where("game_id = ? AND user_id = ?", game.ID, userID).
			Delete(&models.Recommendation{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("recommendation: %w", apperr.ErrNotFound)
		}

		return e.reevaluateHighlight(tx, game.ID)
	})
}

// SetHighlightConfirmation adds a staff or authority highlight for the
// game. Idempotent.
func (e *Engine) SetHighlightConfirmation(gameID uint, source models.ConfirmationSource) error {
	if !source.Privileged() {
		return fmt.Errorf("source %q is not settable directly: %w", source, apperr.ErrValidation)
	}

	return e.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		tx.Model(&models.Game{}).Where("id = ?", gameID).Count(&count)
		if count == 0 {
			return fmt.Errorf("game %d: %w", gameID, apperr.ErrNotFound)
		}

		return ensureRow(tx, models.ConfirmedHighlight{
			GameID: gameID, ConfirmedBy: source,
		})
	})
}

// ClearHighlightConfirmation removes a staff or authority highlight
// from the game. Idempotent.
func (e *Engine) ClearHighlightConfirmation(gameID uint, source models.ConfirmationSource) error {
	if !source.Privileged() {
		return fmt.Errorf("source %q is not clearable directly: %w", source, apperr.ErrValidation)
	}

	return e.db.Transaction(func(tx *gorm.DB) error {
		return ensureNoRow(tx, models.ConfirmedHighlight{
			GameID: gameID, ConfirmedBy: source,
		})
	})
}

// reevaluateHighlight recomputes the game's net score (likes minus
// dislikes) from stored recommendations and applies the hysteresis
// rule to its vote-sourced highlight.
func (e *Engine) reevaluateHighlight(tx *gorm.DB, gameID uint) error {
	var likes, dislikes int64
	if err := tx.Model(&models.Recommendation{}).
		Where("game_id = ? AND recommends = ?", gameID, true).
		Count(&likes).Error; err != nil {
		return err
	}
	if err := tx.Model(&models.Recommendation{}).
		Where("game_id = ? AND recommends = ?", gameID, false).
		Count(&dislikes).Error; err != nil {
		return err
	}

	delta := likes - dislikes

	switch {
	case delta >= int64(e.cfg.Recommend.Upper):
		return ensureRow(tx, models.ConfirmedHighlight{
			GameID: gameID, ConfirmedBy: models.SourceVote,
		})
	case delta <= int64(e.cfg.Recommend.Lower):
		return ensureNoRow(tx, models.ConfirmedHighlight{
			GameID: gameID, ConfirmedBy: models.SourceVote,
		})
	}
	return nil
}
