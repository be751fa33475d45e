package classification

import (
	"fmt"

	"gamedex/backend/internal/apperr"
	"gamedex/backend/internal/models"

	"gorm.io/gorm"
)

// CastAlikeVote records userID's vote that the two games are alike.
// Both directions are written in one transaction and the confirmation
// state of the pair is re-evaluated.
func (e *Engine) CastAlikeVote(game1Code, game2Code string, userID uint) error {
	if game1Code == game2Code {
		return fmt.Errorf("game cannot be alike to itself: %w", apperr.ErrValidation)
	}

	return e.db.Transaction(func(tx *gorm.DB) error {
		game1, err := gameByCode(tx, game1Code)
		if err != nil {
			return err
		}
		game2, err := gameByCode(tx, game2Code)
		if err != nil {
			return err
		}

		var count int64
		tx.Model(&models.AlikeVote{}).
			Where("game1_id = ? AND game2_id = ? AND user_id = ?", game1.ID, game2.ID, userID).
			Count(&count)
		if count > 0 {
			return fmt.Errorf("alike vote already cast: %w", apperr.ErrConflict)
		}

		forward := models.AlikeVote{Game1ID: game1.ID, Game2ID: game2.ID, UserID: userID}
		mirror := models.AlikeVote{Game1ID: game2.ID, Game2ID: game1.ID, UserID: userID}

		if err := tx.Create(&forward).Error; err != nil {
			return err
		}
		if err := tx.Create(&mirror).Error; err != nil {
			return fmt.Errorf("mirror vote (%s, %s): %v: %w",
				game2Code, game1Code, err, apperr.ErrPartialWrite)
		}

		return e.reevaluateAlike(tx, game1.ID, game2.ID)
	})
}

// RetractAlikeVote removes userID's alike vote and its mirror, then
// re-evaluates the pair's confirmation state.
func (e *Engine) RetractAlikeVote(game1Code, game2Code string, userID uint) error {
	return e.db.Transaction(func(tx *gorm.DB) error {
		game1, err := gameByCode(tx, game1Code)
		if err != nil {
			return err
		}
		game2, err := gameByCode(tx, game2Code)
		if err != nil {
			return err
		}

		res := tx.Where("game1_id = ? AND game2_id = ? AND user_id = ?",
			game1.ID, game2.ID, userID).
			Delete(&models.AlikeVote{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("alike vote: %w", apperr.ErrNotFound)
		}

		if err := tx.Where("game1_id = ? AND game2_id = ? AND user_id = ?",
			game2.ID, game1.ID, userID).
			Delete(&models.AlikeVote{}).Error; err != nil {
			return fmt.Errorf("mirror vote (%s, %s): %v: %w",
				game2Code, game1Code, err, apperr.ErrPartialWrite)
		}

		return e.reevaluateAlike(tx, game1.ID, game2.ID)
	})
}

// SetAlikeConfirmation adds a staff or authority confirmation for both
// directions of the pair. Idempotent.
func (e *Engine) SetAlikeConfirmation(game1ID, game2ID uint, source models.ConfirmationSource) error {
	if !source.Privileged() {
		return fmt.Errorf("source %q is not settable directly: %w", source, apperr.ErrValidation)
	}
	if game1ID == game2ID {
		return fmt.Errorf("game cannot be alike to itself: %w", apperr.ErrValidation)
	}

	return e.db.Transaction(func(tx *gorm.DB) error {
		for _, id := range []uint{game1ID, game2ID} {
			var count int64
			tx.Model(&models.Game{}).Where("id = ?", id).Count(&count)
			if count == 0 {
				return fmt.Errorf("game %d: %w", id, apperr.ErrNotFound)
			}
		}
		return ensureAlikePair(tx, game1ID, game2ID, source)
	})
}

// ClearAlikeConfirmation removes a staff or authority confirmation
// from both directions of the pair. Idempotent.
func (e *Engine) ClearAlikeConfirmation(game1ID, game2ID uint, source models.ConfirmationSource) error {
	if !source.Privileged() {
		return fmt.Errorf("source %q is not clearable directly: %w", source, apperr.ErrValidation)
	}

	return e.db.Transaction(func(tx *gorm.DB) error {
		return clearAlikePair(tx, game1ID, game2ID, source)
	})
}

func ensureAlikePair(tx *gorm.DB, game1ID, game2ID uint, source models.ConfirmationSource) error {
	if err := ensureRow(tx, models.ConfirmedAlike{
		Game1ID: game1ID, Game2ID: game2ID, ConfirmedBy: source,
	}); err != nil {
		return err
	}
	if err := ensureRow(tx, models.ConfirmedAlike{
		Game1ID: game2ID, Game2ID: game1ID, ConfirmedBy: source,
	}); err != nil {
		return fmt.Errorf("mirror confirmation: %v: %w", err, apperr.ErrPartialWrite)
	}
	return nil
}

func clearAlikePair(tx *gorm.DB, game1ID, game2ID uint, source models.ConfirmationSource) error {
	if err := ensureNoRow(tx, models.ConfirmedAlike{
		Game1ID: game1ID, Game2ID: game2ID, ConfirmedBy: source,
	}); err != nil {
		return err
	}
	if err := ensureNoRow(tx, models.ConfirmedAlike{
		Game1ID: game2ID, Game2ID: game1ID, ConfirmedBy: source,
	}); err != nil {
		return fmt.Errorf("mirror confirmation: %v: %w", err, apperr.ErrPartialWrite)
	}
	return nil
}

// reevaluateAlike recounts votes for the pair and applies the
// hysteresis rule to the vote-sourced confirmation of both directions.
// Always a full recount, so redundant runs converge.
func (e *Engine) reevaluateAlike(tx *gorm.DB, game1ID, game2ID uint) error {
	var votes int64
	if err := tx.Model(&models.AlikeVote{}).
		Where("game1_id = ? AND game2_id = ?", game1ID, game2ID).
		Count(&votes).Error; err != nil {
		return err
	}

	switch {
	case votes >= int64(e.cfg.Alike.Upper):
		return ensureAlikePair(tx, game1ID, game2ID, models.SourceVote)
	case votes <= int64(e.cfg.Alike.Lower):
		return clearAlikePair(tx, game1ID, game2ID, models.SourceVote)
	}
	return nil
}
