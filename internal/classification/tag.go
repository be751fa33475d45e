package classification

import (
	"fmt"

	"gamedex/backend/internal/apperr"
	"gamedex/backend/internal/models"

	"gorm.io/gorm"
)

// CastTagVote records userID's vote that the tag describes the game.
// Voting is rejected when the tag's group disallows it.
func (e *Engine) CastTagVote(tagID uint, gameCode string, userID uint) error {
	return e.db.Transaction(func(tx *gorm.DB) error {
		game, err := gameByCode(tx, gameCode)
		if err != nil {
			return err
		}
		tag, err := tagByID(tx, tagID)
		if err != nil {
			return err
		}
		if !tag.TagGroup.AllowVote {
			return fmt.Errorf("tag group %q does not allow voting: %w",
				tag.TagGroup.Name, apperr.ErrValidation)
		}

		var count int64
		tx.Model(&models.TagVote{}).
			Where("tag_id = ? AND game_id = ? AND user_id = ?", tag.ID, game.ID, userID).
			Count(&count)
		if count > 0 {
			return fmt.Errorf("tag vote already cast: %w", apperr.ErrConflict)
		}

		vote := models.TagVote{TagID: tag.ID, GameID: game.ID, UserID: userID}
		if err := tx.Create(&vote).Error; err != nil {
			return err
		}

		return e.reevaluateTag(tx, tag.ID, game.ID)
	})
}

// RetractTagVote removes userID's tag vote and re-evaluates the
// subject's confirmation state.
func (e *Engine) RetractTagVote(tagID uint, gameCode string, userID uint) error {
	return e.db.Transaction(func(tx *gorm.DB) error {
		game, err := gameByCode(tx, gameCode)
		if err != nil {
			return err
		}

		res := tx.Where("tag_id = ? AND game_id = ? AND user_id = ?",
			tagID, game.ID, userID).
			Delete(&models.TagVote{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("tag vote: %w", apperr.ErrNotFound)
		}

		return e.reevaluateTag(tx, tagID, game.ID)
	})
}

// SetTagConfirmation adds a staff or authority confirmation for the
// (game, tag) subject. Idempotent.
func (e *Engine) SetTagConfirmation(tagID, gameID uint, source models.ConfirmationSource) error {
	if !source.Privileged() {
		return fmt.Errorf("source %q is not settable directly: %w", source, apperr.ErrValidation)
	}

	return e.db.Transaction(func(tx *gorm.DB) error {
		if _, err := tagByID(tx, tagID); err != nil {
			return err
		}
		var count int64
		tx.Model(&models.Game{}).Where("id = ?", gameID).Count(&count)
		if count == 0 {
			return fmt.Errorf("game %d: %w", gameID, apperr.ErrNotFound)
		}

		return ensureRow(tx, models.ConfirmedTag{
			TagID: tagID, GameID: gameID, ConfirmedBy: source,
		})
	})
}

// ClearTagConfirmation removes a staff or authority confirmation from
// the (game, tag) subject. Idempotent.
func (e *Engine) ClearTagConfirmation(tagID, gameID uint, source models.ConfirmationSource) error {
	if !source.Privileged() {
		return fmt.Errorf("source %q is not clearable directly: %w", source, apperr.ErrValidation)
	}

	return e.db.Transaction(func(tx *gorm.DB) error {
		return ensureNoRow(tx, models.ConfirmedTag{
			TagID: tagID, GameID: gameID, ConfirmedBy: source,
		})
	})
}

// MergeTags moves every vote and confirmation from the losing tag to
// the surviving one and deletes the loser. A move that would collide
// with an existing row for the survivor drops the incoming row instead
// of failing. The whole merge is one transaction.
func (e *Engine) MergeTags(survivorID, loserID uint) error {
	if survivorID == loserID {
		return fmt.Errorf("cannot merge a tag into itself: %w", apperr.ErrValidation)
	}

	return e.db.Transaction(func(tx *gorm.DB) error {
		if _, err := tagByID(tx, survivorID); err != nil {
			return err
		}
		if _, err := tagByID(tx, loserID); err != nil {
			return err
		}

		var votes []models.TagVote
		if err := tx.Where("tag_id = ?", loserID).Find(&votes).Error; err != nil {
			return err
		}
		for _, vote := range votes {
			var count int64
			tx.Model(&models.TagVote{}).
				Where("tag_id = ? AND game_id = ? AND user_id = ?",
					survivorID, vote.GameID, vote.UserID).
				Count(&count)

			if count > 0 {
				if err := tx.Delete(&models.TagVote{}, vote.ID).Error; err != nil {
					return err
				}
				continue
			}
			if err := tx.Model(&models.TagVote{}).Where("id = ?", vote.ID).
				Update("tag_id", survivorID).Error; err != nil {
				return err
			}
		}

		var confirmations []models.ConfirmedTag
		if err := tx.Where("tag_id = ?", loserID).Find(&confirmations).Error; err != nil {
			return err
		}
		for _, conf := range confirmations {
			var count int64
			tx.Model(&models.ConfirmedTag{}).
				Where("tag_id = ? AND game_id = ? AND confirmed_by = ?",
					survivorID, conf.GameID, conf.ConfirmedBy).
				Count(&count)

			if count > 0 {
				if err := tx.Delete(&models.ConfirmedTag{}, conf.ID).Error; err != nil {
					return err
				}
				continue
			}
			if err := tx.Model(&models.ConfirmedTag{}).Where("id = ?", conf.ID).
				Update("tag_id", survivorID).Error; err != nil {
				return err
			}
		}

		// Hard delete so the name can be reused by a future tag.
		return tx.Unscoped().Delete(&models.Tag{}, loserID).Error
	})
}

// reevaluateTag recounts votes for the (game, tag) subject and applies
// the hysteresis rule to its vote-sourced confirmation.
func (e *Engine) reevaluateTag(tx *gorm.DB, tagID, gameID uint) error {
	var votes int64
	if err := tx.Model(&models.TagVote{}).
		Where("tag_id = ? AND game_id = ?", tagID, gameID).
		Count(&votes).Error; err != nil {
		return err
	}

	switch {
	case votes >= int64(e.cfg.Tag.Upper):
		return ensureRow(tx, models.ConfirmedTag{
			TagID: tagID, GameID: gameID, ConfirmedBy: models.SourceVote,
		})
	case votes <= int64(e.cfg.Tag.Lower):
		return ensureNoRow(tx, models.ConfirmedTag{
			TagID: tagID, GameID: gameID, ConfirmedBy: models.SourceVote,
		})
	}
	return nil
}
