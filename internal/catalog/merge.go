package catalog

import (
	"errors"
	"fmt"

	"gamedex/backend/internal/apperr"
	"gamedex/backend/internal/models"

	"gorm.io/gorm"
)

// MergeGames folds the game dropID into keepID: the missing region
// record moves over, and prices, sales, reviews, recommendations, tag
// votes, confirmed tags and ordered media are reassigned. Media order
// values are offset by the survivor's media count so positions never
// collide. A reassignment that would collide with an existing row for
// the survivor is discarded. Everything runs in one transaction and
// the losing game is deleted only after all reassignment completes.
func (ix *Index) MergeGames(keepID, dropID uint) error {
	if keepID == dropID {
		return fmt.Errorf("cannot merge a game into itself: %w", apperr.ErrValidation)
	}

	return ix.db.Transaction(func(tx *gorm.DB) error {
		keep, err := loadGame(tx, keepID)
		if err != nil {
			return err
		}
		drop, err := loadGame(tx, dropID)
		if err != nil {
			return err
		}

		// A game already backed by both regions has nothing to gain,
		// and merging it would have to discard a region record.
		if (keep.GameUSID != nil && keep.GameEUID != nil) ||
			(drop.GameUSID != nil && drop.GameEUID != nil) {
			return fmt.Errorf("merge with a complete game is ambiguous: %w", apperr.ErrConflict)
		}

		var region map[string]interface{}
		switch {
		case keep.GameUSID == nil && drop.GameUSID != nil:
			region = map[string]interface{}{"game_us_id": *drop.GameUSID}
		case keep.GameEUID == nil && drop.GameEUID != nil:
			region = map[string]interface{}{"game_eu_id": *drop.GameEUID}
		default:
			return fmt.Errorf("games do not supply disjoint regions: %w", apperr.ErrConflict)
		}

		if err := ix.reassignDependents(tx, keep.ID, drop.ID); err != nil {
			return err
		}

		// Release the region pointer before the survivor claims it;
		// both carry a unique index.
		if err := tx.Model(&models.Game{}).Where("id = ?", drop.ID).
			Updates(map[string]interface{}{"game_us_id": nil, "game_eu_id": nil}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Delete(&models.Game{}, drop.ID).Error; err != nil {
			return err
		}
		return tx.Model(&models.Game{}).Where("id = ?", keep.ID).
			Updates(region).Error
	})
}

func loadGame(tx *gorm.DB, id uint) (*models.Game, error) {
	var game models.Game
	if err := tx.First(&game, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("game %d: %w", id, apperr.ErrNotFound)
		}
		return nil, err
	}
	return &game, nil
}

func (ix *Index) reassignDependents(tx *gorm.DB, keepID, dropID uint) error {
	// Media first: offset order values by the survivor's media count
	// so the drop's assets queue up after the survivor's.
	var keepMediaCount int64
	if err := tx.Model(&models.Media{}).Where("game_id = ?", keepID).
		Count(&keepMediaCount).Error; err != nil {
		return err
	}
	var media []models.Media
	if err := tx.Where("game_id = ?", dropID).Find(&media).Error; err != nil {
		return err
	}
	for _, m := range media {
		if err := tx.Model(&models.Media{}).Where("id = ?", m.ID).
			Updates(map[string]interface{}{
				"game_id": keepID,
				"order":   m.Order + int(keepMediaCount),
			}).Error; err != nil {
			return err
		}
	}

	// Per-user rows: unique on (game, user); collisions keep the
	// survivor's row.
	if err := moveRows[models.Review](tx, keepID, dropID, "user_id"); err != nil {
		return err
	}
	if err := moveRows[models.Recommendation](tx, keepID, dropID, "user_id"); err != nil {
		return err
	}
	if err := moveRows[models.Wishlist](tx, keepID, dropID, "user_id"); err != nil {
		return err
	}

	// Tag votes unique on (tag, game, user); confirmed tags unique on
	// (tag, game, source).
	if err := moveRows[models.TagVote](tx, keepID, dropID, "tag_id", "user_id"); err != nil {
		return err
	}
	if err := moveRows[models.ConfirmedTag](tx, keepID, dropID, "tag_id", "confirmed_by"); err != nil {
		return err
	}

	// Prices and sales unique on (game, country).
	if err := moveRows[models.Price](tx, keepID, dropID, "country"); err != nil {
		return err
	}
	return moveRows[models.Sale](tx, keepID, dropID, "country")
}

// moveRows repoints every row of T from dropID to keepID. keyCols name
// the uniqueness columns besides game_id; an incoming row whose key
// already exists for keepID is discarded in favor of the existing one.
func moveRows[T any](tx *gorm.DB, keepID, dropID uint, keyCols ...string) error {
	var rows []map[string]interface{}
	if err := tx.Model(new(T)).Where("game_id = ?", dropID).
		Find(&rows).Error; err != nil {
		return err
	}

	for _, row := range rows {
		dup := tx.Model(new(T)).Where("game_id = ?", keepID)
		for _, col := range keyCols {
			dup = dup.Where(fmt.Sprintf("%s = ?", col), row[col])
		}
		var count int64
		if err := dup.Count(&count).Error; err != nil {
			return err
		}

		if count > 0 {
			if err := tx.Unscoped().Where("id = ?", row["id"]).
				Delete(new(T)).Error; err != nil {
				return err
			}
			continue
		}
		if err := tx.Model(new(T)).Where("id = ?", row["id"]).
			Update("game_id", keepID).Error; err != nil {
			return err
		}
	}
	return nil
}
