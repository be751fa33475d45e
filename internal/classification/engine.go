// Package classification implements the vote-threshold confirmation
// engine: users vote on alike relations, tags and recommendations, and
// confirmations appear or disappear when vote counts cross the
// configured hysteresis bounds.
package classification

import (
	"errors"
	"fmt"

	"gamedex/backend/internal/apperr"
	"gamedex/backend/internal/models"

	"gorm.io/gorm"
)

// Bounds holds the hysteresis thresholds for one classification kind.
// A vote-sourced confirmation is created when the recounted score
// reaches Upper and removed when it drops to Lower or below; between
// the two, existing state is left untouched.
type Bounds struct {
	Upper int
	Lower int
}

// Config carries one bounds pair per classification kind.
type Config struct {
	Alike     Bounds
	Tag       Bounds
	Recommend Bounds
}

// Engine owns vote and confirmation state. All mutations run inside a
// single transaction together with the confirmation re-evaluation they
// trigger, so a mirrored alike write or a confirmation flip is never
// observable without its vote.
type Engine struct {
	db  *gorm.DB
	cfg Config
}

// NewEngine creates an engine over db with the given bounds.
func NewEngine(db *gorm.DB, cfg Config) *Engine {
	return &Engine{db: db, cfg: cfg}
}

func gameByCode(tx *gorm.DB, code string) (*models.Game, error) {
	var game models.Game
	if err := tx.Where("code_unique = ?", code).First(&game).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("game %q: %w", code, apperr.ErrNotFound)
		}
		return nil, err
	}
	return &game, nil
}

func tagByID(tx *gorm.DB, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := tx.Preload("TagGroup").First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("tag %d: %w", id, apperr.ErrNotFound)
		}
		return nil, err
	}
	return &tag, nil
}

// ensureRow creates the row matching cond unless it already exists.
// Safe to run redundantly: a concurrent insert losing the race is
// treated as success.
func ensureRow[T any](tx *gorm.DB, cond T) error {
	var row T
	err := tx.Where(&cond).FirstOrCreate(&row).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil
	}
	return err
}

// ensureNoRow deletes every row matching cond; deleting nothing is fine.
func ensureNoRow[T any](tx *gorm.DB, cond T) error {
	return tx.Where(&cond).Delete(new(T)).Error
}
