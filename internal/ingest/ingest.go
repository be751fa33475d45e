// Package ingest is the write-through surface for the external catalog
// crawler: per-region attribute snapshots keyed by the 5-character
// game code, per-country price and sale snapshots, and
// authority-sourced tag confirmations. Scheduling stays outside.
package ingest

import (
	"errors"
	"fmt"
	"time"

	"gamedex/backend/internal/apperr"
	"gamedex/backend/internal/models"

	"gorm.io/gorm"
)

// Importer applies crawler snapshots to the catalog.
type Importer struct {
	db *gorm.DB
}

// NewImporter creates an importer over db.
func NewImporter(db *gorm.DB) *Importer {
	return &Importer{db: db}
}

// USSnapshot is one crawled US-store record.
type USSnapshot struct {
	CodeUnique  string
	CodeSystem  string
	CodeRegion  string
	NSUID       string
	Title       string
	Slug        string
	ReleaseDate time.Time
	FrontBoxArt string
	VideoLink   string
}

// EUSnapshot is one crawled EU-store record.
type EUSnapshot struct {
	CodeUnique   string
	CodeSystem   string
	CodeRegion   string
	NSUID        string
	FSID         string
	Title        string
	URL          string
	ReleaseDate  time.Time
	Description  string
	ImageURL     string
	ImageSqURL   string
	ImageSqH2URL string
}

// UpsertUS creates or refreshes the US record for the snapshot's code
// and makes sure a canonical game row points at it.
func (im *Importer) UpsertUS(snap USSnapshot) error {
	if len(snap.CodeUnique) != 5 {
		return fmt.Errorf("bad game code %q: %w", snap.CodeUnique, apperr.ErrValidation)
	}

	return im.db.Transaction(func(tx *gorm.DB) error {
		var record models.GameUS
		err := tx.Where("code_unique = ?", snap.CodeUnique).First(&record).Error
		switch {
		case err == nil:
		case errors.Is(err, gorm.ErrRecordNotFound):
			record = models.GameUS{CodeUnique: snap.CodeUnique}
		default:
			return err
		}

		record.CodeSystem = snap.CodeSystem
		record.CodeRegion = snap.CodeRegion
		record.NSUID = snap.NSUID
		record.Title = snap.Title
		record.Slug = snap.Slug
		record.ReleaseDate = snap.ReleaseDate
		record.FrontBoxArt = snap.FrontBoxArt
		record.VideoLink = snap.VideoLink
		if err := tx.Save(&record).Error; err != nil {
			return err
		}

		return linkGame(tx, snap.CodeUnique, "game_us_id", record.ID)
	})
}

// UpsertEU creates or refreshes the EU record for the snapshot's code
// and makes sure a canonical game row points at it.
func (im *Importer) UpsertEU(snap EUSnapshot) error {
	if len(snap.CodeUnique) != 5 {
		return fmt.Errorf("bad game code %q: %w", snap.CodeUnique, apperr.ErrValidation)
	}

	return im.db.Transaction(func(tx *gorm.DB) error {
		var record models.GameEU
		err := tx.Where("code_unique = ?", snap.CodeUnique).First(&record).Error
		switch {
		case err == nil:
		case errors.Is(err, gorm.ErrRecordNotFound):
			record = models.GameEU{CodeUnique: snap.CodeUnique}
		default:
			return err
		}

		record.CodeSystem = snap.CodeSystem
		record.CodeRegion = snap.CodeRegion
		record.NSUID = snap.NSUID
		record.FSID = snap.FSID
		record.Title = snap.Title
		record.URL = snap.URL
		record.ReleaseDate = snap.ReleaseDate
		record.Description = snap.Description
		record.ImageURL = snap.ImageURL
		record.ImageSqURL = snap.ImageSqURL
		record.ImageSqH2URL = snap.ImageSqH2URL
		if err := tx.Save(&record).Error; err != nil {
			return err
		}

		return linkGame(tx, snap.CodeUnique, "game_eu_id", record.ID)
	})
}

// linkGame points the canonical game for code at the region record,
// creating the game when the code is new.
func linkGame(tx *gorm.DB, code, column string, recordID uint) error {
	var game models.Game
	err := tx.Where("code_unique = ?", code).First(&game).Error
	switch {
	case err == nil:
		return tx.Model(&game).Update(column, recordID).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		game = models.Game{CodeUnique: code}
		if err := tx.Create(&game).Error; err != nil {
			return err
		}
		return tx.Model(&game).Update(column, recordID).Error
	default:
		return err
	}
}

// UpsertPrice replaces the base price of the game in one country.
func (im *Importer) UpsertPrice(gameCode, country, amount, currency string, rawValue float64) error {
	return im.db.Transaction(func(tx *gorm.DB) error {
		game, err := findGame(tx, gameCode)
		if err != nil {
			return err
		}

		var price models.Price
		err = tx.Where("game_id = ? AND country = ?", game.ID, country).First(&price).Error
		switch {
		case err == nil:
		case errors.Is(err, gorm.ErrRecordNotFound):
			price = models.Price{GameID: game.ID, Country: country}
		default:
			return err
		}

		price.Amount = amount
		price.Currency = currency
		price.RawValue = rawValue
		return tx.Save(&price).Error
	})
}

// UpsertSale replaces the active sale of the game in one country.
func (im *Importer) UpsertSale(gameCode, country, amount, currency string, rawValue float64, startAt, endAt *time.Time) error {
	return im.db.Transaction(func(tx *gorm.DB) error {
		game, err := findGame(tx, gameCode)
		if err != nil {
			return err
		}

		var sale models.Sale
		err = tx.Where("game_id = ? AND country = ?", game.ID, country).First(&sale).Error
		switch {
		case err == nil:
		case errors.Is(err, gorm.ErrRecordNotFound):
			sale = models.Sale{GameID: game.ID, Country: country}
		default:
			return err
		}

		sale.Amount = amount
		sale.Currency = currency
		sale.RawValue = rawValue
		sale.StartAt = startAt
		sale.EndAt = endAt
		return tx.Save(&sale).Error
	})
}

// ClearSale removes an ended sale.
func (im *Importer) ClearSale(gameCode, country string) error {
	return im.db.Transaction(func(tx *gorm.DB) error {
		game, err := findGame(tx, gameCode)
		if err != nil {
			return err
		}
		return tx.Where("game_id = ? AND country = ?", game.ID, country).
			Delete(&models.Sale{}).Error
	})
}

// ConfirmTag records an authority tag confirmation from crawled
// attributes, creating the tag in the group when it is new.
func (im *Importer) ConfirmTag(tagName string, groupID uint, gameCode string) error {
	return im.db.Transaction(func(tx *gorm.DB) error {
		game, err := findGame(tx, gameCode)
		if err != nil {
			return err
		}

		var tag models.Tag
		err = tx.Where("name = ? AND tag_group_id = ?", tagName, groupID).First(&tag).Error
		switch {
		case err == nil:
		case errors.Is(err, gorm.ErrRecordNotFound):
			tag = models.Tag{Name: tagName, TagGroupID: groupID}
			if err := tx.Create(&tag).Error; err != nil {
				return err
			}
		default:
			return err
		}

		var conf models.ConfirmedTag
		return tx.Where(&models.ConfirmedTag{
			TagID:       tag.ID,
			GameID:      game.ID,
			ConfirmedBy: models.SourceAuthority,
		}).FirstOrCreate(&conf).Error
	})
}

func findGame(tx *gorm.DB, code string) (*models.Game, error) {
	var game models.Game
	if err := tx.Where("code_unique = ?", code).First(&game).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("game %q: %w", code, apperr.ErrNotFound)
		}
		return nil, err
	}
	return &game, nil
}
