package ingest

import (
	"fmt"
	"testing"
	"time"

	"gamedex/backend/internal/apperr"
	"gamedex/backend/internal/database"
	"gamedex/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestImporter(t *testing.T) (*Importer, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return NewImporter(db), db
}

func TestUpsertUSCreatesCanonicalGame(t *testing.T) {
	im, db := newTestImporter(t)

	require.NoError(t, im.UpsertUS(USSnapshot{
		CodeUnique: "AAAAA", Title: "Fresh", ReleaseDate: time.Now(),
	}))

	var game models.Game
	require.NoError(t, db.Preload("GameUS").
		Where("code_unique = ?", "AAAAA").First(&game).Error)
	require.NotNil(t, game.GameUS)
	assert.Equal(t, "Fresh", game.GameUS.Title)
}

func TestUpsertUSRefreshesExistingRecord(t *testing.T) {
	im, db := newTestImporter(t)

	require.NoError(t, im.UpsertUS(USSnapshot{CodeUnique: "AAAAA", Title: "Old title"}))
	require.NoError(t, im.UpsertUS(USSnapshot{CodeUnique: "AAAAA", Title: "New title"}))

	var records int64
	db.Model(&models.GameUS{}).Where("code_unique = ?", "AAAAA").Count(&records)
	assert.Equal(t, int64(1), records)

	var record models.GameUS
	require.NoError(t, db.Where("code_unique = ?", "AAAAA").First(&record).Error)
	assert.Equal(t, "New title", record.Title)

	var games int64
	db.Model(&models.Game{}).Where("code_unique = ?", "AAAAA").Count(&games)
	assert.Equal(t, int64(1), games)
}

func TestUpsertEUAttachesToExistingGame(t *testing.T) {
	im, db := newTestImporter(t)

	require.NoError(t, im.UpsertUS(USSnapshot{CodeUnique: "AAAAA", Title: "US side"}))
	require.NoError(t, im.UpsertEU(EUSnapshot{CodeUnique: "AAAAA", Title: "EU side"}))

	var games int64
	db.Model(&models.Game{}).Count(&games)
	assert.Equal(t, int64(1), games, "both regions must share one canonical game")

	var game models.Game
	require.NoError(t, db.Where("code_unique = ?", "AAAAA").First(&game).Error)
	assert.NotNil(t, game.GameUSID)
	assert.NotNil(t, game.GameEUID)
}

func TestUpsertRejectsBadCode(t *testing.T) {
	im, _ := newTestImporter(t)

	assert.ErrorIs(t, im.UpsertUS(USSnapshot{CodeUnique: "TOOLONG"}), apperr.ErrValidation)
	assert.ErrorIs(t, im.UpsertEU(EUSnapshot{CodeUnique: ""}), apperr.ErrValidation)
}

func TestUpsertPriceAndSaleLifecycle(t *testing.T) {
	im, db := newTestImporter(t)
	require.NoError(t, im.UpsertUS(USSnapshot{CodeUnique: "AAAAA", Title: "Priced"}))

	require.NoError(t, im.UpsertPrice("AAAAA", "US", "59.99", "USD", 59.99))
	require.NoError(t, im.UpsertPrice("AAAAA", "US", "49.99", "USD", 49.99))

	var prices []models.Price
	require.NoError(t, db.Where("country = ?", "US").Find(&prices).Error)
	require.Len(t, prices, 1)
	assert.Equal(t, 49.99, prices[0].RawValue)

	end := time.Now().Add(48 * time.Hour)
	require.NoError(t, im.UpsertSale("AAAAA", "US", "19.99", "USD", 19.99, nil, &end))

	var sales int64
	db.Model(&models.Sale{}).Count(&sales)
	assert.Equal(t, int64(1), sales)

	require.NoError(t, im.ClearSale("AAAAA", "US"))
	db.Model(&models.Sale{}).Count(&sales)
	assert.Zero(t, sales)
}

func TestUpsertPriceUnknownGame(t *testing.T) {
	im, _ := newTestImporter(t)
	assert.ErrorIs(t, im.UpsertPrice("ZZZZZ", "US", "10", "USD", 10), apperr.ErrNotFound)
}

func TestConfirmTagCreatesTagAndConfirmation(t *testing.T) {
	im, db := newTestImporter(t)
	require.NoError(t, im.UpsertUS(USSnapshot{CodeUnique: "AAAAA", Title: "Tagged"}))

	group := models.TagGroup{Name: "publisher", AllowVote: false}
	require.NoError(t, db.Create(&group).Error)

	require.NoError(t, im.ConfirmTag("nintendo", group.ID, "AAAAA"))
	// Re-running the crawl must not duplicate anything.
	require.NoError(t, im.ConfirmTag("nintendo", group.ID, "AAAAA"))

	var tags int64
	db.Model(&models.Tag{}).Where("name = ?", "nintendo").Count(&tags)
	assert.Equal(t, int64(1), tags)

	var confirmations int64
	db.Model(&models.ConfirmedTag{}).
		Where("confirmed_by = ?", models.SourceAuthority).Count(&confirmations)
	assert.Equal(t, int64(1), confirmations)
}
