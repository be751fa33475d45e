package discovery

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"gamedex/backend/internal/catalog"
	"gamedex/backend/internal/database"
	"gamedex/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func newTestResolver(t *testing.T, seed int64) (*Resolver, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	ix := catalog.NewIndex(db)
	return NewResolver(db, ix, rand.New(rand.NewSource(seed))), db
}

func seedGame(t *testing.T, db *gorm.DB, code, title string, price float64) models.Game {
	t.Helper()
	eu := models.GameEU{
		CodeUnique:  code,
		Title:       title,
		ReleaseDate: time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(&eu).Error)
	game := models.Game{CodeUnique: code, GameEUID: &eu.ID}
	require.NoError(t, db.Create(&game).Error)
	require.NoError(t, db.Create(&models.Price{
		GameID: game.ID, Country: "US", RawValue: price, Currency: "USD",
	}).Error)
	return game
}

func createSlot(t *testing.T, db *gorm.DB, order int) models.ListSlot {
	t.Helper()
	slot := models.ListSlot{Order: order}
	require.NoError(t, db.Create(&slot).Error)
	return slot
}

func TestConvertPrice(t *testing.T) {
	assert.Equal(t, 250.0, ConvertPrice(10, "MX"))
	assert.Equal(t, 750.0, ConvertPrice(10, "RU"))
	assert.Equal(t, 125.0, ConvertPrice(10, "ZA"))
	assert.Equal(t, 10.0, ConvertPrice(10, "US"))
	assert.Equal(t, 10.0, ConvertPrice(10, "XX"))
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "$15.00", FormatPrice(15, "US"))
	assert.Equal(t, "15.00 €", FormatPrice(15, "DE"))
	assert.Equal(t, "R$ 15.00", FormatPrice(15, "BR"))
	assert.Equal(t, "£15.00", FormatPrice(15, "GB"))
	assert.Equal(t, "1125 RUB", FormatPrice(1125, "RU"))
	assert.Equal(t, "R187.50", FormatPrice(187.5, "ZA"))
	assert.Equal(t, "15.00", FormatPrice(15, "XX"))
}

func TestResolveExecutesSavedList(t *testing.T) {
	resolver, db := newTestResolver(t, 1)
	seedGame(t, db, "AAAAA", "Alpha", 20)
	seedGame(t, db, "BBBBB", "Beta", 60)

	slot := createSlot(t, db, 0)
	require.NoError(t, db.Create(&models.GameList{
		Title: "Cheap picks", QueryJSON: `{"price_to":30}`,
		Frequency: 1, SlotID: slot.ID,
	}).Error)

	sections, err := resolver.Resolve(nil, "US")
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, "Cheap picks", sections[0].Title)
	require.Len(t, sections[0].Games, 1)
	assert.Equal(t, "Alpha", sections[0].Games[0].Title)
}

func TestResolveTemplatesPriceIntoTitle(t *testing.T) {
	resolver, db := newTestResolver(t, 1)
	seedGame(t, db, "AAAAA", "Alpha", 100)

	slot := createSlot(t, db, 0)
	require.NoError(t, db.Create(&models.GameList{
		Title: "Under {{price_to}}", QueryJSON: `{"price_to":10}`,
		Frequency: 1, SlotID: slot.ID,
	}).Error)

	// The threshold converts into the viewer's currency before both the
	// query and the title rendering.
	sections, err := resolver.Resolve(nil, "MX")
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, "Under $250.00", sections[0].Title)
	require.Len(t, sections[0].Games, 1)
}

func TestResolveHidesLoggedOnlyListsFromAnonymous(t *testing.T) {
	resolver, db := newTestResolver(t, 1)
	seedGame(t, db, "AAAAA", "Alpha", 20)

	slot := createSlot(t, db, 0)
	require.NoError(t, db.Create(&models.GameList{
		Title: "For members", QueryJSON: `{}`,
		LoggedOnly: true, Frequency: 1, SlotID: slot.ID,
	}).Error)

	sections, err := resolver.Resolve(nil, "US")
	require.NoError(t, err)
	assert.Empty(t, sections)

	viewer := uint(1)
	sections, err = resolver.Resolve(&viewer, "US")
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, "For members", sections[0].Title)
}

func TestResolveSkipsBrokenListWithoutFailing(t *testing.T) {
	resolver, db := newTestResolver(t, 1)
	seedGame(t, db, "AAAAA", "Alpha", 20)

	broken := createSlot(t, db, 0)
	require.NoError(t, db.Create(&models.GameList{
		Title: "Broken", QueryJSON: `{"order_by":"-price"}`,
		Frequency: 1, SlotID: broken.ID,
	}).Error)

	healthy := createSlot(t, db, 1)
	require.NoError(t, db.Create(&models.GameList{
		Title: "Healthy", QueryJSON: `{}`,
		Frequency: 1, SlotID: healthy.ID,
	}).Error)

	sections, err := resolver.Resolve(nil, "US")
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, "Healthy", sections[0].Title)
}

func TestResolveFollowsSlotOrder(t *testing.T) {
	resolver, db := newTestResolver(t, 1)
	seedGame(t, db, "AAAAA", "Alpha", 20)

	second := createSlot(t, db, 2)
	first := createSlot(t, db, 1)
	require.NoError(t, db.Create(&models.GameList{
		Title: "Second", QueryJSON: `{}`, Frequency: 1, SlotID: second.ID,
	}).Error)
	require.NoError(t, db.Create(&models.GameList{
		Title: "First", QueryJSON: `{}`, Frequency: 1, SlotID: first.ID,
	}).Error)

	sections, err := resolver.Resolve(nil, "US")
	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Equal(t, "First", sections[0].Title)
	assert.Equal(t, "Second", sections[1].Title)
}

// Over many draws the weighted pick must track the configured
// frequencies; with weights 9:1 the heavy list should dominate.
func TestPickTracksFrequencies(t *testing.T) {
	resolver, db := newTestResolver(t, 42)
	seedGame(t, db, "AAAAA", "Alpha", 20)

	slot := createSlot(t, db, 0)
	require.NoError(t, db.Create(&models.GameList{
		Title: "Heavy", QueryJSON: `{}`, Frequency: 9, SlotID: slot.ID,
	}).Error)
	require.NoError(t, db.Create(&models.GameList{
		Title: "Light", QueryJSON: `{}`, Frequency: 1, SlotID: slot.ID,
	}).Error)

	counts := map[string]int{}
	for i := 0; i < 500; i++ {
		sections, err := resolver.Resolve(nil, "US")
		require.NoError(t, err)
		require.Len(t, sections, 1)
		counts[sections[0].Title]++
	}

	assert.Greater(t, counts["Heavy"], 350)
	assert.Greater(t, counts["Light"], 0)
	assert.Equal(t, 500, counts["Heavy"]+counts["Light"])
}

func TestResolveSkipsEmptySlots(t *testing.T) {
	resolver, db := newTestResolver(t, 1)
	seedGame(t, db, "AAAAA", "Alpha", 20)

	createSlot(t, db, 0) // no lists at all

	sections, err := resolver.Resolve(nil, "US")
	require.NoError(t, err)
	assert.Empty(t, sections)
}
