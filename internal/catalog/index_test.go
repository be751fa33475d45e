package catalog

import (
	"testing"
	"time"

	"gamedex/backend/internal/apperr"
	"gamedex/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedGame(t *testing.T, db *gorm.DB, code, title string) models.Game {
	t.Helper()
	eu := models.GameEU{
		CodeUnique:  code,
		Title:       title,
		URL:         "/games/" + code,
		Description: "about " + title,
		ReleaseDate: time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(&eu).Error)
	game := models.Game{CodeUnique: code, GameEUID: &eu.ID}
	require.NoError(t, db.Create(&game).Error)
	return game
}

func TestSummariesSkipsHiddenGames(t *testing.T) {
	db := newTestDB(t)
	ix := NewIndex(db)

	seedGame(t, db, "AAAAA", "Visible")
	hidden := seedGame(t, db, "BBBBB", "Hidden")
	require.NoError(t, db.Model(&hidden).Update("hide", true).Error)

	summaries, err := ix.Summaries("US", nil)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "Visible", summaries[0].Title)
}

func TestSummariesDerivesPrices(t *testing.T) {
	db := newTestDB(t)
	ix := NewIndex(db)
	game := seedGame(t, db, "AAAAA", "Priced")

	require.NoError(t, db.Create(&models.Price{
		GameID: game.ID, Country: "US", RawValue: 60, Currency: "USD",
	}).Error)
	require.NoError(t, db.Create(&models.Sale{
		GameID: game.ID, Country: "US", RawValue: 15, Currency: "USD",
	}).Error)
	// A price in another country must not leak in.
	require.NoError(t, db.Create(&models.Price{
		GameID: game.ID, Country: "GB", RawValue: 50, Currency: "GBP",
	}).Error)

	summaries, err := ix.Summaries("US", nil)
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	s := summaries[0]
	require.NotNil(t, s.CurrentPrice)
	assert.Equal(t, float64(15), *s.CurrentPrice)
	require.NotNil(t, s.DiscountPercent)
	assert.InDelta(t, 0.75, *s.DiscountPercent, 1e-9)
}

func TestSummariesDeduplicatesTagSources(t *testing.T) {
	db := newTestDB(t)
	ix := NewIndex(db)
	game := seedGame(t, db, "AAAAA", "Tagged")

	group := models.TagGroup{Name: "genre"}
	require.NoError(t, db.Create(&group).Error)
	tag := models.Tag{Name: "platformer", TagGroupID: group.ID}
	require.NoError(t, db.Create(&tag).Error)

	// Confirmed by vote threshold and by staff: one tag in the view.
	require.NoError(t, db.Create(&models.ConfirmedTag{
		TagID: tag.ID, GameID: game.ID, ConfirmedBy: models.SourceVote,
	}).Error)
	require.NoError(t, db.Create(&models.ConfirmedTag{
		TagID: tag.ID, GameID: game.ID, ConfirmedBy: models.SourceStaff,
	}).Error)

	summaries, err := ix.Summaries("US", nil)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, []string{"platformer"}, summaries[0].Tags)
}

func TestSummariesViewerColumns(t *testing.T) {
	db := newTestDB(t)
	ix := NewIndex(db)
	game := seedGame(t, db, "AAAAA", "Mine")

	rec := models.Recommendation{GameID: game.ID, UserID: 7, Recommends: true}
	require.NoError(t, db.Create(&rec).Error)
	require.NoError(t, db.Create(&models.Wishlist{GameID: game.ID, UserID: 7}).Error)

	viewer := uint(7)
	summaries, err := ix.Summaries("US", &viewer)
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	s := summaries[0]
	require.NotNil(t, s.Recommends)
	assert.True(t, *s.Recommends)
	assert.True(t, s.HasWish)
	assert.False(t, s.HasReview)

	// Anonymous view leaves the viewer columns unset.
	summaries, err = ix.Summaries("US", nil)
	require.NoError(t, err)
	assert.Nil(t, summaries[0].Recommends)
	assert.False(t, summaries[0].HasWish)
}

func TestGetIncludesDescriptionAndLinks(t *testing.T) {
	db := newTestDB(t)
	ix := NewIndex(db)
	seedGame(t, db, "AAAAA", "Detailed")

	s, err := ix.Get("AAAAA", "US", nil)
	require.NoError(t, err)
	assert.Equal(t, "about Detailed", s.Description)
	assert.Equal(t, "/games/AAAAA", s.LinkEU)

	_, err = ix.Get("ZZZZZ", "US", nil)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAlikeOrdersByVoteCount(t *testing.T) {
	db := newTestDB(t)
	ix := NewIndex(db)
	base := seedGame(t, db, "AAAAA", "Base")
	weak := seedGame(t, db, "BBBBB", "Weak")
	strong := seedGame(t, db, "CCCCC", "Strong")

	for _, id := range []uint{weak.ID, strong.ID} {
		require.NoError(t, db.Create(&models.ConfirmedAlike{
			Game1ID: base.ID, Game2ID: id, ConfirmedBy: models.SourceStaff,
		}).Error)
	}
	for user := uint(1); user <= 3; user++ {
		require.NoError(t, db.Create(&models.AlikeVote{
			Game1ID: base.ID, Game2ID: strong.ID, UserID: user,
		}).Error)
	}
	require.NoError(t, db.Create(&models.AlikeVote{
		Game1ID: base.ID, Game2ID: weak.ID, UserID: 1,
	}).Error)

	alike, err := ix.Alike("AAAAA", "US", nil)
	require.NoError(t, err)
	require.Len(t, alike, 2)
	assert.Equal(t, "Strong", alike[0].Title)
	assert.Equal(t, "Weak", alike[1].Title)
}
