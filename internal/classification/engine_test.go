package classification

import (
	"fmt"
	"testing"

	"gamedex/backend/internal/apperr"
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

func newTestEngine(t *testing.T) (*Engine, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	engine := NewEngine(db, Config{
		Alike:     Bounds{Upper: 10, Lower: 3},
		Tag:       Bounds{Upper: 10, Lower: 3},
		Recommend: Bounds{Upper: 10, Lower: 3},
	})
	return engine, db
}

func createGame(t *testing.T, db *gorm.DB, code string) models.Game {
	t.Helper()
	game := models.Game{CodeUnique: code}
	require.NoError(t, db.Create(&game).Error)
	return game
}

func countAlikeConfirmations(db *gorm.DB, game1ID, game2ID uint, source models.ConfirmationSource) int64 {
	var n int64
	db.Model(&models.ConfirmedAlike{}).
		Where("game1_id = ? AND game2_id = ? AND confirmed_by = ?", game1ID, game2ID, source).
		Count(&n)
	return n
}

func TestCastAlikeVoteWritesBothDirections(t *testing.T) {
	engine, db := newTestEngine(t)
	g1 := createGame(t, db, "AAAAA")
	g2 := createGame(t, db, "BBBBB")

	require.NoError(t, engine.CastAlikeVote("AAAAA", "BBBBB", 1))

	var forward, mirror int64
	db.Model(&models.AlikeVote{}).
		Where("game1_id = ? AND game2_id = ?", g1.ID, g2.ID).Count(&forward)
	db.Model(&models.AlikeVote{}).
		Where("game1_id = ? AND game2_id = ?", g2.ID, g1.ID).Count(&mirror)
	assert.Equal(t, int64(1), forward)
	assert.Equal(t, int64(1), mirror)
}

func TestCastAlikeVoteRejectsSelf(t *testing.T) {
	engine, db := newTestEngine(t)
	createGame(t, db, "AAAAA")

	err := engine.CastAlikeVote("AAAAA", "AAAAA", 1)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCastAlikeVoteRejectsDuplicate(t *testing.T) {
	engine, db := newTestEngine(t)
	createGame(t, db, "AAAAA")
	createGame(t, db, "BBBBB")

	require.NoError(t, engine.CastAlikeVote("AAAAA", "BBBBB", 1))
	err := engine.CastAlikeVote("AAAAA", "BBBBB", 1)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestCastAlikeVoteUnknownGame(t *testing.T) {
	engine, db := newTestEngine(t)
	createGame(t, db, "AAAAA")

	err := engine.CastAlikeVote("AAAAA", "ZZZZZ", 1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRetractAlikeVoteWithoutVote(t *testing.T) {
	engine, db := newTestEngine(t)
	createGame(t, db, "AAAAA")
	createGame(t, db, "BBBBB")

	err := engine.RetractAlikeVote("AAAAA", "BBBBB", 1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

// The confirmation must appear at the upper bound, survive while the
// count stays above the lower bound, and disappear once it drops to it.
func TestAlikeConfirmationHysteresis(t *testing.T) {
	engine, db := newTestEngine(t)
	g1 := createGame(t, db, "AAAAA")
	g2 := createGame(t, db, "BBBBB")

	for user := uint(1); user <= 9; user++ {
		require.NoError(t, engine.CastAlikeVote("AAAAA", "BBBBB", user))
	}
	assert.Zero(t, countAlikeConfirmations(db, g1.ID, g2.ID, models.SourceVote))

	require.NoError(t, engine.CastAlikeVote("AAAAA", "BBBBB", 10))
	assert.Equal(t, int64(1), countAlikeConfirmations(db, g1.ID, g2.ID, models.SourceVote))
	assert.Equal(t, int64(1), countAlikeConfirmations(db, g2.ID, g1.ID, models.SourceVote))

	// Dropping below the upper bound keeps the confirmation.
	for user := uint(10); user >= 5; user-- {
		require.NoError(t, engine.RetractAlikeVote("AAAAA", "BBBBB", user))
	}
	assert.Equal(t, int64(1), countAlikeConfirmations(db, g1.ID, g2.ID, models.SourceVote))

	// Reaching the lower bound clears it, in both directions.
	require.NoError(t, engine.RetractAlikeVote("AAAAA", "BBBBB", 4))
	assert.Zero(t, countAlikeConfirmations(db, g1.ID, g2.ID, models.SourceVote))
	assert.Zero(t, countAlikeConfirmations(db, g2.ID, g1.ID, models.SourceVote))
}

func TestStaffAlikeConfirmationIndependentOfVotes(t *testing.T) {
	engine, db := newTestEngine(t)
	g1 := createGame(t, db, "AAAAA")
	g2 := createGame(t, db, "BBBBB")

	require.NoError(t, engine.SetAlikeConfirmation(g1.ID, g2.ID, models.SourceStaff))
	assert.Equal(t, int64(1), countAlikeConfirmations(db, g1.ID, g2.ID, models.SourceStaff))
	assert.Equal(t, int64(1), countAlikeConfirmations(db, g2.ID, g1.ID, models.SourceStaff))

	// Vote churn below the bounds leaves the staff confirmation alone.
	require.NoError(t, engine.CastAlikeVote("AAAAA", "BBBBB", 1))
	require.NoError(t, engine.RetractAlikeVote("AAAAA", "BBBBB", 1))
	assert.Equal(t, int64(1), countAlikeConfirmations(db, g1.ID, g2.ID, models.SourceStaff))

	// Setting twice is idempotent.
	require.NoError(t, engine.SetAlikeConfirmation(g1.ID, g2.ID, models.SourceStaff))
	assert.Equal(t, int64(1), countAlikeConfirmations(db, g1.ID, g2.ID, models.SourceStaff))

	require.NoError(t, engine.ClearAlikeConfirmation(g1.ID, g2.ID, models.SourceStaff))
	assert.Zero(t, countAlikeConfirmations(db, g1.ID, g2.ID, models.SourceStaff))
	assert.Zero(t, countAlikeConfirmations(db, g2.ID, g1.ID, models.SourceStaff))
}

func TestVoteSourceNotSettableDirectly(t *testing.T) {
	engine, db := newTestEngine(t)
	g1 := createGame(t, db, "AAAAA")
	g2 := createGame(t, db, "BBBBB")

	err := engine.SetAlikeConfirmation(g1.ID, g2.ID, models.SourceVote)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestTagVoteRespectsGroupPolicy(t *testing.T) {
	engine, db := newTestEngine(t)
	createGame(t, db, "AAAAA")

	group := models.TagGroup{Name: "curated", AllowVote: false}
	require.NoError(t, db.Create(&group).Error)
	tag := models.Tag{Name: "editor-pick", TagGroupID: group.ID}
	require.NoError(t, db.Create(&tag).Error)

	err := engine.CastTagVote(tag.ID, "AAAAA", 1)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestTagConfirmationHysteresis(t *testing.T) {
	engine, db := newTestEngine(t)
	game := createGame(t, db, "AAAAA")

	group := models.TagGroup{Name: "genre", AllowVote: true}
	require.NoError(t, db.Create(&group).Error)
	tag := models.Tag{Name: "roguelike", TagGroupID: group.ID}
	require.NoError(t, db.Create(&tag).Error)

	for user := uint(1); user <= 10; user++ {
		require.NoError(t, engine.CastTagVote(tag.ID, "AAAAA", user))
	}
	var confirmed int64
	db.Model(&models.ConfirmedTag{}).
		Where("tag_id = ? AND game_id = ? AND confirmed_by = ?",
			tag.ID, game.ID, models.SourceVote).
		Count(&confirmed)
	assert.Equal(t, int64(1), confirmed)

	for user := uint(1); user <= 7; user++ {
		require.NoError(t, engine.RetractTagVote(tag.ID, "AAAAA", user))
	}
	db.Model(&models.ConfirmedTag{}).
		Where("tag_id = ? AND game_id = ? AND confirmed_by = ?",
			tag.ID, game.ID, models.SourceVote).
		Count(&confirmed)
	assert.Zero(t, confirmed)
}

func TestMergeTagsMovesAndDiscards(t *testing.T) {
	engine, db := newTestEngine(t)
	game := createGame(t, db, "AAAAA")

	group := models.TagGroup{Name: "genre", AllowVote: true}
	require.NoError(t, db.Create(&group).Error)
	survivor := models.Tag{Name: "RPG", TagGroupID: group.ID}
	loser := models.Tag{Name: "rpg", TagGroupID: group.ID}
	require.NoError(t, db.Create(&survivor).Error)
	require.NoError(t, db.Create(&loser).Error)

	// User 1 voted both spellings, user 2 only the loser.
	require.NoError(t, engine.CastTagVote(survivor.ID, "AAAAA", 1))
	require.NoError(t, engine.CastTagVote(loser.ID, "AAAAA", 1))
	require.NoError(t, engine.CastTagVote(loser.ID, "AAAAA", 2))

	require.NoError(t, engine.SetTagConfirmation(loser.ID, game.ID, models.SourceStaff))

	require.NoError(t, engine.MergeTags(survivor.ID, loser.ID))

	// User 1's duplicate vote was discarded, user 2's moved over.
	var votes int64
	db.Model(&models.TagVote{}).Where("tag_id = ?", survivor.ID).Count(&votes)
	assert.Equal(t, int64(2), votes)
	db.Model(&models.TagVote{}).Where("tag_id = ?", loser.ID).Count(&votes)
	assert.Zero(t, votes)

	var confirmations int64
	db.Model(&models.ConfirmedTag{}).
		Where("tag_id = ? AND confirmed_by = ?", survivor.ID, models.SourceStaff).
		Count(&confirmations)
	assert.Equal(t, int64(1), confirmations)

	var loserLeft int64
	db.Unscoped().Model(&models.Tag{}).Where("id = ?", loser.ID).Count(&loserLeft)
	assert.Zero(t, loserLeft, "losing tag must be hard-deleted")
}

func TestMergeTagsRejectsSelf(t *testing.T) {
	engine, db := newTestEngine(t)
	group := models.TagGroup{Name: "genre"}
	require.NoError(t, db.Create(&group).Error)
	tag := models.Tag{Name: "rpg", TagGroupID: group.ID}
	require.NoError(t, db.Create(&tag).Error)

	assert.ErrorIs(t, engine.MergeTags(tag.ID, tag.ID), apperr.ErrValidation)
}

func TestRecommendationClearsWishlist(t *testing.T) {
	engine, db := newTestEngine(t)
	game := createGame(t, db, "AAAAA")

	wish := models.Wishlist{GameID: game.ID, UserID: 1}
	require.NoError(t, db.Create(&wish).Error)

	require.NoError(t, engine.CastRecommendation("AAAAA", 1, true))

	var wishes int64
	db.Model(&models.Wishlist{}).
		Where("game_id = ? AND user_id = ?", game.ID, 1).Count(&wishes)
	assert.Zero(t, wishes)
}

func TestRecommendationRejectsRevote(t *testing.T) {
	engine, db := newTestEngine(t)
	createGame(t, db, "AAAAA")

	require.NoError(t, engine.CastRecommendation("AAAAA", 1, true))
	assert.ErrorIs(t, engine.CastRecommendation("AAAAA", 1, false), apperr.ErrConflict)

	// Changing the verdict means retracting first.
	require.NoError(t, engine.RetractRecommendation("AAAAA", 1))
	require.NoError(t, engine.CastRecommendation("AAAAA", 1, false))
}

// Highlight follows the net score: 12 likes and 2 dislikes stay at a
// delta of ten, one more dislike drops below the bound but inside the
// hysteresis band.
func TestHighlightUsesNetScore(t *testing.T) {
	engine, db := newTestEngine(t)
	game := createGame(t, db, "AAAAA")

	for user := uint(1); user <= 12; user++ {
		require.NoError(t, engine.CastRecommendation("AAAAA", user, true))
	}
	require.NoError(t, engine.CastRecommendation("AAAAA", 13, false))
	require.NoError(t, engine.CastRecommendation("AAAAA", 14, false))

	var highlighted int64
	db.Model(&models.ConfirmedHighlight{}).
		Where("game_id = ? AND confirmed_by = ?", game.ID, models.SourceVote).
		Count(&highlighted)
	assert.Equal(t, int64(1), highlighted)

	// Delta 9: below the upper bound, above the lower. Still highlighted.
	require.NoError(t, engine.CastRecommendation("AAAAA", 15, false))
	db.Model(&models.ConfirmedHighlight{}).
		Where("game_id = ? AND confirmed_by = ?", game.ID, models.SourceVote).
		Count(&highlighted)
	assert.Equal(t, int64(1), highlighted)

	// Down to delta 3: the highlight goes away.
	for user := uint(7); user <= 12; user++ {
		require.NoError(t, engine.RetractRecommendation("AAAAA", user))
	}
	db.Model(&models.ConfirmedHighlight{}).
		Where("game_id = ? AND confirmed_by = ?", game.ID, models.SourceVote).
		Count(&highlighted)
	assert.Zero(t, highlighted)
}

// Retracting after the confirmation cleared and re-casting the same
// vote must work; vote rows are hard-deleted, not soft-deleted.
func TestVoteCanBeRecastAfterRetract(t *testing.T) {
	engine, db := newTestEngine(t)
	createGame(t, db, "AAAAA")
	createGame(t, db, "BBBBB")

	require.NoError(t, engine.CastAlikeVote("AAAAA", "BBBBB", 1))
	require.NoError(t, engine.RetractAlikeVote("AAAAA", "BBBBB", 1))
	require.NoError(t, engine.CastAlikeVote("AAAAA", "BBBBB", 1))

	var votes int64
	db.Model(&models.AlikeVote{}).Where("user_id = ?", 1).Count(&votes)
	assert.Equal(t, int64(2), votes)
}
