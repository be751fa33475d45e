// Package catalog exposes the canonical game index: merged regional
// records, current prices, confirmed classifications, and the search
// query composer built on top of them.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"gamedex/backend/internal/apperr"
	"gamedex/backend/internal/models"

	"gorm.io/gorm"
)

// Index reads the catalog and assembles game summaries.
type Index struct {
	db *gorm.DB
}

// NewIndex creates an index over db.
func NewIndex(db *gorm.DB) *Index {
	return &Index{db: db}
}

// Summary is the per-game discovery view: merged regional attributes,
// aggregate classification counts, derived price fields, and, when a
// viewer is given, that viewer's own relation to the game.
type Summary struct {
	ID    uint   `json:"-"`
	Title string `json:"title"`
	Code  string `json:"game_code"`
	Image string `json:"game_image"`

	ReleaseUS *time.Time `json:"release_us"`
	ReleaseEU *time.Time `json:"release_eu"`

	Likes    int      `json:"likes"`
	Dislikes int      `json:"dislikes"`
	Reviews  int      `json:"reviews"`
	Tags     []string `json:"tags"`

	Price           *float64 `json:"price,omitempty"`
	SalePrice       *float64 `json:"sale_price,omitempty"`
	CurrentPrice    *float64 `json:"current_price,omitempty"`
	DiscountPercent *float64 `json:"discount_percent,omitempty"`

	Recommends *bool `json:"recommends"`
	HasReview  bool  `json:"has_review"`
	HasWish    bool  `json:"has_wish"`

	Description string `json:"game_description,omitempty"`
	LinkUS      string `json:"link_us,omitempty"`
	LinkEU      string `json:"link_eu,omitempty"`

	highlighted bool
	tagIDs      map[uint]struct{}
	rank        float64
}

// earliestRelease mirrors LEAST over the two release dates, ignoring
// the missing one.
func (s *Summary) earliestRelease() *time.Time {
	switch {
	case s.ReleaseUS == nil:
		return s.ReleaseEU
	case s.ReleaseEU == nil:
		return s.ReleaseUS
	case s.ReleaseUS.Before(*s.ReleaseEU):
		return s.ReleaseUS
	default:
		return s.ReleaseEU
	}
}

func (s *Summary) voteSum() int { return s.Likes - s.Dislikes }

type gameIDCount struct {
	GameID uint
	N      int
}

// Summaries loads the discovery view of every non-hidden game, with
// prices resolved for country and the viewer columns resolved for
// viewerID when given. Result is ordered by title.
func (ix *Index) Summaries(country string, viewerID *uint) ([]*Summary, error) {
	var games []models.Game
	if err := ix.db.Preload("GameUS").Preload("GameEU").
		Where("hide = ?", false).Find(&games).Error; err != nil {
		return nil, err
	}

	byID := make(map[uint]*Summary, len(games))
	summaries := make([]*Summary, 0, len(games))
	for i := range games {
		g := &games[i]
		s := &Summary{
			ID:        g.ID,
			Title:     g.Title(),
			Code:      g.CodeUnique,
			Image:     g.Image(),
			ReleaseUS: g.ReleaseUS(),
			ReleaseEU: g.ReleaseEU(),
			tagIDs:    make(map[uint]struct{}),
		}
		byID[g.ID] = s
		summaries = append(summaries, s)
	}

	// Like/dislike counts.
	var recRows []struct {
		GameID     uint
		Recommends bool
		N          int
	}
	if err := ix.db.Model(&models.Recommendation{}).
		Select("game_id, recommends, count(*) as n").
		Group("game_id").Group("recommends").
		Scan(&recRows).Error; err != nil {
		return nil, err
	}
	for _, row := range recRows {
		if s, ok := byID[row.GameID]; ok {
			if row.Recommends {
				s.Likes = row.N
			} else {
				s.Dislikes = row.N
			}
		}
	}

	// Review counts.
	var reviewRows []gameIDCount
	if err := ix.db.Model(&models.Review{}).
		Select("game_id, count(*) as n").Group("game_id").
		Scan(&reviewRows).Error; err != nil {
		return nil, err
	}
	for _, row := range reviewRows {
		if s, ok := byID[row.GameID]; ok {
			s.Reviews = row.N
		}
	}

	// Confirmed tags, deduplicated across sources.
	var tagRows []struct {
		GameID uint
		TagID  uint
		Name   string
	}
	if err := ix.db.Model(&models.ConfirmedTag{}).
		Select("confirmed_tags.game_id, confirmed_tags.tag_id, tags.name").
		Joins("JOIN tags ON tags.id = confirmed_tags.tag_id AND tags.deleted_at IS NULL").
		Scan(&tagRows).Error; err != nil {
		return nil, err
	}
	for _, row := range tagRows {
		s, ok := byID[row.GameID]
		if !ok {
			continue
		}
		if _, seen := s.tagIDs[row.TagID]; seen {
			continue
		}
		s.tagIDs[row.TagID] = struct{}{}
		s.Tags = append(s.Tags, row.Name)
	}
	for _, s := range summaries {
		sort.Strings(s.Tags)
	}

	// Highlights, any source.
	var highlightIDs []uint
	if err := ix.db.Model(&models.ConfirmedHighlight{}).
		Distinct("game_id").Pluck("game_id", &highlightIDs).Error; err != nil {
		return nil, err
	}
	for _, id := range highlightIDs {
		if s, ok := byID[id]; ok {
			s.highlighted = true
		}
	}

	// Prices and sales for the reference country.
	var prices []models.Price
	if err := ix.db.Where("country = ?", country).Find(&prices).Error; err != nil {
		return nil, err
	}
	for _, p := range prices {
		if s, ok := byID[p.GameID]; ok {
			v := p.RawValue
			s.Price = &v
		}
	}
	var sales []models.Sale
	if err := ix.db.Where("country = ?", country).Find(&sales).Error; err != nil {
		return nil, err
	}
	for _, sale := range sales {
		if s, ok := byID[sale.GameID]; ok {
			v := sale.RawValue
			s.SalePrice = &v
		}
	}

	for _, s := range summaries {
		s.derivePrice()
	}

	if viewerID != nil {
		if err := ix.applyViewer(summaries, byID, *viewerID); err != nil {
			return nil, err
		}
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Title < summaries[j].Title
	})
	return summaries, nil
}

// derivePrice fills current price and discount percent:
// current = sale if present else base; discount is 0 when the base
// price is 0, otherwise (base - current) / base.
func (s *Summary) derivePrice() {
	switch {
	case s.SalePrice != nil:
		v := *s.SalePrice
		s.CurrentPrice = &v
	case s.Price != nil:
		v := *s.Price
		s.CurrentPrice = &v
	}

	if s.Price == nil || s.CurrentPrice == nil {
		return
	}
	var discount float64
	if *s.Price != 0 {
		discount = (*s.Price - *s.CurrentPrice) / *s.Price
	}
	s.DiscountPercent = &discount
}

func (ix *Index) applyViewer(summaries []*Summary, byID map[uint]*Summary, viewerID uint) error {
	var recs []models.Recommendation
	if err := ix.db.Where("user_id = ?", viewerID).Find(&recs).Error; err != nil {
		return err
	}
	for _, rec := range recs {
		if s, ok := byID[rec.GameID]; ok {
			v := rec.Recommends
			s.Recommends = &v
		}
	}

	var reviewGameIDs []uint
	if err := ix.db.Model(&models.Review{}).
		Where("user_id = ?", viewerID).
		Pluck("game_id", &reviewGameIDs).Error; err != nil {
		return err
	}
	for _, id := range reviewGameIDs {
		if s, ok := byID[id]; ok {
			s.HasReview = true
		}
	}

	var wishGameIDs []uint
	if err := ix.db.Model(&models.Wishlist{}).
		Where("user_id = ?", viewerID).
		Pluck("game_id", &wishGameIDs).Error; err != nil {
		return err
	}
	for _, id := range wishGameIDs {
		if s, ok := byID[id]; ok {
			s.HasWish = true
		}
	}
	return nil
}

// Get returns the full summary of one game by code, including the
// description and store links.
func (ix *Index) Get(code, country string, viewerID *uint) (*Summary, error) {
	summaries, err := ix.Summaries(country, viewerID)
	if err != nil {
		return nil, err
	}
	for _, s := range summaries {
		if s.Code != code {
			continue
		}
		var game models.Game
		if err := ix.db.Preload("GameUS").Preload("GameEU").
			Where("code_unique = ?", code).First(&game).Error; err != nil {
			return nil, err
		}
		if game.GameEU != nil {
			s.Description = game.GameEU.Description
			s.LinkEU = game.GameEU.URL
		}
		if game.GameUS != nil {
			s.LinkUS = game.GameUS.Slug
		}
		return s, nil
	}
	return nil, fmt.Errorf("game %q: %w", code, apperr.ErrNotFound)
}

// Alike returns the summaries of every game confirmed alike to the
// given one (any source), ordered by alike vote count descending and
// title ascending.
func (ix *Index) Alike(code, country string, viewerID *uint) ([]*Summary, error) {
	var game models.Game
	if err := ix.db.Where("code_unique = ?", code).First(&game).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("game %q: %w", code, apperr.ErrNotFound)
		}
		return nil, err
	}

	var alikeIDs []uint
	if err := ix.db.Model(&models.ConfirmedAlike{}).
		Where("game1_id = ?", game.ID).
		Distinct("game2_id").Pluck("game2_id", &alikeIDs).Error; err != nil {
		return nil, err
	}
	if len(alikeIDs) == 0 {
		return nil, nil
	}

	var voteRows []struct {
		Game2ID uint
		N       int
	}
	if err := ix.db.Model(&models.AlikeVote{}).
		Select("game2_id, count(*) as n").
		Where("game1_id = ?", game.ID).
		Group("game2_id").
		Scan(&voteRows).Error; err != nil {
		return nil, err
	}
	votes := make(map[uint]int, len(voteRows))
	for _, row := range voteRows {
		votes[row.Game2ID] = row.N
	}

	wanted := make(map[uint]struct{}, len(alikeIDs))
	for _, id := range alikeIDs {
		wanted[id] = struct{}{}
	}

	summaries, err := ix.Summaries(country, viewerID)
	if err != nil {
		return nil, err
	}

	var result []*Summary
	for _, s := range summaries {
		if _, ok := wanted[s.ID]; ok {
			result = append(result, s)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if votes[result[i].ID] != votes[result[j].ID] {
			return votes[result[i].ID] > votes[result[j].ID]
		}
		return result[i].Title < result[j].Title
	})
	return result, nil
}
