// Package discovery resolves the curated home-page lists: every slot
// picks one of its saved lists at random, weighted by frequency, and
// executes its filter specification with currency-aware title
// templating.
package discovery

import (
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"gamedex/backend/internal/catalog"
	"gamedex/backend/internal/models"

	"gorm.io/gorm"
)

const defaultListQuantity = 20

// Resolver picks and executes one list per slot.
type Resolver struct {
	db    *gorm.DB
	index *catalog.Index

	mu  sync.Mutex
	rng *rand.Rand
}

// NewResolver creates a resolver. rng drives the weighted draw and may
// be seeded for deterministic tests; pass nil for a time-seeded one.
func NewResolver(db *gorm.DB, index *catalog.Index, rng *rand.Rand) *Resolver {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Resolver{db: db, index: index, rng: rng}
}

// ResolvedSlot is one home-page section: the chosen list's templated
// title and its games.
type ResolvedSlot struct {
	Title string             `json:"title"`
	Games []*catalog.Summary `json:"games"`
}

// Resolve returns one resolved section per slot, in slot order.
// Anonymous viewers only see public lists; slots with no visible lists
// are skipped, and a slot whose saved filter is broken is dropped
// without failing the others.
func (r *Resolver) Resolve(viewerID *uint, country string) ([]ResolvedSlot, error) {
	var slots []models.ListSlot
	if err := r.db.Order("\"order\" asc").Find(&slots).Error; err != nil {
		return nil, err
	}

	var lists []models.GameList
	if err := r.db.Find(&lists).Error; err != nil {
		return nil, err
	}

	bySlot := make(map[uint][]models.GameList)
	for _, list := range lists {
		if list.LoggedOnly && viewerID == nil {
			continue
		}
		bySlot[list.SlotID] = append(bySlot[list.SlotID], list)
	}

	var resolved []ResolvedSlot
	for _, slot := range slots {
		visible := bySlot[slot.ID]
		if len(visible) == 0 {
			continue
		}

		chosen := r.pick(visible)

		section, err := r.execute(chosen, viewerID, country)
		if err != nil {
			// A broken saved list must not take down the whole page.
			log.Printf("skipping list %d (%q): %v", chosen.ID, chosen.Title, err)
			continue
		}
		resolved = append(resolved, *section)
	}
	return resolved, nil
}

// pick draws one list with probability proportional to its frequency:
// a uniform draw in [1, totalWeight] walked down the list order
// (inverse-CDF sampling), linear in the number of visible lists.
func (r *Resolver) pick(visible []models.GameList) models.GameList {
	total := 0
	for _, list := range visible {
		if list.Frequency > 0 {
			total += list.Frequency
		}
	}
	if total <= 0 {
		return visible[0]
	}

	r.mu.Lock()
	draw := r.rng.Intn(total) + 1
	r.mu.Unlock()

	for _, list := range visible {
		draw -= list.Frequency
		if draw <= 0 {
			return list
		}
	}
	return visible[len(visible)-1]
}

func (r *Resolver) execute(list models.GameList, viewerID *uint, country string) (*ResolvedSlot, error) {
	filter, err := catalog.ParseFilter(list.QueryJSON)
	if err != nil {
		return nil, err
	}

	title := list.Title

	// Convert templated thresholds into the viewer's currency, and run
	// the query with the converted values.
	if filter.PriceFrom != nil {
		converted := ConvertPrice(*filter.PriceFrom, country)
		filter.PriceFrom = &converted
		title = strings.ReplaceAll(title, "{{price_from}}", FormatPrice(converted, country))
	}
	if filter.PriceTo != nil {
		converted := ConvertPrice(*filter.PriceTo, country)
		filter.PriceTo = &converted
		title = strings.ReplaceAll(title, "{{price_to}}", FormatPrice(converted, country))
	}

	if filter.Quantity == 0 {
		filter.Quantity = defaultListQuantity
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "-title"
	}

	games, err := r.index.Search(filter, country, viewerID)
	if err != nil {
		return nil, err
	}
	return &ResolvedSlot{Title: title, Games: games}, nil
}
