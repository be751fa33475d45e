package catalog

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"gamedex/backend/internal/apperr"
)

// Release-status filter values.
const (
	ReleasedAny      = ""
	ReleasedOnly     = "released"
	ReleasedNot      = "unreleased"
	ReleasedLatest   = "latest"
	ReleasedBetween  = "between"
	latestWindowDays = 120
)

// minRank is the relevance floor below which a free-text match is
// discarded.
const minRank = 0.02

// Filter is the typed search specification. Saved curated lists store
// it serialized as JSON and it is validated at save time, not at
// execution time.
type Filter struct {
	Version int `json:"v,omitempty"`

	Text string `json:"text,omitempty"`
	Tags []uint `json:"tags,omitempty"`

	// OrderBy names a sort key (title, date, rank, current_price,
	// discount_percent, votes), with a leading '-' for descending.
	OrderBy string `json:"order_by,omitempty"`

	Released string `json:"released,omitempty"`
	DateFrom string `json:"date_from,omitempty"`
	DateTo   string `json:"date_to,omitempty"`

	PriceFrom   *float64 `json:"price_from,omitempty"`
	PriceTo     *float64 `json:"price_to,omitempty"`
	SalesOnly   bool     `json:"sales_only,omitempty"`
	MinDiscount int      `json:"min_discount,omitempty"`

	HighlightsOnly bool `json:"highlights_only,omitempty"`
	UnratedOnly    bool `json:"unrated_only,omitempty"`

	Quantity int `json:"qtd,omitempty"`
	Offset   int `json:"offset,omitempty"`
}

var sortKeys = map[string]bool{
	"title":            true,
	"date":             true,
	"rank":             true,
	"current_price":    true,
	"discount_percent": true,
	"votes":            true,
}

// Validate checks the specification without touching the catalog.
func (f *Filter) Validate() error {
	if f.Version > 1 {
		return fmt.Errorf("unsupported filter version %d: %w", f.Version, apperr.ErrValidation)
	}
	if key := strings.TrimPrefix(f.OrderBy, "-"); f.OrderBy != "" && !sortKeys[key] {
		return fmt.Errorf("unknown sort key %q: %w", f.OrderBy, apperr.ErrValidation)
	}
	switch f.Released {
	case ReleasedAny, ReleasedOnly, ReleasedNot, ReleasedLatest, ReleasedBetween:
	default:
		return fmt.Errorf("unknown release status %q: %w", f.Released, apperr.ErrValidation)
	}
	for _, raw := range []string{f.DateFrom, f.DateTo} {
		if raw == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", raw); err != nil {
			return fmt.Errorf("bad date %q: %w", raw, apperr.ErrValidation)
		}
	}
	if f.MinDiscount < 0 || f.MinDiscount > 100 {
		return fmt.Errorf("min_discount out of range: %w", apperr.ErrValidation)
	}
	if f.Quantity < 0 || f.Offset < 0 {
		return fmt.Errorf("negative pagination: %w", apperr.ErrValidation)
	}
	return nil
}

// ParseFilter deserializes and validates a saved filter specification.
func ParseFilter(raw string) (*Filter, error) {
	var f Filter
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		return nil, fmt.Errorf("malformed filter spec: %v: %w", err, apperr.ErrValidation)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Search composes the filter over the loaded summaries: filters,
// free-text ranking, ordering with a title tie-break, and offset/limit
// pagination last.
func (ix *Index) Search(f *Filter, country string, viewerID *uint) ([]*Summary, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	summaries, err := ix.Summaries(country, viewerID)
	if err != nil {
		return nil, err
	}
	return applyFilter(summaries, f, time.Now()), nil
}

func applyFilter(summaries []*Summary, f *Filter, now time.Time) []*Summary {
	result := summaries

	if f.SalesOnly {
		result = keep(result, func(s *Summary) bool { return s.SalePrice != nil })
	}
	if f.PriceFrom != nil {
		result = keep(result, func(s *Summary) bool {
			return s.CurrentPrice != nil && *s.CurrentPrice >= *f.PriceFrom
		})
	}
	if f.PriceTo != nil {
		result = keep(result, func(s *Summary) bool {
			return s.CurrentPrice != nil && *s.CurrentPrice <= *f.PriceTo
		})
	}
	if f.MinDiscount > 0 {
		min := float64(f.MinDiscount) / 100
		result = keep(result, func(s *Summary) bool {
			return s.DiscountPercent != nil && *s.DiscountPercent >= min
		})
	}

	result = filterRelease(result, f, now)

	// Intersection: the game must be confirmed for every listed tag.
	for _, tagID := range f.Tags {
		id := tagID
		result = keep(result, func(s *Summary) bool {
			_, ok := s.tagIDs[id]
			return ok
		})
	}

	if f.HighlightsOnly {
		result = keep(result, func(s *Summary) bool { return s.highlighted })
	}

	if f.Text != "" {
		tokens := tokenize(f.Text)
		result = keep(result, func(s *Summary) bool {
			s.rank = relevance(s.Title, tokens)
			return s.rank >= minRank
		})
	}

	result = order(result, f)

	if f.UnratedOnly {
		result = keep(result, func(s *Summary) bool { return s.Recommends == nil })
	}

	// Pagination last, over the filtered and ordered set.
	if f.Offset >= len(result) {
		return nil
	}
	result = result[f.Offset:]
	if f.Quantity > 0 && f.Quantity < len(result) {
		result = result[:f.Quantity]
	}
	return result
}

func keep(in []*Summary, pred func(*Summary) bool) []*Summary {
	out := in[:0:0]
	for _, s := range in {
		if pred(s) {
			out = append(out, s)
		}
	}
	return out
}

func filterRelease(in []*Summary, f *Filter, now time.Time) []*Summary {
	switch f.Released {
	case ReleasedOnly:
		return keep(in, func(s *Summary) bool {
			d := s.earliestRelease()
			return d != nil && !d.After(now)
		})
	case ReleasedNot:
		return keep(in, func(s *Summary) bool {
			d := s.earliestRelease()
			return d != nil && d.After(now)
		})
	case ReleasedLatest:
		cutoff := now.AddDate(0, 0, -latestWindowDays)
		return keep(in, func(s *Summary) bool {
			d := s.earliestRelease()
			return d != nil && d.Before(now) && d.After(cutoff)
		})
	case ReleasedBetween:
		out := in
		if f.DateFrom != "" {
			from, _ := time.Parse("2006-01-02", f.DateFrom)
			out = keep(out, func(s *Summary) bool {
				d := s.earliestRelease()
				return d != nil && !d.Before(from)
			})
		}
		if f.DateTo != "" {
			to, _ := time.Parse("2006-01-02", f.DateTo)
			out = keep(out, func(s *Summary) bool {
				d := s.earliestRelease()
				return d != nil && !d.After(to)
			})
		}
		return out
	}
	return in
}

func order(in []*Summary, f *Filter) []*Summary {
	if f.OrderBy == "" {
		return in
	}

	key := strings.TrimPrefix(f.OrderBy, "-")
	desc := strings.HasPrefix(f.OrderBy, "-")

	// Relevance is undefined without search text; fall back to title.
	if key == "rank" && f.Text == "" {
		key, desc = "title", false
	}

	// Sorting by a derived value excludes games lacking it.
	switch key {
	case "current_price":
		in = keep(in, func(s *Summary) bool { return s.CurrentPrice != nil })
	case "discount_percent":
		in = keep(in, func(s *Summary) bool { return s.DiscountPercent != nil })
	}

	sort.SliceStable(in, func(i, j int) bool {
		a, b := in[i], in[j]
		if c := compareBy(key, a, b); c != 0 {
			if desc {
				return c > 0
			}
			return c < 0
		}
		return a.Title < b.Title
	})
	return in
}

// compareBy returns -1, 0 or 1 ordering a before, equal to, or after b
// on the ascending key. Games without a date sort last either way.
func compareBy(key string, a, b *Summary) int {
	switch key {
	case "title":
		return strings.Compare(a.Title, b.Title)
	case "date":
		da, db := a.earliestRelease(), b.earliestRelease()
		switch {
		case da == nil && db == nil:
			return 0
		case da == nil:
			return 1
		case db == nil:
			return -1
		case da.Before(*db):
			return -1
		case da.After(*db):
			return 1
		}
		return 0
	case "rank":
		return compareFloat(a.rank, b.rank)
	case "current_price":
		return compareFloat(*a.CurrentPrice, *b.CurrentPrice)
	case "discount_percent":
		return compareFloat(*a.DiscountPercent, *b.DiscountPercent)
	case "votes":
		return compareFloat(float64(a.voteSum()), float64(b.voteSum()))
	}
	return 0
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

var nonWord = regexp.MustCompile(`\W+`)

func tokenize(s string) []string {
	var tokens []string
	for _, t := range nonWord.Split(strings.ToLower(s), -1) {
		if t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// relevance ranks the title against the query tokens, OR-combined:
// each distinct token contributes 0.1 for a full word match or 0.05
// for a word-prefix match.
func relevance(title string, tokens []string) float64 {
	words := tokenize(title)
	wordSet := make(map[string]struct{}, len(words))
	for _, w := range words {
		wordSet[w] = struct{}{}
	}

	seen := make(map[string]struct{}, len(tokens))
	var rank float64
	for _, token := range tokens {
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}

		if _, ok := wordSet[token]; ok {
			rank += 0.1
			continue
		}
		for _, w := range words {
			if strings.HasPrefix(w, token) {
				rank += 0.05
				break
			}
		}
	}
	return rank
}
