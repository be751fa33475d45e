package catalog

import (
	"testing"
	"time"

	"gamedex/backend/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fp(v float64) *float64 { return &v }

func dateAt(value string) *time.Time {
	d, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return &d
}

func summary(title string, opts ...func(*Summary)) *Summary {
	s := &Summary{Title: title, tagIDs: make(map[uint]struct{})}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func withPrice(base, current *float64) func(*Summary) {
	return func(s *Summary) {
		s.Price = base
		s.CurrentPrice = current
		if base != nil && current != nil {
			if *base != 0 {
				d := (*base - *current) / *base
				s.DiscountPercent = &d
			} else {
				d := 0.0
				s.DiscountPercent = &d
			}
			if *current != *base {
				s.SalePrice = current
			}
		}
	}
}

func withTags(ids ...uint) func(*Summary) {
	return func(s *Summary) {
		for _, id := range ids {
			s.tagIDs[id] = struct{}{}
		}
	}
}

func withRelease(us, eu *time.Time) func(*Summary) {
	return func(s *Summary) {
		s.ReleaseUS = us
		s.ReleaseEU = eu
	}
}

func titles(in []*Summary) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, s.Title)
	}
	return out
}

func TestValidateRejectsBadSpecs(t *testing.T) {
	cases := []struct {
		name   string
		filter Filter
	}{
		{"future version", Filter{Version: 2}},
		{"unknown sort key", Filter{OrderBy: "-price"}},
		{"unknown release status", Filter{Released: "someday"}},
		{"bad date", Filter{Released: ReleasedBetween, DateFrom: "2023-13-40"}},
		{"discount over 100", Filter{MinDiscount: 101}},
		{"negative offset", Filter{Offset: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.filter.Validate(), apperr.ErrValidation)
		})
	}
}

func TestParseFilterMalformedJSON(t *testing.T) {
	_, err := ParseFilter(`{"order_by": `)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestParseFilterRoundTrip(t *testing.T) {
	f, err := ParseFilter(`{"text":"zelda","tags":[1,2],"order_by":"-rank","qtd":5}`)
	require.NoError(t, err)
	assert.Equal(t, "zelda", f.Text)
	assert.Equal(t, []uint{1, 2}, f.Tags)
	assert.Equal(t, 5, f.Quantity)
}

func TestTagFilterIsIntersection(t *testing.T) {
	summaries := []*Summary{
		summary("both", withTags(1, 2)),
		summary("only one", withTags(1)),
		summary("neither"),
	}

	got := applyFilter(summaries, &Filter{Tags: []uint{1, 2}}, time.Now())
	assert.Equal(t, []string{"both"}, titles(got))
}

func TestPriceRangeUsesCurrentPrice(t *testing.T) {
	summaries := []*Summary{
		summary("full price", withPrice(fp(60), fp(60))),
		summary("on sale", withPrice(fp(60), fp(20))),
		summary("no price"),
	}

	got := applyFilter(summaries, &Filter{PriceTo: fp(30)}, time.Now())
	assert.Equal(t, []string{"on sale"}, titles(got))

	got = applyFilter(summaries, &Filter{PriceFrom: fp(50)}, time.Now())
	assert.Equal(t, []string{"full price"}, titles(got))
}

func TestMinDiscountFilter(t *testing.T) {
	summaries := []*Summary{
		summary("deep cut", withPrice(fp(60), fp(15))),  // 75%
		summary("small cut", withPrice(fp(60), fp(54))), // 10%
		summary("free base", withPrice(fp(0), fp(0))),   // discount pinned to 0
	}

	got := applyFilter(summaries, &Filter{MinDiscount: 50}, time.Now())
	assert.Equal(t, []string{"deep cut"}, titles(got))
}

func TestReleaseStatusFilters(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	summaries := []*Summary{
		summary("old", withRelease(dateAt("2020-01-01"), nil)),
		summary("recent", withRelease(dateAt("2024-04-01"), nil)),
		summary("future", withRelease(dateAt("2025-01-01"), nil)),
		summary("undated"),
	}

	got := applyFilter(summaries, &Filter{Released: ReleasedOnly}, now)
	assert.Equal(t, []string{"old", "recent"}, titles(got))

	got = applyFilter(summaries, &Filter{Released: ReleasedNot}, now)
	assert.Equal(t, []string{"future"}, titles(got))

	// The latest window is 120 days back from now.
	got = applyFilter(summaries, &Filter{Released: ReleasedLatest}, now)
	assert.Equal(t, []string{"recent"}, titles(got))

	got = applyFilter(summaries, &Filter{
		Released: ReleasedBetween, DateFrom: "2023-01-01", DateTo: "2024-12-31",
	}, now)
	assert.Equal(t, []string{"recent"}, titles(got))
}

// The earliest of the two regional dates decides the release status.
func TestReleaseUsesEarliestRegionalDate(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	summaries := []*Summary{
		summary("out in one region", withRelease(dateAt("2024-05-01"), dateAt("2025-05-01"))),
	}

	got := applyFilter(summaries, &Filter{Released: ReleasedOnly}, now)
	assert.Len(t, got, 1)
}

func TestTextSearchRanking(t *testing.T) {
	summaries := []*Summary{
		summary("The Legend of Zelda"),
		summary("Zelous Gardens"), // prefix match only
		summary("Metroid Prime"),
	}

	got := applyFilter(summaries, &Filter{Text: "zel", OrderBy: "-rank"}, time.Now())
	// Both prefix-match "zel" at 0.05; order falls back to the title
	// tie-break.
	assert.Equal(t, []string{"The Legend of Zelda", "Zelous Gardens"}, titles(got))

	got = applyFilter(summaries, &Filter{Text: "zelda", OrderBy: "-rank"}, time.Now())
	assert.Equal(t, []string{"The Legend of Zelda"}, titles(got))
}

func TestTextSearchDropsWeakMatches(t *testing.T) {
	summaries := []*Summary{summary("Metroid Prime")}

	got := applyFilter(summaries, &Filter{Text: "zelda"}, time.Now())
	assert.Empty(t, got)
}

func TestRankWithoutTextFallsBackToTitle(t *testing.T) {
	summaries := []*Summary{
		summary("Banjo"),
		summary("Axiom"),
	}

	got := applyFilter(summaries, &Filter{OrderBy: "-rank"}, time.Now())
	assert.Equal(t, []string{"Axiom", "Banjo"}, titles(got))
}

func TestPriceSortExcludesUnpriced(t *testing.T) {
	summaries := []*Summary{
		summary("cheap", withPrice(fp(10), fp(10))),
		summary("dear", withPrice(fp(70), fp(70))),
		summary("unpriced"),
	}

	got := applyFilter(summaries, &Filter{OrderBy: "-current_price"}, time.Now())
	assert.Equal(t, []string{"dear", "cheap"}, titles(got))

	got = applyFilter(summaries, &Filter{OrderBy: "current_price"}, time.Now())
	assert.Equal(t, []string{"cheap", "dear"}, titles(got))
}

func TestVotesSortWithTitleTieBreak(t *testing.T) {
	loved := summary("loved")
	loved.Likes, loved.Dislikes = 10, 1
	mixed := summary("mixed")
	mixed.Likes, mixed.Dislikes = 5, 5
	alsoMixed := summary("also mixed")
	alsoMixed.Likes, alsoMixed.Dislikes = 3, 3

	got := applyFilter([]*Summary{loved, mixed, alsoMixed}, &Filter{OrderBy: "-votes"}, time.Now())
	assert.Equal(t, []string{"loved", "also mixed", "mixed"}, titles(got))
}

func TestUnratedOnlyAppliesAfterOrdering(t *testing.T) {
	rated := summary("rated")
	yes := true
	rated.Recommends = &yes

	got := applyFilter([]*Summary{rated, summary("fresh")}, &Filter{UnratedOnly: true}, time.Now())
	assert.Equal(t, []string{"fresh"}, titles(got))
}

func TestPaginationLast(t *testing.T) {
	summaries := []*Summary{
		summary("a"), summary("b"), summary("c"), summary("d"),
	}

	got := applyFilter(summaries, &Filter{OrderBy: "title", Offset: 1, Quantity: 2}, time.Now())
	assert.Equal(t, []string{"b", "c"}, titles(got))

	// Offset past the end is an empty result, not an error.
	got = applyFilter(summaries, &Filter{Offset: 10}, time.Now())
	assert.Empty(t, got)
}

func TestHighlightsOnly(t *testing.T) {
	lit := summary("lit")
	lit.highlighted = true

	got := applyFilter([]*Summary{lit, summary("dim")}, &Filter{HighlightsOnly: true}, time.Now())
	assert.Equal(t, []string{"lit"}, titles(got))
}

func TestSalesOnly(t *testing.T) {
	onSale := summary("on sale", withPrice(fp(60), fp(30)))
	full := summary("full", withPrice(fp(60), fp(60)))

	got := applyFilter([]*Summary{onSale, full}, &Filter{SalesOnly: true}, time.Now())
	assert.Equal(t, []string{"on sale"}, titles(got))
}
