package planner_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yatra-labs/pilgrimage-planner-api/internal/app/planner"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/domain"
)

func places(n int) []domain.PlannedItem {
	out := make([]domain.PlannedItem, n)
	for i := range out {
		out[i] = placeItem(domain.EntityID(string(rune('a'+i))), "varanasi", i)
	}
	return out
}

func TestDateRange_Days(t *testing.T) {
	t.Parallel()

	r := planner.DateRange{From: day(t, "2024-12-30"), To: day(t, "2025-01-02")}
	days := r.Days()
	require.Len(t, days, 4)
	assert.Equal(t, "2024-12-30", domain.FormatDate(days[0]))
	assert.Equal(t, "2025-01-02", domain.FormatDate(days[3]))

	assert.Empty(t, planner.DateRange{From: day(t, "2025-01-02"), To: day(t, "2025-01-01")}.Days())
	assert.Empty(t, planner.DateRange{}.Days())
}

func TestDistributeDates_EvenSpread(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		n    int
		from string
		to   string
		want []string
	}{
		{
			name: "3 items over 3 days",
			n:    3,
			from: "2025-01-01",
			to:   "2025-01-03",
			want: []string{"2025-01-01", "2025-01-02", "2025-01-03"},
		},
		{
			name: "5 items over 2 days",
			n:    5,
			from: "2025-01-01",
			to:   "2025-01-02",
			want: []string{"2025-01-01", "2025-01-01", "2025-01-01", "2025-01-02", "2025-01-02"},
		},
		{
			name: "2 items over 5 days spread out",
			n:    2,
			from: "2025-01-01",
			to:   "2025-01-05",
			want: []string{"2025-01-01", "2025-01-03"},
		},
		{
			name: "7 items over 3 days",
			n:    7,
			from: "2025-01-01",
			to:   "2025-01-03",
			want: []string{
				"2025-01-01", "2025-01-01", "2025-01-01",
				"2025-01-02", "2025-01-02", "2025-01-02",
				"2025-01-03",
			},
		},
		{
			name: "single day",
			n:    2,
			from: "2025-01-01",
			to:   "2025-01-01",
			want: []string{"2025-01-01", "2025-01-01"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r := planner.DateRange{From: day(t, tc.from), To: day(t, tc.to)}
			got, err := planner.DistributeDates(places(tc.n), r)
			require.NoError(t, err)
			assert.Equal(t, tc.want, dates(got))
		})
	}
}

func TestDistributeDates_IsIdempotentAndPure(t *testing.T) {
	t.Parallel()

	in := places(4)
	r := planner.DateRange{From: day(t, "2025-02-01"), To: day(t, "2025-02-03")}

	once, err := planner.DistributeDates(in, r)
	require.NoError(t, err)
	twice, err := planner.DistributeDates(once, r)
	require.NoError(t, err)

	assert.Equal(t, dates(once), dates(twice))
	assert.True(t, planner.SameDates(once, twice))
	for _, it := range in {
		assert.Nil(t, it.Date)
	}
}

func TestDistributeDates_RangeRequired(t *testing.T) {
	t.Parallel()

	in := places(2)
	got, err := planner.DistributeDates(in, planner.DateRange{From: day(t, "2025-01-03"), To: day(t, "2025-01-01")})
	require.True(t, errors.Is(err, planner.ErrRangeRequired))
	assert.Equal(t, refs(in), refs(got))
	assert.Equal(t, []string{"", ""}, dates(got))
}

func TestAutoDistribute_SkipsCitiesAndPinned(t *testing.T) {
	t.Parallel()

	pinnedDay := day(t, "2025-06-30")
	pinned := placeItem("pinned", "varanasi", 2)
	pinned.Date = &pinnedDay
	pinned.Pinned = true

	items := []domain.PlannedItem{
		cityItem("varanasi", 0),
		placeItem("a", "varanasi", 1),
		pinned,
		placeItem("b", "varanasi", 3),
	}
	r := planner.DateRange{From: day(t, "2025-01-01"), To: day(t, "2025-01-02")}

	out, changed, err := planner.AutoDistribute(items, r, planner.ModePerItem, domain.GroupByCity)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"", "2025-01-01", "2025-06-30", "2025-01-02"}, dates(out))

	again, changed, err := planner.AutoDistribute(out, r, planner.ModePerItem, domain.GroupByCity)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, dates(out), dates(again))
}

func TestAutoDistribute_FollowsGroupOrder(t *testing.T) {
	t.Parallel()

	items := []domain.PlannedItem{
		cityItem("mathura", 0),
		placeItem("m1", "mathura", 1),
		cityItem("varanasi", 2),
		placeItem("v1", "varanasi", 3),
		placeItem("v2", "varanasi", 4),
	}
	r := planner.DateRange{From: day(t, "2025-01-01"), To: day(t, "2025-01-03")}

	out, _, err := planner.AutoDistribute(items, r, planner.ModePerItem, domain.GroupByCity)
	require.NoError(t, err)
	assert.Equal(t, []string{"", "2025-01-01", "", "2025-01-02", "2025-01-03"}, dates(out))
}

func TestAutoDistribute_PerGroup(t *testing.T) {
	t.Parallel()

	items := []domain.PlannedItem{
		cityItem("mathura", 0),
		placeItem("m1", "mathura", 1),
		placeItem("m2", "mathura", 2),
		cityItem("varanasi", 3),
		placeItem("v1", "varanasi", 4),
	}
	r := planner.DateRange{From: day(t, "2025-01-01"), To: day(t, "2025-01-04")}

	out, changed, err := planner.AutoDistribute(items, r, planner.ModePerGroup, domain.GroupByCity)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"2025-01-01", "2025-01-01", "2025-01-01", "2025-01-03", "2025-01-03"}, dates(out))
}

func TestAutoDistribute_RangeRequired(t *testing.T) {
	t.Parallel()

	_, changed, err := planner.AutoDistribute(places(1), planner.DateRange{}, planner.ModePerItem, domain.GroupByCity)
	assert.ErrorIs(t, err, planner.ErrRangeRequired)
	assert.False(t, changed)
}

func TestAutoDistribute_PerGroupDatesOrphansLast(t *testing.T) {
	t.Parallel()

	items := []domain.PlannedItem{
		cityItem("mathura", 0),
		placeItem("m1", "mathura", 1),
		placeItem("stray", "kolkata", 2),
	}
	r := planner.DateRange{From: day(t, "2025-01-01"), To: day(t, "2025-01-03")}

	out, changed, err := planner.AutoDistribute(items, r, planner.ModePerGroup, domain.GroupByCity)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"city:mathura", "place:m1", "place:stray"}, refs(out))
	assert.Equal(t, []string{"2025-01-01", "2025-01-01", "2025-01-03"}, dates(out))
}

func TestAutoDistribute_EventTypeView(t *testing.T) {
	t.Parallel()

	items := []domain.PlannedItem{
		eventItem("holi", "mathura", domain.EventTypeFestival, 0),
		eventItem("ganga-kirtan", "varanasi", domain.EventTypeKirtan, 1),
		cityItem("varanasi", 2),
		placeItem("v1", "varanasi", 3),
	}
	r := planner.DateRange{From: day(t, "2025-01-01"), To: day(t, "2025-01-02")}

	out, _, err := planner.AutoDistribute(items, r, planner.ModePerGroup, domain.GroupByEventType)
	require.NoError(t, err)
	assert.Equal(t, []string{"event:holi", "event:ganga-kirtan", "city:varanasi", "place:v1"}, refs(out))
	assert.Equal(t, []string{"2025-01-01", "2025-01-02", "", "2025-01-02"}, dates(out))

	out, _, err = planner.AutoDistribute(items, r, planner.ModePerItem, domain.GroupByEventType)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-01-01", "2025-01-01", "", "2025-01-02"}, dates(out))
}
