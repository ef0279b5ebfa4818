package aggregate

import (
	"testing"
	"time"

	"github.com/couchcryptid/ncdc-temperature-etl/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

func withFixedClock(t *testing.T) {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(fixedTime))
	t.Cleanup(func() { domain.SetClock(nil) })
}

func rec(year string, temp int) domain.AcceptedRecord {
	return domain.AcceptedRecord{Year: year, Temperature: temp}
}

func TestAggregator_Update(t *testing.T) {
	withFixedClock(t)

	a := New()
	a.Update(rec("1930", 61))
	a.Update(rec("1930", 28))
	a.Update(rec("1931", -10))

	report := a.Report()
	require.Equal(t, fixedTime, report.GeneratedAt)

	want := []YearStat{
		{Year: "1930", Count: 2, Min: 28, Max: 61, Mean: 44.5},
		{Year: "1931", Count: 1, Min: -10, Max: -10, Mean: -10},
	}
	if diff := cmp.Diff(want, report.Rows); diff != "" {
		t.Errorf("report rows mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregator_UpdateIsOrderIndependent(t *testing.T) {
	withFixedClock(t)

	records := []domain.AcceptedRecord{rec("1930", 61), rec("1930", 28), rec("1931", 50)}

	baseline := New()
	for _, r := range records {
		baseline.Update(r)
	}
	want := baseline.Report().Rows

	for _, perm := range permutations(records) {
		a := New()
		for _, r := range perm {
			a.Update(r)
		}
		if diff := cmp.Diff(want, a.Report().Rows); diff != "" {
			t.Errorf("permutation %v produced different report (-want +got):\n%s", perm, diff)
		}
	}
}

func TestAggregator_MergeMatchesSequential(t *testing.T) {
	withFixedClock(t)

	records := []domain.AcceptedRecord{
		rec("1930", 61), rec("1930", 28), rec("1930", -5),
		rec("1931", 50), rec("1931", -10),
		rec("1932", 0),
	}

	sequential := New()
	for _, r := range records {
		sequential.Update(r)
	}
	want := sequential.Report().Rows

	// Every split point, merged in both orders.
	for cut := 0; cut <= len(records); cut++ {
		for _, swap := range []bool{false, true} {
			left, right := New(), New()
			for _, r := range records[:cut] {
				left.Update(r)
			}
			for _, r := range records[cut:] {
				right.Update(r)
			}

			merged := New()
			if swap {
				merged.Merge(right)
				merged.Merge(left)
			} else {
				merged.Merge(left)
				merged.Merge(right)
			}

			if diff := cmp.Diff(want, merged.Report().Rows); diff != "" {
				t.Errorf("cut=%d swap=%v (-want +got):\n%s", cut, swap, diff)
			}
		}
	}
}

func TestAggregator_MergeIsAssociative(t *testing.T) {
	withFixedClock(t)

	parts := [][]domain.AcceptedRecord{
		{rec("1930", 61), rec("1931", 50)},
		{rec("1930", 28)},
		{rec("1932", -3), rec("1930", 99)},
	}

	build := func(records []domain.AcceptedRecord) *Aggregator {
		a := New()
		for _, r := range records {
			a.Update(r)
		}
		return a
	}

	// (a ⋅ b) ⋅ c
	leftFirst := New()
	leftFirst.Merge(build(parts[0]))
	leftFirst.Merge(build(parts[1]))
	leftFirst.Merge(build(parts[2]))

	// a ⋅ (b ⋅ c)
	tail := build(parts[1])
	tail.Merge(build(parts[2]))
	rightFirst := build(parts[0])
	rightFirst.Merge(tail)

	if diff := cmp.Diff(leftFirst.Report().Rows, rightFirst.Report().Rows); diff != "" {
		t.Errorf("merge grouping changed the report (-left +right):\n%s", diff)
	}
}

func TestAggregator_EmptyIsMergeIdentity(t *testing.T) {
	withFixedClock(t)

	a := New()
	a.Update(rec("1930", 61))
	want := a.Report().Rows

	a.Merge(New())
	assert.Empty(t, cmp.Diff(want, a.Report().Rows))

	fresh := New()
	fresh.Merge(a)
	assert.Empty(t, cmp.Diff(want, fresh.Report().Rows))
}

func TestAggregator_EmptyReport(t *testing.T) {
	withFixedClock(t)

	report := New().Report()
	assert.NotNil(t, report.Rows)
	assert.Empty(t, report.Rows)
}

func TestAggregator_MergeCorruptPartialPanics(t *testing.T) {
	corrupt := New()
	corrupt.stats["1930"] = &yearStat{count: 0, min: 10, max: 20}

	assert.Panics(t, func() { New().Merge(corrupt) })
}

func TestAggregator_ReportSortedAscending(t *testing.T) {
	withFixedClock(t)

	a := New()
	for _, year := range []string{"1999", "1800", "1930", "2020"} {
		a.Update(rec(year, 1))
	}

	rows := a.Report().Rows
	require.Len(t, rows, 4)
	for i := 1; i < len(rows); i++ {
		assert.Less(t, rows[i-1].Year, rows[i].Year)
	}
}

// permutations returns all orderings of records. Inputs here are tiny, so the
// factorial blowup is fine.
func permutations(records []domain.AcceptedRecord) [][]domain.AcceptedRecord {
	if len(records) <= 1 {
		return [][]domain.AcceptedRecord{append([]domain.AcceptedRecord(nil), records...)}
	}

	var out [][]domain.AcceptedRecord
	for i := range records {
		rest := make([]domain.AcceptedRecord, 0, len(records)-1)
		rest = append(rest, records[:i]...)
		rest = append(rest, records[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]domain.AcceptedRecord{records[i]}, p...))
		}
	}
	return out
}
