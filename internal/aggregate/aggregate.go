// Package aggregate maintains per-year temperature statistics and the
// associative merge that makes partitioned runs equivalent to sequential
// ones. Accumulation is pure integer arithmetic; the mean is a single
// floating-point division performed at report time so rounding error never
// compounds across updates.
package aggregate

import (
	"fmt"
	"sort"
	"time"

	"github.com/couchcryptid/ncdc-temperature-etl/internal/domain"
)

// yearStat is the mutable accumulator for one year. A stat only exists once
// a record has been observed, so count is always >= 1; min/max are therefore
// always defined.
type yearStat struct {
	count int64
	min   int
	max   int
	sum   int64
}

// YearStat is one immutable report row. Mean is populated only when the row
// is rendered by Report.
type YearStat struct {
	Year  string  `json:"year"`
	Count int64   `json:"count"`
	Min   int     `json:"min"`
	Max   int     `json:"max"`
	Mean  float64 `json:"mean"`
}

// Report is the terminal artifact of a run: one row per observed year,
// ascending by year.
type Report struct {
	GeneratedAt time.Time  `json:"generated_at"`
	Rows        []YearStat `json:"rows"`
}

// Aggregator folds accepted records into per-year statistics. It is not safe
// for concurrent use: each worker owns its own Aggregator exclusively and
// partial results are combined through Merge.
type Aggregator struct {
	stats map[string]*yearStat
}

// New returns an empty Aggregator, the identity element under Merge.
func New() *Aggregator {
	return &Aggregator{stats: make(map[string]*yearStat)}
}

// Update folds one accepted record into the running statistics for its year,
// lazily creating the year on first sight. Count, min, max, and sum are all
// commutative aggregates, so the result is independent of record order.
func (a *Aggregator) Update(rec domain.AcceptedRecord) {
	s, ok := a.stats[rec.Year]
	if !ok {
		a.stats[rec.Year] = &yearStat{
			count: 1,
			min:   rec.Temperature,
			max:   rec.Temperature,
			sum:   int64(rec.Temperature),
		}
		return
	}

	s.count++
	s.min = min(s.min, rec.Temperature)
	s.max = max(s.max, rec.Temperature)
	s.sum += int64(rec.Temperature)
}

// Merge folds another aggregator's partial statistics into this one,
// year by year. Merge is associative and commutative, so partials from any
// partitioning of the input combine to the same result in any order. The
// other aggregator must not be used afterwards.
//
// A partial with a zero count is structurally impossible through Update and
// indicates corrupt state; Merge panics rather than propagate it.
func (a *Aggregator) Merge(other *Aggregator) {
	for year, os := range other.stats {
		if os.count == 0 {
			panic(fmt.Sprintf("aggregate: merging corrupt partial state: year %q has count 0", year))
		}

		s, ok := a.stats[year]
		if !ok {
			a.stats[year] = os
			continue
		}

		s.count += os.count
		s.min = min(s.min, os.min)
		s.max = max(s.max, os.max)
		s.sum += os.sum
	}
}

// Years returns the number of distinct years observed.
func (a *Aggregator) Years() int { return len(a.stats) }

// Report renders the accumulated statistics as rows sorted ascending by
// year, computing each mean here and only here. Zero observed years yield an
// empty (non-nil) row slice.
func (a *Aggregator) Report() Report {
	rows := make([]YearStat, 0, len(a.stats))
	for year, s := range a.stats {
		rows = append(rows, YearStat{
			Year:  year,
			Count: s.count,
			Min:   s.min,
			Max:   s.max,
			Mean:  float64(s.sum) / float64(s.count),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Year < rows[j].Year })

	return Report{
		GeneratedAt: domain.Now(),
		Rows:        rows,
	}
}
