package screening

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	stypes "github.com/turtacn/hivscreen/pkg/types/screening"
)

// maxExactInt is the largest integer a float64 holds exactly.
const maxExactInt = 1 << 53

// Count returns the number of records whose column equals value.  Cells and
// value are compared after trimming; numeric spellings compare numerically so
// "1" matches "1.0".
func Count(t *Table, column, value string) (int, error) {
	values, err := t.ColumnValues(column)
	if err != nil {
		return 0, err
	}
	want := normalizeCell(value)
	n := 0
	for _, v := range values {
		if normalizeCell(v) == want {
			n++
		}
	}
	return n, nil
}

// ValueCounts returns each distinct value of column with its count, ordered
// by count descending and then by value.
func ValueCounts(t *Table, column string) ([]stypes.CategoryCount, error) {
	counts, err := tally(t, column)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Value < counts[j].Value
	})
	return counts, nil
}

// Distribution returns one bar per distinct value of column in category
// order: numerically when every value is a number, lexically otherwise.
// Each bar's Count is the number of records holding that value.
func Distribution(t *Table, column string) ([]stypes.CategoryCount, error) {
	bars, err := tally(t, column)
	if err != nil {
		return nil, err
	}
	numeric := true
	nums := make(map[string]float64, len(bars))
	for _, b := range bars {
		f, perr := strconv.ParseFloat(b.Value, 64)
		if perr != nil {
			numeric = false
			break
		}
		nums[b.Value] = f
	}
	sort.SliceStable(bars, func(i, j int) bool {
		if numeric {
			return nums[bars[i].Value] < nums[bars[j].Value]
		}
		return bars[i].Value < bars[j].Value
	})
	return bars, nil
}

// Summarize computes the class balance report for t.  activeSet decides how
// raw outcomes collapse when checking labels for consistency.
func Summarize(t *Table, activeSet ActivitySet) stypes.Summary {
	s := stypes.Summary{
		Columns:     t.Columns(),
		Records:     t.Len(),
		GeneratedAt: time.Now().UTC(),
	}

	activity := make(map[string]int)
	for _, rec := range t.records {
		if rec.IsActive() {
			s.Actives++
		} else {
			s.Inactives++
		}
		if rec.Activity == "" {
			continue
		}
		activity[strings.ToUpper(strings.TrimSpace(rec.Activity))]++
		if collapsed, ok := activeSet.Collapse(rec.Activity); ok && collapsed != rec.Label {
			s.LabelMismatches++
		}
	}

	if s.Records > 0 {
		s.ActiveRatio = float64(s.Actives) / float64(s.Records)
	}
	if s.Actives > 0 && s.Inactives > 0 {
		major, minor := s.Inactives, s.Actives
		if minor > major {
			major, minor = minor, major
		}
		s.ImbalanceRatio = float64(major) / float64(minor)
	}

	for v, c := range activity {
		s.ActivityCounts = append(s.ActivityCounts, stypes.CategoryCount{Value: v, Count: c})
	}
	sort.Slice(s.ActivityCounts, func(i, j int) bool {
		return s.ActivityCounts[i].Value < s.ActivityCounts[j].Value
	})
	return s
}

// tally counts distinct normalised values in first-seen order.
func tally(t *Table, column string) ([]stypes.CategoryCount, error) {
	values, err := t.ColumnValues(column)
	if err != nil {
		return nil, err
	}
	pos := make(map[string]int)
	var out []stypes.CategoryCount
	for _, v := range values {
		v = normalizeCell(v)
		if i, ok := pos[v]; ok {
			out[i].Count++
			continue
		}
		pos[v] = len(out)
		out = append(out, stypes.CategoryCount{Value: v, Count: 1})
	}
	return out, nil
}

// normalizeCell trims s and rewrites integral numbers ("1.0", "01", "+1",
// "1e0") in their canonical integer form.
func normalizeCell(s string) string {
	s = strings.TrimSpace(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.Abs(f) > maxExactInt || f != math.Trunc(f) {
		return s
	}
	return strconv.FormatInt(int64(f), 10)
}
