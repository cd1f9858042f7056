// Package screening defines the public data-transfer types produced by
// hivscreen.  They are plain JSON-serialisable structs with no behaviour so
// that the CLI, the summary cache and external tooling share one shape.
package screening

import "time"

// Label values for the binary activity column.
const (
	LabelInactive = 0
	LabelActive   = 1
)

// CategoryCount is one distinct value of a column and the number of records
// holding it.  A bar in a count plot is a CategoryCount.
type CategoryCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Summary is the descriptive report for a loaded dataset.
type Summary struct {
	Dataset string   `json:"dataset"`
	Digest  string   `json:"digest,omitempty"`
	Columns []string `json:"columns"`

	Records   int `json:"records"`
	Actives   int `json:"actives"`
	Inactives int `json:"inactives"`

	// ActiveRatio is Actives/Records, or 0 for an empty dataset.
	ActiveRatio float64 `json:"active_ratio"`

	// ImbalanceRatio is majority/minority class size.  It is 0 when either
	// class is absent.
	ImbalanceRatio float64 `json:"imbalance_ratio"`

	// ActivityCounts holds the raw screening outcome histogram (CI/CA/CM).
	ActivityCounts []CategoryCount `json:"activity_counts,omitempty"`

	// LabelMismatches counts rows whose label disagrees with the collapsed
	// experimental activity.
	LabelMismatches int `json:"label_mismatches"`

	GeneratedAt time.Time `json:"generated_at"`
}

// PlotResult describes a rendered count plot.
type PlotResult struct {
	Column    string          `json:"column"`
	Bars      []CategoryCount `json:"bars"`
	Path      string          `json:"path,omitempty"`
	Format    string          `json:"format,omitempty"`
	ObjectKey string          `json:"object_key,omitempty"`
	URL       string          `json:"url,omitempty"`
}

//Personal.AI order the ending
