package screening

import (
	"fmt"
	"strings"

	"github.com/turtacn/hivscreen/pkg/errors"
	stypes "github.com/turtacn/hivscreen/pkg/types/screening"
)

// ─────────────────────────────────────────────────────────────────────────────
// Record
// ─────────────────────────────────────────────────────────────────────────────

// Record is one molecule row.  Smiles is carried as an opaque token.
type Record struct {
	// Row is the 1-based data row number (the header is row 0).
	Row      int               `json:"row"`
	Smiles   string            `json:"smiles"`
	Activity string            `json:"experimental_activity,omitempty"`
	Label    int               `json:"label"`
	Extra    map[string]string `json:"extra,omitempty"`
}

// IsActive reports whether the record is labelled active.
func (r Record) IsActive() bool { return r.Label == stypes.LabelActive }

// ─────────────────────────────────────────────────────────────────────────────
// Table
// ─────────────────────────────────────────────────────────────────────────────

// Table is the ordered, immutable in-memory dataset.  Row order equals file
// order.  All accessors return copies.
type Table struct {
	schema  Schema
	columns []string
	index   map[string]int
	cells   [][]string
	records []Record
}

// NewTable validates a header and its data rows against schema and builds the
// Table.  Header problems and ragged rows fail with ErrCodeDatasetParseFailed;
// a label outside {0,1} fails with ErrCodeLabelOutOfDomain.  cells is owned by
// the Table after the call.
func NewTable(schema Schema, header []string, cells [][]string) (*Table, error) {
	index, err := indexHeader(header)
	if err != nil {
		return nil, err
	}
	for _, col := range schema.Required() {
		if _, ok := index[col]; !ok {
			return nil, errors.New(errors.ErrCodeDatasetParseFailed, "required column missing from header").
				WithDetail(fmt.Sprintf("column=%q header=%q", col, header))
		}
	}

	smilesIdx := index[schema.Smiles]
	labelIdx := index[schema.Label]
	activityIdx, hasActivity := index[schema.Activity]

	records := make([]Record, 0, len(cells))
	for i, row := range cells {
		rowNum := i + 1
		if len(row) != len(header) {
			return nil, errors.New(errors.ErrCodeDatasetParseFailed, "row has wrong number of fields").
				WithDetail(fmt.Sprintf("row=%d fields=%d expected=%d", rowNum, len(row), len(header)))
		}
		label, err := parseLabel(row[labelIdx])
		if err != nil {
			return nil, err.WithDetail(fmt.Sprintf("row=%d column=%q value=%q", rowNum, schema.Label, row[labelIdx]))
		}
		rec := Record{
			Row:    rowNum,
			Smiles: row[smilesIdx],
			Label:  label,
		}
		if hasActivity {
			rec.Activity = row[activityIdx]
		}
		for j, col := range header {
			if j == smilesIdx || j == labelIdx || (hasActivity && j == activityIdx) {
				continue
			}
			if rec.Extra == nil {
				rec.Extra = make(map[string]string, len(header)-3)
			}
			rec.Extra[col] = row[j]
		}
		records = append(records, rec)
	}

	columns := make([]string, len(header))
	copy(columns, header)
	return &Table{
		schema:  schema,
		columns: columns,
		index:   index,
		cells:   cells,
		records: records,
	}, nil
}

func indexHeader(header []string) (map[string]int, error) {
	if len(header) == 0 {
		return nil, errors.New(errors.ErrCodeDatasetParseFailed, "header row is missing")
	}
	index := make(map[string]int, len(header))
	for i, col := range header {
		if strings.TrimSpace(col) == "" {
			return nil, errors.New(errors.ErrCodeDatasetParseFailed, "header has a blank column name").
				WithDetail(fmt.Sprintf("position=%d", i+1))
		}
		if _, dup := index[col]; dup {
			return nil, errors.New(errors.ErrCodeDatasetParseFailed, "header has a duplicate column name").
				WithDetail(fmt.Sprintf("column=%q", col))
		}
		index[col] = i
	}
	return index, nil
}

// parseLabel accepts 0 and 1 in any numeric spelling that Count and
// Distribution treat as the same category, such as "1.0" written by pandas.
func parseLabel(s string) (int, *errors.AppError) {
	switch normalizeCell(s) {
	case "0":
		return stypes.LabelInactive, nil
	case "1":
		return stypes.LabelActive, nil
	}
	return 0, errors.New(errors.ErrCodeLabelOutOfDomain, "label must be 0 or 1")
}

// Schema returns the schema the table was validated against.
func (t *Table) Schema() Schema { return t.schema }

// Len returns the number of records.
func (t *Table) Len() int { return len(t.records) }

// Columns returns the header in file order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// HasColumn reports whether column is part of the header.
func (t *Table) HasColumn(column string) bool {
	_, ok := t.index[column]
	return ok
}

// Records returns a copy of all records in row order.
func (t *Table) Records() []Record {
	return t.Head(len(t.records))
}

// Head returns up to the first n records.  A negative n returns nothing.
func (t *Table) Head(n int) []Record {
	if n < 0 {
		n = 0
	}
	if n > len(t.records) {
		n = len(t.records)
	}
	out := make([]Record, n)
	for i := 0; i < n; i++ {
		out[i] = t.records[i]
		if t.records[i].Extra != nil {
			extra := make(map[string]string, len(t.records[i].Extra))
			for k, v := range t.records[i].Extra {
				extra[k] = v
			}
			out[i].Extra = extra
		}
	}
	return out
}

// Row returns a copy of the raw cells of the i-th record (0-based).
func (t *Table) Row(i int) []string {
	if i < 0 || i >= len(t.cells) {
		return nil
	}
	out := make([]string, len(t.cells[i]))
	copy(out, t.cells[i])
	return out
}

// Value returns the cell at record i (0-based) and column.
func (t *Table) Value(i int, column string) (string, error) {
	j, ok := t.index[column]
	if !ok {
		return "", columnNotFound(column, t.columns)
	}
	if i < 0 || i >= len(t.cells) {
		return "", errors.InvalidParam("row index out of range").WithDetail(fmt.Sprintf("index=%d len=%d", i, len(t.cells)))
	}
	return t.cells[i][j], nil
}

// ColumnValues returns every cell of column in row order.
func (t *Table) ColumnValues(column string) ([]string, error) {
	j, ok := t.index[column]
	if !ok {
		return nil, columnNotFound(column, t.columns)
	}
	out := make([]string, len(t.cells))
	for i, row := range t.cells {
		out[i] = row[j]
	}
	return out, nil
}

func columnNotFound(column string, columns []string) *errors.AppError {
	return errors.New(errors.ErrCodeColumnNotFound, "column not found").
		WithDetail(fmt.Sprintf("column=%q available=%q", column, columns))
}

//Personal.AI order the ending
