package screening

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/hivscreen/pkg/errors"
	stypes "github.com/turtacn/hivscreen/pkg/types/screening"
)

var classroomHeader = []string{"Smiles", "Experimental activity", "Label"}

func fiveRowTable(t *testing.T) *Table {
	t.Helper()
	cells := [][]string{
		{"CCC1=[O+][Cu-3]2([O+]=C(CC)C1)[O+]=C(CC)CC(CC)=[O+]2", "CI", "0"},
		{"C(=Cc1ccccc1)C1=[O+][Cu-3]2([O+]=C(C=Cc3ccccc3)C1)[O+]=C(C=Cc1ccccc1)CC(C=Cc1ccccc1)=[O+]2", "CI", "0"},
		{"CC(=O)N1c2ccccc2Sc2c1ccc1ccccc21", "CM", "1"},
		{"Nc1ccc(C=Cc2ccc(N)cc2S(=O)(=O)O)c(S(=O)(=O)O)c1", "CI", "0"},
		{"O=S(=O)(O)CCS(=O)(=O)O", "CA", "1"},
	}
	tbl, err := NewTable(Presets[PresetClassroom], classroomHeader, cells)
	require.NoError(t, err)
	return tbl
}

// ─────────────────────────────────────────────────────────────────────────────
// Schema
// ─────────────────────────────────────────────────────────────────────────────

func TestResolveSchema_Presets(t *testing.T) {
	s, err := ResolveSchema("", Schema{})
	require.NoError(t, err)
	assert.Equal(t, "Label", s.Label)

	s, err = ResolveSchema("HIV", Schema{})
	require.NoError(t, err)
	assert.Equal(t, Schema{Smiles: "smiles", Activity: "activity", Label: "HIV_active"}, s)
}

func TestResolveSchema_Overrides(t *testing.T) {
	s, err := ResolveSchema(PresetHIV, Schema{Label: "y"})
	require.NoError(t, err)
	assert.Equal(t, "smiles", s.Smiles)
	assert.Equal(t, "y", s.Label)
}

func TestResolveSchema_UnknownPreset(t *testing.T) {
	_, err := ResolveSchema("tox21", Schema{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

// ─────────────────────────────────────────────────────────────────────────────
// Activity collapse
// ─────────────────────────────────────────────────────────────────────────────

func TestActivitySet_Collapse(t *testing.T) {
	set := NewActivitySet()

	cases := []struct {
		in    string
		label int
		ok    bool
	}{
		{"CI", 0, true},
		{"ci ", 0, true},
		{"CA", 1, true},
		{"CM", 1, true},
		{"", 0, false},
		{"XX", 0, false},
	}
	for _, tc := range cases {
		label, ok := set.Collapse(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.label, label, tc.in)
	}
}

func TestActivitySet_ConfirmedOnly(t *testing.T) {
	set := NewActivitySet("CA")
	label, ok := set.Collapse("CM")
	assert.False(t, ok)
	assert.Equal(t, 0, label)
}

// ─────────────────────────────────────────────────────────────────────────────
// Table construction
// ─────────────────────────────────────────────────────────────────────────────

func TestNewTable_PreservesOrderAndColumns(t *testing.T) {
	tbl := fiveRowTable(t)

	assert.Equal(t, 5, tbl.Len())
	assert.Equal(t, classroomHeader, tbl.Columns())
	recs := tbl.Records()
	for i, r := range recs {
		assert.Equal(t, i+1, r.Row)
		assert.Contains(t, []int{0, 1}, r.Label)
	}
	assert.Equal(t, "CM", recs[2].Activity)
	assert.True(t, recs[4].IsActive())
}

func TestNewTable_MissingLabelColumn(t *testing.T) {
	_, err := NewTable(Presets[PresetClassroom], []string{"Smiles", "Experimental activity"}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsParseError(err))
}

func TestNewTable_ActivityOptional(t *testing.T) {
	tbl, err := NewTable(Presets[PresetClassroom], []string{"Smiles", "Label"}, [][]string{{"C", "1"}})
	require.NoError(t, err)
	assert.Empty(t, tbl.Records()[0].Activity)
}

func TestNewTable_HeaderProblems(t *testing.T) {
	schema := Presets[PresetClassroom]
	cases := map[string][]string{
		"empty":     {},
		"blank":     {"Smiles", " ", "Label"},
		"duplicate": {"Smiles", "Label", "Label"},
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewTable(schema, header, nil)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeDatasetParseFailed))
		})
	}
}

func TestNewTable_RaggedRow(t *testing.T) {
	_, err := NewTable(Presets[PresetClassroom], classroomHeader, [][]string{{"C", "CI"}})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDatasetParseFailed))
	assert.Contains(t, err.Error(), "row=1")
}

func TestNewTable_LabelDomain(t *testing.T) {
	schema := Presets[PresetClassroom]

	_, err := NewTable(schema, classroomHeader, [][]string{{"C", "CI", "2"}})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeLabelOutOfDomain))
	assert.True(t, errors.IsParseError(err))

	tbl, err := NewTable(schema, classroomHeader, [][]string{{"C", "CI", "0.0"}, {"N", "CA", "1.0"}})
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Records()[0].Label)
	assert.Equal(t, 1, tbl.Records()[1].Label)
}

func TestLabelSpellings_AgreeAcrossCountAndDistribution(t *testing.T) {
	header := []string{"Smiles", "Label"}
	tbl, err := NewTable(Presets[PresetClassroom], header, [][]string{
		{"C", "01"}, {"N", "+1"}, {"O", "1"}, {"S", "1e0"}, {"P", "-0"}, {"F", "0.0"},
	})
	require.NoError(t, err)

	active := 0
	for _, rec := range tbl.Records() {
		if rec.IsActive() {
			active++
		}
	}
	n, err := Count(tbl, "Label", "1")
	require.NoError(t, err)
	assert.Equal(t, active, n)
	assert.Equal(t, 4, n)

	bars, err := Distribution(tbl, "Label")
	require.NoError(t, err)
	assert.Equal(t, []stypes.CategoryCount{{Value: "0", Count: 2}, {Value: "1", Count: 4}}, bars)

	s := Summarize(tbl, NewActivitySet())
	assert.Equal(t, n, s.Actives)
}

func TestNormalizeCell(t *testing.T) {
	cases := map[string]string{
		" 1 ":   "1",
		"1.0":   "1",
		"007":   "7",
		"+2":    "2",
		"-0":    "0",
		"1.5":   "1.5",
		"CI":    "CI",
		"NaN":   "NaN",
		"Inf":   "Inf",
		"1e300": "1e300",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizeCell(in), in)
	}
}

func TestNewTable_ExtraColumns(t *testing.T) {
	header := []string{"id", "smiles", "activity", "HIV_active"}
	tbl, err := NewTable(Presets[PresetHIV], header, [][]string{{"m1", "CCO", "CI", "0"}})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"id": "m1"}, tbl.Records()[0].Extra)
}

func TestTable_AccessorsReturnCopies(t *testing.T) {
	tbl := fiveRowTable(t)

	cols := tbl.Columns()
	cols[0] = "mutated"
	assert.Equal(t, "Smiles", tbl.Columns()[0])

	recs := tbl.Head(1)
	recs[0].Smiles = "mutated"
	assert.NotEqual(t, "mutated", tbl.Head(1)[0].Smiles)

	row := tbl.Row(0)
	row[2] = "9"
	v, err := tbl.Value(0, "Label")
	require.NoError(t, err)
	assert.Equal(t, "0", v)
}

func TestTable_Head(t *testing.T) {
	tbl := fiveRowTable(t)
	assert.Len(t, tbl.Head(3), 3)
	assert.Len(t, tbl.Head(50), 5)
	assert.Empty(t, tbl.Head(-1))
}

func TestTable_ValueErrors(t *testing.T) {
	tbl := fiveRowTable(t)

	_, err := tbl.Value(0, "pIC50")
	assert.True(t, errors.IsCode(err, errors.ErrCodeColumnNotFound))

	_, err = tbl.Value(10, "Label")
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
	assert.Nil(t, tbl.Row(10))
}

// ─────────────────────────────────────────────────────────────────────────────
// Summaries
// ─────────────────────────────────────────────────────────────────────────────

func TestCount_KnownComposition(t *testing.T) {
	tbl := fiveRowTable(t)

	n, err := Count(tbl, "Label", "1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = Count(tbl, "Label", "1.0")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = Count(tbl, "Experimental activity", "CI")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestCount_UnknownColumn(t *testing.T) {
	_, err := Count(fiveRowTable(t), "HIV_active", "1")
	assert.True(t, errors.IsCode(err, errors.ErrCodeColumnNotFound))
}

func TestValueCounts_Ordering(t *testing.T) {
	counts, err := ValueCounts(fiveRowTable(t), "Experimental activity")
	require.NoError(t, err)
	assert.Equal(t, []stypes.CategoryCount{
		{Value: "CI", Count: 3},
		{Value: "CA", Count: 1},
		{Value: "CM", Count: 1},
	}, counts)
}

func TestDistribution_TwoCategoriesTwoBars(t *testing.T) {
	bars, err := Distribution(fiveRowTable(t), "Label")
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, stypes.CategoryCount{Value: "0", Count: 3}, bars[0])
	assert.Equal(t, stypes.CategoryCount{Value: "1", Count: 2}, bars[1])
}

func TestDistribution_NumericOrder(t *testing.T) {
	header := []string{"Smiles", "Label", "fold"}
	cells := [][]string{{"C", "0", "10"}, {"C", "0", "2"}, {"C", "1", "9"}, {"C", "1", "2"}}
	tbl, err := NewTable(Presets[PresetClassroom], header, cells)
	require.NoError(t, err)

	bars, err := Distribution(tbl, "fold")
	require.NoError(t, err)
	assert.Equal(t, []stypes.CategoryCount{{Value: "2", Count: 2}, {Value: "9", Count: 1}, {Value: "10", Count: 1}}, bars)
}

func TestSummarize(t *testing.T) {
	s := Summarize(fiveRowTable(t), NewActivitySet())

	assert.Equal(t, 5, s.Records)
	assert.Equal(t, 2, s.Actives)
	assert.Equal(t, 3, s.Inactives)
	assert.InDelta(t, 0.4, s.ActiveRatio, 1e-9)
	assert.InDelta(t, 1.5, s.ImbalanceRatio, 1e-9)
	assert.Equal(t, 0, s.LabelMismatches)
	assert.Equal(t, []stypes.CategoryCount{{Value: "CA", Count: 1}, {Value: "CI", Count: 3}, {Value: "CM", Count: 1}}, s.ActivityCounts)
}

func TestSummarize_MismatchAndSingleClass(t *testing.T) {
	cells := [][]string{{"C", "CA", "0"}, {"N", "CI", "0"}}
	tbl, err := NewTable(Presets[PresetClassroom], classroomHeader, cells)
	require.NoError(t, err)

	s := Summarize(tbl, NewActivitySet())
	assert.Equal(t, 1, s.LabelMismatches)
	assert.Zero(t, s.ImbalanceRatio)
	assert.Zero(t, s.ActiveRatio)
}
