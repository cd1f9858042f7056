package csvfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/hivscreen/internal/domain/screening"
	"github.com/turtacn/hivscreen/pkg/errors"
)

const classroomCSV = `Smiles,Experimental activity,Label
CCC1=[O+][Cu-3]2([O+]=C(CC)C1)[O+]=C(CC)CC(CC)=[O+]2,CI,0
CC(=O)N1c2ccccc2Sc2c1ccc1ccccc21,CM,1
"O=C(O)c1ccccc1,Cl",CI,0
Nc1ccc(C=Cc2ccc(N)cc2S(=O)(=O)O)c(S(=O)(=O)O)c1,CI,0
O=S(=O)(O)CCS(=O)(=O)O,CA,1
`

func writeDataset(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func classroomLoader() *Loader {
	return NewLoader(screening.Presets[screening.PresetClassroom], 0, nil)
}

func TestLoad_Classroom(t *testing.T) {
	p := writeDataset(t, "train.csv", classroomCSV)

	tbl, err := classroomLoader().Load(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, 5, tbl.Len())
	assert.Equal(t, []string{"Smiles", "Experimental activity", "Label"}, tbl.Columns())
	recs := tbl.Records()
	assert.Equal(t, "O=C(O)c1ccccc1,Cl", recs[2].Smiles)
	for _, r := range recs {
		assert.Contains(t, []int{0, 1}, r.Label)
	}

	n, err := screening.Count(tbl, "Label", "1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestLoad_MoleculeNetSemicolonWithBOM(t *testing.T) {
	content := "\uFEFFsmiles;activity;HIV_active\n CCO ; CI ; 0\nc1ccccc1;CA;1\n"
	p := writeDataset(t, "HIV.csv", content)

	tbl, err := NewLoader(screening.Presets[screening.PresetHIV], 0, nil).Load(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, []string{"smiles", "activity", "HIV_active"}, tbl.Columns())
	assert.Equal(t, "CCO", tbl.Records()[0].Smiles)
	assert.Equal(t, "CI", tbl.Records()[0].Activity)
	assert.Equal(t, 1, tbl.Records()[1].Label)
}

func TestLoad_FixedTabDelimiter(t *testing.T) {
	p := writeDataset(t, "train.tsv", "Smiles\tExperimental activity\tLabel\nC,C\tCI\t0\n")

	tbl, err := NewLoader(screening.Presets[screening.PresetClassroom], '\t', nil).Load(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "C,C", tbl.Records()[0].Smiles)
}

func TestLoad_HeaderOnly(t *testing.T) {
	p := writeDataset(t, "empty.csv", "Smiles,Experimental activity,Label\n")
	tbl, err := classroomLoader().Load(context.Background(), p)
	require.NoError(t, err)
	assert.Zero(t, tbl.Len())
}

func TestLoad_Errors(t *testing.T) {
	cases := []struct {
		name    string
		content string
		code    errors.ErrorCode
		detail  string
	}{
		{"empty file", "", errors.ErrCodeDatasetParseFailed, ""},
		{"missing label", "Smiles,Experimental activity\nC,CI\n", errors.ErrCodeDatasetParseFailed, `column="Label"`},
		{"ragged row", "Smiles,Experimental activity,Label\nC,CI,0\nN,CA\n", errors.ErrCodeDatasetParseFailed, "row=2"},
		{"bad quote", "Smiles,Experimental activity,Label\nC,CI,0\n\"N,CA,1\n", errors.ErrCodeDatasetParseFailed, "row="},
		{"label domain", "Smiles,Experimental activity,Label\nC,CI,2\n", errors.ErrCodeLabelOutOfDomain, "row=1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := writeDataset(t, "bad.csv", tc.content)
			_, err := classroomLoader().Load(context.Background(), p)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, tc.code), err.Error())
			assert.True(t, errors.IsParseError(err) || errors.IsCode(err, errors.ErrCodeDatasetParseFailed))
			assert.Contains(t, err.Error(), tc.detail)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := classroomLoader().Load(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.True(t, errors.IsDatasetNotFound(err))
	assert.True(t, os.IsNotExist(errors.Unwrap(err)))
}

func TestLoad_CancelledContext(t *testing.T) {
	p := writeDataset(t, "train.csv", classroomCSV)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := classroomLoader().Load(ctx, p)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCancelled))
}

func TestSniffDelimiter(t *testing.T) {
	cases := map[string]rune{
		"a,b,c":       ',',
		"a;b;c":       ';',
		"a\tb\tc":     '\t',
		"a|b|c":       '|',
		`"x;y;z",b,c`: ',',
		"single":      ',',
		"a;b,c;d":     ';',
	}
	for line, want := range cases {
		assert.Equal(t, string(want), string(SniffDelimiter(line)), line)
	}
}

func TestDigest(t *testing.T) {
	a := writeDataset(t, "a.csv", classroomCSV)
	b := writeDataset(t, "b.csv", classroomCSV)
	c := writeDataset(t, "c.csv", strings.Replace(classroomCSV, "CA,1", "CA,0", 1))

	da, err := Digest(a)
	require.NoError(t, err)
	db, err := Digest(b)
	require.NoError(t, err)
	dc, err := Digest(c)
	require.NoError(t, err)

	assert.Len(t, da, 64)
	assert.Equal(t, da, db)
	assert.NotEqual(t, da, dc)

	_, err = Digest(filepath.Join(t.TempDir(), "absent.csv"))
	assert.True(t, errors.IsDatasetNotFound(err))
}
