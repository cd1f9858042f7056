package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// ClassroomCSV is the five-row classroom training set head: three confirmed
// inactives and two actives (one CM, one CA).
const ClassroomCSV = `Smiles,Experimental activity,Label
CCC1=[O+][Cu-3]2([O+]=C(CC)C1)[O+]=C(CC)CC(CC)=[O+]2,CI,0
"C(=Cc1ccccc1)C1=[O+][Cu-3]2([O+]=C(C=Cc3ccccc3)C1)[O+]=C(C=Cc1ccccc1)CC(C=Cc1ccccc1)=[O+]2",CI,0
CC(=O)N1c2ccccc2Sc2c1ccc1ccccc21,CM,1
Nc1ccc(C=Cc2ccc(N)cc2S(=O)(=O)O)c(S(=O)(=O)O)c1,CI,0
O=S(=O)(O)CCS(=O)(=O)O,CA,1
`

// HIVCSV is a semicolon-delimited MoleculeNet-style table.
const HIVCSV = "smiles;activity;HIV_active\nCCO;CI;0\nCCN;CA;1\nCCC;CI;0\n"

// WriteFile writes content to name inside a per-test temp directory and
// returns the full path.
func WriteFile(t testing.TB, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
