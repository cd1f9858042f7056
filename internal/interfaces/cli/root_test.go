package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/hivscreen/internal/config"
	"github.com/turtacn/hivscreen/pkg/errors"
)

// writeConfig writes cfg (defaults when nil) to a temp file and returns its path.
func writeConfig(t *testing.T, cfg *config.Config) string {
	t.Helper()
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	path := filepath.Join(t.TempDir(), "hivscreen.yaml")
	require.NoError(t, config.WriteFile(cfg, path, false))
	return path
}

// runCLI executes the root command against a private config file and returns
// what it wrote to stdout.
func runCLI(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	if cfgPath == "" {
		cfgPath = writeConfig(t, nil)
	}
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"-c", cfgPath, "--no-color", "--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestNewRootCommand_Structure(t *testing.T) {
	cmd := NewRootCommand()

	assert.Equal(t, "hivscreen", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.True(t, cmd.SilenceUsage)
	assert.True(t, cmd.SilenceErrors)

	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"head", "count", "counts", "summary", "plot", "config", "version"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestNewRootCommand_GlobalFlags(t *testing.T) {
	pf := NewRootCommand().PersistentFlags()
	for _, name := range []string{
		"config", "log-level", "verbose", "output", "no-color",
		"schema", "label-col", "smiles-col", "activity-col", "delimiter", "metrics-file",
	} {
		assert.NotNil(t, pf.Lookup(name), "missing flag --%s", name)
	}
	assert.Equal(t, "c", pf.Lookup("config").Shorthand)
	assert.Equal(t, "o", pf.Lookup("output").Shorthand)
	assert.Equal(t, "text", pf.Lookup("output").DefValue)
}

func TestRoot_InvalidOutputFormat(t *testing.T) {
	_, err := runCLI(t, "", "-o", "xml", "version")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

func TestRoot_InvalidConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("plot:\n  format: gif\n"), 0o644))

	_, err := runCLI(t, path, "version")
	require.Error(t, err)
	assert.Equal(t, 4, errors.ExitStatusForCode(errors.GetCode(err)))
}

func TestRoot_FlagsOverrideConfig(t *testing.T) {
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{
		"-c", writeConfig(t, nil), "--no-color", "-o", "json",
		"--schema", "hiv", "--label-col", "y", "--delimiter", "tab", "-v",
		"config", "show",
	})
	require.NoError(t, cmd.Execute())

	var got config.Config
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "hiv", got.Dataset.Schema)
	assert.Equal(t, "y", got.Dataset.Columns.Label)
	assert.Equal(t, "tab", got.Dataset.Delimiter)
	assert.Equal(t, "debug", got.Log.Level)
}

func TestGetCLIContext_Missing(t *testing.T) {
	_, err := GetCLIContext(NewVersionCmd())
	require.Error(t, err)
}

func TestVersionCmd(t *testing.T) {
	origVersion, origCommit := Version, GitCommit
	Version, GitCommit = "1.2.3", "abc1234"
	t.Cleanup(func() { Version, GitCommit = origVersion, origCommit })

	out, err := runCLI(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "hivscreen 1.2.3")
	assert.Contains(t, out, "abc1234")

	out, err = runCLI(t, "", "-o", "json", "version")
	require.NoError(t, err)
	var info BuildInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "1.2.3", info.Version)
	assert.NotEmpty(t, info.GoVersion)
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "hivscreen.yaml")

	out, err := runCLI(t, "", "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "OK: configuration written to "+path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.NewDefaultConfig(), cfg)

	_, err = runCLI(t, "", "config", "init", path)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
	assert.Contains(t, errors.Unwrap(err).Error(), "already exists")

	_, err = runCLI(t, "", "config", "init", "--force", path)
	require.NoError(t, err)
}

func TestConfigShow_RedactsSecrets(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Cache.Password = "hunter2"
	cfg.Storage.SecretAccessKey = "minio-secret"

	out, err := runCLI(t, writeConfig(t, cfg), "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "schema: classroom")
	assert.Contains(t, out, "******")
	assert.NotContains(t, out, "hunter2")
	assert.NotContains(t, out, "minio-secret")
}

func TestFormatTable(t *testing.T) {
	got := FormatTable([]string{"Label", "Count"}, [][]string{{"0", "3"}, {"1", "2"}})
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")

	require.Len(t, lines, 4)
	assert.Equal(t, "Label  Count", lines[0])
	assert.Equal(t, "-----  -----", lines[1])
	assert.Equal(t, "0      3", lines[2])
	assert.Empty(t, FormatTable(nil, nil))
}

func TestPadRight_Unicode(t *testing.T) {
	assert.Equal(t, "é  ", padRight("é", 3))
	assert.Equal(t, "long", padRight("long", 2))
}

func TestPrintError(t *testing.T) {
	cmd := NewRootCommand()
	var errOut bytes.Buffer
	cmd.SetErr(&errOut)

	PrintError(cmd, nil)
	assert.Empty(t, errOut.String())

	PrintError(cmd, errors.New(errors.ErrCodeDatasetNotFound, "dataset file not found"))
	assert.Contains(t, errOut.String(), "[DATA_001] dataset file not found")
}

//Personal.AI order the ending
