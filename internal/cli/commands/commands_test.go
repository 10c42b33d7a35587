package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/conduit-lang/annotate/internal/cli/config"
	"github.com/conduit-lang/annotate/runtime/decorator"
)

// run executes the root command in a fresh temp directory.
func run(t *testing.T, dir string, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	oldWd, wdErr := os.Getwd()
	require.NoError(t, wdErr)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(oldWd)

	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(args, "--no-color"))

	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeDemoSnapshot(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "annotations.json")
	_, _, err := run(t, dir, "demo", "--out", path)
	require.NoError(t, err)
	return path
}

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "annotate", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	for _, name := range []string{"version", "demo", "inspect"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "", formatFlag.DefValue)
}

func TestVersionCommand(t *testing.T) {
	Version = "1.0.0-test"
	defer func() { Version = "dev" }()

	stdout, _, err := run(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "1.0.0-test")
	assert.Contains(t, stdout, "Go version:")
}

func TestDemoCommand_Stdout(t *testing.T) {
	stdout, _, err := run(t, t.TempDir(), "demo")
	require.NoError(t, err)

	snap, err := decorator.LoadSnapshot([]byte(stdout))
	require.NoError(t, err)
	assert.Equal(t, []string{"Service.Health", "Service.Run", "Service.Stop"}, snap.Names())
}

func TestDemoCommand_OutFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")

	stdout, _, err := run(t, dir, "demo", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Snapshot written to")
	assert.FileExists(t, path)
}

func TestInspectCommand_ListMembers(t *testing.T) {
	dir := t.TempDir()
	writeDemoSnapshot(t, dir)

	// Path comes from the snapshot.path default.
	stdout, _, err := run(t, dir, "inspect")
	require.NoError(t, err)
	assert.Contains(t, stdout, "MEMBER")
	assert.Contains(t, stdout, "owner, route, version")
	assert.Contains(t, stdout, "Service.Health")
}

func TestInspectCommand_MemberTable(t *testing.T) {
	dir := t.TempDir()
	path := writeDemoSnapshot(t, dir)

	stdout, _, err := run(t, dir, "inspect", path, "--member", "Service.Run")
	require.NoError(t, err)
	assert.Contains(t, stdout, "owner:   team-a")
	assert.Contains(t, stdout, "version: 2")
}

func TestInspectCommand_KeysJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeDemoSnapshot(t, dir)

	stdout, _, err := run(t, dir, "inspect", path, "--member", "Service.Run", "--keys", "owner,version", "--format", "json")
	require.NoError(t, err)

	var values map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &values))
	assert.Equal(t, map[string]any{"owner": "team-a", "version": float64(2)}, values)
}

func TestInspectCommand_KeyNotFound(t *testing.T) {
	dir := t.TempDir()
	path := writeDemoSnapshot(t, dir)

	stdout, stderr, err := run(t, dir, "inspect", path, "--member", "Service.Run", "--keys", "owner,ownr")
	require.ErrorIs(t, err, errReported)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "KEY NOT FOUND")
	assert.Contains(t, stderr, "Did you mean: owner?")
}

func TestInspectCommand_EmptyKey(t *testing.T) {
	dir := t.TempDir()
	path := writeDemoSnapshot(t, dir)

	_, stderr, err := run(t, dir, "inspect", path, "--member", "Service.Run", "--keys", "owner,")
	require.ErrorIs(t, err, errReported)
	assert.Contains(t, stderr, "INVALID KEY")
}

func TestInspectCommand_MemberNotFound(t *testing.T) {
	dir := t.TempDir()
	path := writeDemoSnapshot(t, dir)

	_, stderr, err := run(t, dir, "inspect", path, "--member", "Service.Rn")
	require.ErrorIs(t, err, errReported)
	assert.Contains(t, stderr, "MEMBER NOT FOUND")
	assert.Contains(t, stderr, "Service.Run")
}

func TestInspectCommand_MetadataNotFound(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snap.json")
	content := `{"id": "x", "version": "1.0", "members": [{"type": "app.Service", "property": "Idle"}]}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, stderr, err := run(t, dir, "inspect", path, "--member", "Service.Idle", "--keys", "owner")
	require.ErrorIs(t, err, errReported)
	assert.Contains(t, stderr, "METADATA NOT FOUND")
}

func TestInspectCommand_MissingFile(t *testing.T) {
	_, _, err := run(t, t.TempDir(), "inspect", "nope.json")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "failed to read snapshot"))
}

func TestInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "annotate.yml"), []byte("output:\n  format: xml\n"), 0644))

	_, stderr, err := run(t, dir, "version")
	require.ErrorIs(t, err, errReported)
	assert.Contains(t, stderr, "CONFIGURATION ERROR")
}

func TestFormatFlagOverridesConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "annotate.yml"), []byte("output:\n  format: json\n"), 0644))
	path := writeDemoSnapshot(t, dir)

	stdout, _, err := run(t, dir, "inspect", path, "--format", "table")
	require.NoError(t, err)
	assert.Contains(t, stdout, "MEMBER")

	stdout, _, err = run(t, dir, "inspect", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(stdout), "["))
}

func TestUnsupportedFormatFlag(t *testing.T) {
	_, stderr, err := run(t, t.TempDir(), "version", "--format", "xml")
	require.ErrorIs(t, err, errReported)
	assert.Contains(t, stderr, "unsupported format: xml")
}

func TestVersionCommand_NoColorLeavesGlobal(t *testing.T) {
	saved := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = saved }()

	stdout, _, err := run(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.False(t, color.NoColor)
	assert.NotContains(t, stdout, "\x1b[")
}

func TestInspectCommand_ConfiguredSnapshotPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "annotate.yml"), []byte("snapshot:\n  path: build/meta.json\n"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "build"), 0755))

	_, _, err := run(t, dir, "demo", "--out", filepath.Join(dir, "build", "meta.json"))
	require.NoError(t, err)

	stdout, _, err := run(t, dir, "inspect")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Service.Run")

	// Relative paths resolve against the working directory.
	_, _, err = run(t, filepath.Join(dir, "build"), "inspect")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read snapshot")
}

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	saved := newLogger
	newLogger = func(*config.Config) (*zap.Logger, error) { return zap.New(core), nil }
	t.Cleanup(func() { newLogger = saved })
	return logs
}

func TestDefaultsLogged(t *testing.T) {
	t.Run("no config file", func(t *testing.T) {
		logs := observeLogs(t)
		_, _, err := run(t, t.TempDir(), "version")
		require.NoError(t, err)
		assert.Equal(t, 1, logs.FilterMessage("no annotate.yml found, using defaults").Len())
	})

	t.Run("config file present", func(t *testing.T) {
		logs := observeLogs(t)
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "annotate.yml"), []byte("log:\n  level: debug\n"), 0644))

		_, _, err := run(t, dir, "version")
		require.NoError(t, err)
		assert.Zero(t, logs.FilterMessage("no annotate.yml found, using defaults").Len())
	})
}

func TestInspectCommand_AmbiguousMember(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snap.json")
	content := `{"id": "x", "version": "1.0", "members": [
		{"type": "example.com/a.Service", "property": "Run", "metadata": {"owner": "a"}},
		{"type": "example.com/b.Service", "property": "Run", "metadata": {"owner": "b"}}
	]}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, stderr, err := run(t, dir, "inspect", path, "--member", "Service.Run")
	require.ErrorIs(t, err, errReported)
	assert.Contains(t, stderr, "AMBIGUOUS MEMBER")
	assert.Contains(t, stderr, "example.com/a.Service.Run, example.com/b.Service.Run")

	stdout, _, err := run(t, dir, "inspect", path, "--member", "example.com/b.Service.Run")
	require.NoError(t, err)
	assert.Contains(t, stdout, "owner: b")
}

func TestInspectCommand_EmptySnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"id": "x", "version": "1.0", "members": []}`), 0644))

	stdout, stderr, err := run(t, dir, "inspect", path)
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "EMPTY SNAPSHOT")
}

func stubPicker(t *testing.T, terminal bool, pick func([]string) (string, error)) {
	t.Helper()
	savedPick, savedTerm := pickMember, isTerminal
	pickMember = pick
	isTerminal = func() bool { return terminal }
	t.Cleanup(func() { pickMember, isTerminal = savedPick, savedTerm })
}

func TestInspectCommand_Pick(t *testing.T) {
	t.Run("terminal", func(t *testing.T) {
		var offered []string
		stubPicker(t, true, func(names []string) (string, error) {
			offered = names
			return names[len(names)-1], nil
		})
		dir := t.TempDir()
		path := writeDemoSnapshot(t, dir)

		stdout, _, err := run(t, dir, "inspect", path, "--pick")
		require.NoError(t, err)
		require.Len(t, offered, 3)
		assert.True(t, strings.HasSuffix(offered[0], "demo.Service.Health"))
		assert.Contains(t, stdout, "owner:")
	})

	t.Run("not a terminal", func(t *testing.T) {
		stubPicker(t, false, func([]string) (string, error) {
			t.Fatal("picker must not run without a terminal")
			return "", nil
		})
		dir := t.TempDir()
		path := writeDemoSnapshot(t, dir)

		_, _, err := run(t, dir, "inspect", path, "--pick")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "needs an interactive terminal")
	})

	t.Run("cancelled", func(t *testing.T) {
		stubPicker(t, true, func([]string) (string, error) {
			return "", errors.New("interrupt")
		})
		dir := t.TempDir()
		path := writeDemoSnapshot(t, dir)

		_, _, err := run(t, dir, "inspect", path, "--pick")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "member selection cancelled")
	})

	t.Run("with member flag", func(t *testing.T) {
		dir := t.TempDir()
		path := writeDemoSnapshot(t, dir)

		_, _, err := run(t, dir, "inspect", path, "--pick", "--member", "Service.Run")
		require.Error(t, err)
	})
}
