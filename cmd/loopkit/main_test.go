package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDemoSingle(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "none.yaml")
	out, err := execute(t, "--config", cfg, "--log-level", "error", "demo", "promise-vs-timeout")
	require.NoError(t, err)
	require.Equal(t, "# promise-vs-timeout\nstart\nend\npromise1\npromise2\ntimeout\n", out)
}

func TestDemoTraverse(t *testing.T) {
	out, err := execute(t, "demo", "traverse")
	require.NoError(t, err)
	require.Contains(t, out, "map x*x      [9 64 1 144 49 400 25]")
	require.Contains(t, out, "filter even  [8 12 20]")
	require.Contains(t, out, "find >10     12 at 3")
	require.Contains(t, out, "reduce sum   56")
	require.Contains(t, out, "fold max     20")
	require.Contains(t, out, "reduce []")
}

func TestDemoAllAndList(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "none.yaml")
	out, err := execute(t, "--config", cfg, "--log-level", "error", "demo")
	require.NoError(t, err)
	require.Contains(t, out, "# nested-microtasks\nM1\nU1\nU2\nM2\nM3\n")
	require.Contains(t, out, "! microtask bad failed: boom")
	require.Contains(t, out, "# traverse")

	out, err = execute(t, "demo", "--list")
	require.NoError(t, err)
	require.Equal(t, 7, strings.Count(out, "\n"))
}

func TestRunRecordHistory(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "loopkit.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("logging:\n  level: error\nstorage:\n  driver: sqlite\n  path: "+filepath.Join(dir, "runs.db")+"\n"), 0o600))
	sc := filepath.Join(dir, "s.json")
	require.NoError(t, os.WriteFile(sc, []byte(`{"name":"cli","steps":[{"macro":"late","delay":2},{"micro":"soon"}],"expect":["soon","late"]}`), 0o600))

	out, err := execute(t, "--config", cfg, "run", "--record", sc)
	require.NoError(t, err)
	require.Equal(t, "# cli\nsoon\nlate\n", out)

	out, err = execute(t, "--config", cfg, "history", "-n", "5")
	require.NoError(t, err)
	require.Contains(t, out, "SCENARIO")
	require.Contains(t, out, "cli")
	require.Contains(t, out, "soon late")
}

func TestRunMismatchFails(t *testing.T) {
	dir := t.TempDir()
	sc := filepath.Join(dir, "s.yaml")
	require.NoError(t, os.WriteFile(sc, []byte("name: off\nsteps:\n  - log: a\nexpect: [b]\n"), 0o600))

	out, err := execute(t, "--config", filepath.Join(dir, "none.yaml"), "--log-level", "error", "run", sc)
	require.Error(t, err)
	require.Contains(t, out, "trace does not match expect")
}

func TestRunInvalidScenario(t *testing.T) {
	dir := t.TempDir()
	sc := filepath.Join(dir, "s.yaml")
	require.NoError(t, os.WriteFile(sc, []byte("name: bad\nsteps:\n  - cancel: ghost\n"), 0o600))
	_, err := execute(t, "--config", filepath.Join(dir, "none.yaml"), "run", sc)
	require.ErrorContains(t, err, "invalid scenario")
}
