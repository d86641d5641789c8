package scenario

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"loopkit/internal/task/scheduler"
	logx "loopkit/pkg/logx"
)

func newScheduler() *scheduler.Scheduler {
	return scheduler.New(scheduler.Options{}, logx.Nop(), nil)
}

func TestDemosMatchExpectations(t *testing.T) {
	t.Parallel()
	demos, err := Demos()
	require.NoError(t, err)
	require.Len(t, demos, 6)

	for _, sc := range demos {
		sc := sc
		t.Run(sc.Name, func(t *testing.T) {
			t.Parallel()
			res, err := Run(context.Background(), sc, newScheduler())
			require.NoError(t, err)
			if !res.Matches() {
				t.Fatalf("trace mismatch (-expect +trace):\n%s", res.Diff())
			}
		})
	}
}

func TestErrorIsolationCollectsErrors(t *testing.T) {
	t.Parallel()
	sc, err := Demo("error-isolation")
	require.NoError(t, err)

	res, err := Run(context.Background(), sc, newScheduler())
	require.NoError(t, err)
	require.Equal(t, []string{"microtask bad failed: boom", "macrotask later failed: kaboom"}, res.Errors)
	require.EqualValues(t, 4, res.Executed)
}

func TestCancelCounted(t *testing.T) {
	t.Parallel()
	sc, err := Demo("cancel-timer")
	require.NoError(t, err)
	res, err := Run(context.Background(), sc, newScheduler())
	require.NoError(t, err)
	require.EqualValues(t, 1, res.Cancelled)
	require.EqualValues(t, 2, res.Executed)
}

func TestRunRestoresCallerHook(t *testing.T) {
	t.Parallel()
	s := newScheduler()
	var seen int
	s.OnError(func(*scheduler.TaskError) { seen++ })

	sc, err := Demo("error-isolation")
	require.NoError(t, err)
	res, err := Run(context.Background(), sc, s)
	require.NoError(t, err)
	require.Len(t, res.Errors, 2)
	require.Equal(t, 2, seen, "caller hook sees failures during the run")

	s.SubmitMicrotask(func() error { return errors.New("after") })
	require.NoError(t, s.RunToCompletion(context.Background()))
	require.Equal(t, 3, seen, "caller hook is restored after the run")
}

func TestFailingAwaitIsReported(t *testing.T) {
	t.Parallel()
	sc := &Scenario{Name: "await-fail", Steps: []Step{
		{Await: "x", Fail: "bad await"},
		{Log: "sync"},
	}}
	require.NoError(t, sc.Validate())

	res, err := Run(context.Background(), sc, newScheduler())
	require.NoError(t, err)
	require.Equal(t, []string{"sync", "x"}, res.Trace)
	require.Len(t, res.Errors, 1)
	require.Contains(t, res.Errors[0], "bad await")
}

func TestMismatchDiff(t *testing.T) {
	t.Parallel()
	sc := &Scenario{Name: "wrong", Steps: []Step{{Log: "a"}}, Expect: []string{"b"}}
	res, err := Run(context.Background(), sc, newScheduler())
	require.NoError(t, err)
	require.False(t, res.Matches())
	require.NotEmpty(t, res.Diff())
}

func TestLoadJSONAndYAML(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "s.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"name":"j","steps":[{"macro":"t","delay":3},{"log":"x"}]}`), 0o600))
	sc, err := Load(jsonPath)
	require.NoError(t, err)
	require.Equal(t, "j", sc.Name)
	require.Equal(t, []string{"t"}, sc.Labels())

	yamlPath := filepath.Join(dir, "s.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("name: y\nsteps:\n  - micro: u\n    then:\n      - macro: m\n"), 0o600))
	sc, err = Load(yamlPath)
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"u", "m"}, sc.Labels()); diff != "" {
		t.Fatalf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		raw  string
	}{
		{name: "unknown field", raw: "name: x\nsteps:\n  - log: a\n    colour: red\n"},
		{name: "no name", raw: "steps:\n  - log: a\n"},
		{name: "no steps", raw: "name: x\n"},
		{name: "two actions", raw: "name: x\nsteps:\n  - log: a\n    micro: b\n"},
		{name: "empty step", raw: "name: x\nsteps:\n  - delay: 3\n"},
		{name: "delay on micro", raw: "name: x\nsteps:\n  - micro: a\n    delay: 3\n"},
		{name: "negative delay", raw: "name: x\nsteps:\n  - macro: a\n    delay: -3\n"},
		{name: "then on log", raw: "name: x\nsteps:\n  - log: a\n    then:\n      - log: b\n"},
		{name: "cancel unknown", raw: "name: x\nsteps:\n  - cancel: ghost\n"},
		{name: "cancel await", raw: "name: x\nsteps:\n  - await: w\n  - cancel: w\n"},
		{name: "nested invalid", raw: "name: x\nsteps:\n  - micro: a\n    then:\n      - {}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("s.yaml", []byte(tt.raw))
			require.ErrorIs(t, err, ErrInvalidScenario)
		})
	}
}

func TestUnknownDemo(t *testing.T) {
	t.Parallel()
	_, err := Demo("nope")
	require.Error(t, err)
}
