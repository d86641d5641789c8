// Package scenario describes event-loop exercises as data and replays them
// on a scheduler.
//
// A scenario is the shape of a typical async tutorial script: synchronous
// console output, setTimeout-style macrotasks, promise-reaction microtasks,
// awaited delays and clearTimeout-style cancellations. Running it yields the
// order in which the labels would be printed.
package scenario

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"loopkit/internal/config"
	"loopkit/internal/traverse"
)

var ErrInvalidScenario = errors.New("invalid scenario")

// Scenario is the top-level document.
type Scenario struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Steps       []Step   `json:"steps"`
	Expect      []string `json:"expect,omitempty"`
}

// Step is exactly one of Log, Micro, Macro, Await or Cancel.
//
// Micro, Macro and Await label a task; when the task runs its label is
// traced, then its Then steps run inside the task body, then Fail (if set)
// makes the task fail with that message.
type Step struct {
	Log    string `json:"log,omitempty"`
	Micro  string `json:"micro,omitempty"`
	Macro  string `json:"macro,omitempty"`
	Await  string `json:"await,omitempty"`
	Cancel string `json:"cancel,omitempty"`

	// Delay orders a macro (or the timer behind an await).
	Delay int64  `json:"delay,omitempty"`
	Fail  string `json:"fail,omitempty"`
	Then  []Step `json:"then,omitempty"`
}

type Kind string

const (
	KindLog    Kind = "log"
	KindMicro  Kind = "micro"
	KindMacro  Kind = "macro"
	KindAwait  Kind = "await"
	KindCancel Kind = "cancel"
)

// Kind reports which action the step carries, or "" when it carries none
// or more than one.
func (s Step) Kind() Kind {
	set := traverse.Filter([]Kind{KindLog, KindMicro, KindMacro, KindAwait, KindCancel}, func(k Kind, _ int, _ []Kind) bool {
		return s.field(k) != ""
	})
	if len(set) != 1 {
		return ""
	}
	return set[0]
}

// Label is the value of the step's action field.
func (s Step) Label() string { return s.field(s.Kind()) }

func (s Step) field(k Kind) string {
	switch k {
	case KindLog:
		return s.Log
	case KindMicro:
		return s.Micro
	case KindMacro:
		return s.Macro
	case KindAwait:
		return s.Await
	case KindCancel:
		return s.Cancel
	}
	return ""
}

// Load reads a scenario from a .yaml, .yml or .json file.
func Load(path string) (*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, b)
}

// Parse decodes and validates a scenario. path only selects the format.
func Parse(path string, data []byte) (*Scenario, error) {
	var sc Scenario
	if err := config.DecodeStrict(path, data, &sc); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidScenario, path, err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks step shapes and that every cancel names a micro or macro
// label declared somewhere in the scenario.
func (sc *Scenario) Validate() error {
	if strings.TrimSpace(sc.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidScenario)
	}
	if len(sc.Steps) == 0 {
		return fmt.Errorf("%w: %s: no steps", ErrInvalidScenario, sc.Name)
	}
	cancellable := map[string]bool{}
	collectCancellable(sc.Steps, cancellable)
	if err := validateSteps(sc.Steps, "steps", cancellable); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidScenario, sc.Name, err)
	}
	return nil
}

func collectCancellable(steps []Step, out map[string]bool) {
	traverse.ForEach(steps, func(st Step, _ int, _ []Step) {
		if k := st.Kind(); k == KindMicro || k == KindMacro {
			out[st.Label()] = true
		}
		collectCancellable(st.Then, out)
	})
}

func validateSteps(steps []Step, path string, cancellable map[string]bool) error {
	_, err := traverse.MapErr(steps, func(st Step, i int, _ []Step) (struct{}, error) {
		at := fmt.Sprintf("%s[%d]", path, i)
		k := st.Kind()
		switch k {
		case "":
			return struct{}{}, fmt.Errorf("%s: exactly one of log, micro, macro, await, cancel is required", at)
		case KindLog, KindCancel:
			if st.Fail != "" || len(st.Then) > 0 {
				return struct{}{}, fmt.Errorf("%s: %s steps take no fail/then", at, k)
			}
		}
		if st.Delay != 0 && k != KindMacro && k != KindAwait {
			return struct{}{}, fmt.Errorf("%s: delay only applies to macro and await", at)
		}
		if st.Delay < 0 {
			return struct{}{}, fmt.Errorf("%s: delay must be >= 0", at)
		}
		if k == KindCancel && !cancellable[st.Cancel] {
			return struct{}{}, fmt.Errorf("%s: cancel %q matches no micro or macro label", at, st.Cancel)
		}
		return struct{}{}, validateSteps(st.Then, at+".then", cancellable)
	})
	return err
}

// Labels returns every task label in document order, nested ones included.
func (sc *Scenario) Labels() []string {
	return labels(sc.Steps)
}

func labels(steps []Step) []string {
	return traverse.Fold(steps, func(acc []string, st Step, _ int, _ []Step) []string {
		if k := st.Kind(); k != KindLog && k != KindCancel && k != "" {
			acc = append(acc, st.Label())
		}
		return append(acc, labels(st.Then)...)
	}, []string{})
}
