package scheduler

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
	"loopkit/internal/eventbus"
	logx "loopkit/pkg/logx"
)

// Class is the priority class of a task.
type Class int

const (
	Microtask Class = iota
	Macrotask
)

func (c Class) String() string {
	switch c {
	case Microtask:
		return "microtask"
	case Macrotask:
		return "macrotask"
	default:
		return fmt.Sprintf("class(%d)", int(c))
	}
}

// State is the scheduler's position in its run cycle.
type State int

const (
	Idle State = iota
	Draining
	RunningMacrotask
	Drained
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Draining:
		return "draining"
	case RunningMacrotask:
		return "running_macrotask"
	case Drained:
		return "drained"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// TaskID identifies a submitted task. It is also the task's submission
// sequence number, so IDs are unique per Scheduler and start at 1.
type TaskID uint64

// Options controls a Scheduler.
//
// Defaults (when fields are zero):
//   - HistorySize: 200
//   - ErrorLogRate: 5 events/s (only used when no OnError hook is set)
//   - MaxSteps: unlimited
type Options struct {
	HistorySize  int
	ErrorLogRate float64

	// MaxSteps bounds how many tasks a single RunToCompletion call executes.
	// It exists to stop runaway microtask chains; 0 disables the limit.
	MaxSteps int
}

func (o Options) withDefaults() Options {
	if o.HistorySize <= 0 {
		o.HistorySize = 200
	}
	if o.ErrorLogRate <= 0 {
		o.ErrorLogRate = 5
	}
	if o.MaxSteps < 0 {
		o.MaxSteps = 0
	}
	return o
}

type task struct {
	id    TaskID
	name  string
	class Class
	delay int64
	fn    func() error

	// index in the macrotask heap; -1 once removed.
	index int
}

func (t *task) label() string {
	if t.name != "" {
		return t.name
	}
	return fmt.Sprintf("%s#%d", t.class, t.id)
}

// HistoryItem records one executed task, in execution order.
type HistoryItem struct {
	ID    TaskID
	Name  string
	Class Class
	Delay int64
	Error string
}

// TaskEvent is emitted on the event bus for task lifecycle events.
type TaskEvent struct {
	ID    TaskID `json:"id"`
	Name  string `json:"name"`
	Class string `json:"class"`
	Delay int64  `json:"delay,omitempty"`
	Error string `json:"error,omitempty"`
}

// Snapshot is a lightweight view for diagnostics.
type Snapshot struct {
	State     State
	MicroLen  int
	MacroLen  int
	Executed  uint64
	Failed    uint64
	Cancelled uint64
	// Suppressed counts task errors the default logger dropped due to rate limiting.
	Suppressed uint64
	LastRun    time.Duration
	History    []HistoryItem
}

// Scheduler is a cooperative, single-threaded task loop.
//
// Submissions and Cancel are safe from any goroutine, including from inside a
// running task. Tasks only run on the goroutine that called RunToCompletion.
type Scheduler struct {
	mu sync.Mutex

	opts Options
	log  logx.Logger
	bus  eventbus.Bus

	micro []*task
	macro macroHeap
	byID  map[TaskID]*task
	seq   uint64

	state   State
	running bool

	onErr      func(*TaskError)
	limiter    *rate.Limiter
	suppressed uint64

	executed  uint64
	failed    uint64
	cancelled uint64
	lastRun   time.Duration

	history []HistoryItem
}
