package report

import (
	"fmt"
	"time"
)

// State は生成処理の段階です。
type State string

const (
	StateRequested    State = "requested"
	StateValidated    State = "validated"
	StateAssembled    State = "assembled"
	StateFileProduced State = "file-produced"
	StateCompleted    State = "completed"
	StateFailed       State = "failed"
)

var transitions = map[State][]State{
	StateRequested:    {StateValidated, StateFailed},
	StateValidated:    {StateAssembled, StateFailed},
	StateAssembled:    {StateFileProduced, StateFailed},
	StateFileProduced: {StateCompleted, StateFailed},
}

// IsTerminal は completed または failed かを判定します。
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Execution は 1 回の生成処理の段階遷移を記録します。
type Execution struct {
	ID        string
	StartedAt time.Time
	state     State
	trail     []State
	err       error
}

func newExecution(id string, at time.Time) *Execution {
	return &Execution{
		ID:        id,
		StartedAt: at,
		state:     StateRequested,
		trail:     []State{StateRequested},
	}
}

func (x *Execution) State() State { return x.state }

// Trail は通過した段階を順に返します。
func (x *Execution) Trail() []State { return append([]State(nil), x.trail...) }

// Err は failed に至った原因です。
func (x *Execution) Err() error { return x.err }

func (x *Execution) advance(to State) error {
	for _, allowed := range transitions[x.state] {
		if allowed == to {
			x.state = to
			x.trail = append(x.trail, to)
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, x.state, to)
}

func (x *Execution) fail(cause error) {
	if x.state.IsTerminal() {
		return
	}
	x.state = StateFailed
	x.trail = append(x.trail, StateFailed)
	x.err = cause
}
