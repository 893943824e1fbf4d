package domain

import "fmt"

// Action is one top-level pipeline stage. Each invocation runs exactly one.
type Action string

const (
	ActionInit        Action = "init"
	ActionPythonCache Action = "python-cache"
	ActionSnapshot    Action = "snapshot"
	ActionRunModel    Action = "run-model"
)

// Actions returns every stage in pipeline order.
func Actions() []Action {
	return []Action{ActionInit, ActionPythonCache, ActionSnapshot, ActionRunModel}
}

// IsValid returns true if the action is one of the defined constants.
func (a Action) IsValid() bool {
	switch a {
	case ActionInit, ActionPythonCache, ActionSnapshot, ActionRunModel:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (a Action) String() string {
	return string(a)
}

// NeedsPopulation reports whether the stage reads the population artifact.
func (a Action) NeedsPopulation() bool {
	switch a {
	case ActionInit:
		return false
	case ActionPythonCache, ActionSnapshot, ActionRunModel:
		return true
	default:
		panic(fmt.Sprintf("domain: unhandled action %q", string(a)))
	}
}
