package state

import (
	"errors"
	"fmt"
)

// Phase is the authoritative stage of a room.
type Phase string

const (
	Waiting         Phase = "waiting"
	LetterSelection Phase = "letter_selection"
	Playing         Phase = "playing"
	Reviewing       Phase = "reviewing"
	Finished        Phase = "finished"
)

func (p Phase) String() string {
	return string(p)
}

// Terminal reports whether no transition leaves p.
func (p Phase) Terminal() bool {
	return p == Finished
}

// ErrTransitionNotAllowed is returned when a state transition is not allowed.
var ErrTransitionNotAllowed = errors.New("state transition not allowed")

// Machine tracks the current phase and the edges allowed out of it. Only
// registered edges may be taken, and an edge's condition must hold when it is.
//
// Machine holds no lock; its owner serialises access.
type Machine struct {
	current     Phase
	transitions map[Phase]map[Phase]func() bool // from -> to -> condition
	onEnter     map[Phase][]func()
	onExit      map[Phase][]func()
}

func NewMachine(initial Phase) *Machine {
	return &Machine{
		current:     initial,
		transitions: make(map[Phase]map[Phase]func() bool),
		onEnter:     make(map[Phase][]func()),
		onExit:      make(map[Phase][]func()),
	}
}

// AddTransition registers the edge from -> to. A nil condition always holds.
func (m *Machine) AddTransition(from, to Phase, condition func() bool) {
	if _, exists := m.transitions[from]; !exists {
		m.transitions[from] = make(map[Phase]func() bool)
	}
	m.transitions[from][to] = condition
}

// OnEnter registers fn to run after the machine enters p.
func (m *Machine) OnEnter(p Phase, fn func()) {
	m.onEnter[p] = append(m.onEnter[p], fn)
}

// OnExit registers fn to run before the machine leaves p.
func (m *Machine) OnExit(p Phase, fn func()) {
	m.onExit[p] = append(m.onExit[p], fn)
}

func (m *Machine) Current() Phase {
	return m.current
}

// Is reports whether the current phase is p.
func (m *Machine) Is(p Phase) bool {
	return m.current == p
}

// Allowed reports whether ChangeState(to) would succeed right now.
func (m *Machine) Allowed(to Phase) bool {
	conditions, exists := m.transitions[m.current]
	if !exists {
		return false
	}
	condition, exists := conditions[to]
	if !exists {
		return false
	}
	return condition == nil || condition()
}

func (m *Machine) ChangeState(to Phase) error {
	if !m.Allowed(to) {
		return fmt.Errorf("%w: %s -> %s", ErrTransitionNotAllowed, m.current, to)
	}

	for _, fn := range m.onExit[m.current] {
		fn()
	}
	m.current = to
	for _, fn := range m.onEnter[to] {
		fn()
	}
	return nil
}
