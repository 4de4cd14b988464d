package keybind

import (
	"fmt"

	"github.com/Versifine/stride/internal/config"
)

type Action uint8

const (
	Forward Action = iota
	Backward
	Left
	Right
	Jump
)

// Actions lists every action in declaration order.
func Actions() []Action {
	return []Action{Forward, Backward, Left, Right, Jump}
}

func (a Action) String() string {
	switch a {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	case Left:
		return "left"
	case Right:
		return "right"
	case Jump:
		return "jump"
	default:
		return fmt.Sprintf("action(%d)", uint8(a))
	}
}

// KeyID identifies a physical key.
type KeyID uint8

const (
	KeyW KeyID = iota + 1
	KeyA
	KeyS
	KeyD
	KeySpace
)

var keyNames = map[string]KeyID{
	"w": KeyW,
	"a": KeyA,
	"s": KeyS,
	"d": KeyD,
	" ": KeySpace,
}

func (k KeyID) String() string {
	switch k {
	case KeyW:
		return "W"
	case KeyA:
		return "A"
	case KeyS:
		return "S"
	case KeyD:
		return "D"
	case KeySpace:
		return "Space"
	default:
		return fmt.Sprintf("key(%d)", uint8(k))
	}
}

// ParseKey resolves a config key name through the lookup table.
func ParseKey(name string) (KeyID, error) {
	if k, ok := keyNames[name]; ok {
		return k, nil
	}
	return 0, &UnrecognizedKeybindError{Key: name}
}

type UnrecognizedKeybindError struct {
	Key string
}

func (e *UnrecognizedKeybindError) Error() string {
	return fmt.Sprintf("unrecognized keybind found: %q", e.Key)
}

// DuplicateKeyError reports two actions bound to the same key.
type DuplicateKeyError struct {
	Key    KeyID
	First  Action
	Second Action
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("key %s bound to both %s and %s", e.Key, e.First, e.Second)
}

// Map is a bijection between actions and keys. It is immutable once built.
type Map struct {
	byAction map[Action]KeyID
	byKey    map[KeyID]Action
}

// Empty returns a map with no bindings; no key resolves to an action.
func Empty() *Map {
	return &Map{
		byAction: make(map[Action]KeyID),
		byKey:    make(map[KeyID]Action),
	}
}

// Build resolves every keybind in cfg. Any unknown key name or any key shared
// by two actions fails the whole build.
func Build(cfg config.Config) (*Map, error) {
	kb := cfg.Keybinds
	names := []struct {
		action Action
		name   string
	}{
		{Forward, kb.Forward},
		{Backward, kb.Backward},
		{Left, kb.Left},
		{Right, kb.Right},
		{Jump, kb.Jump},
	}

	m := Empty()
	for _, n := range names {
		key, err := ParseKey(n.name)
		if err != nil {
			return nil, err
		}
		if err := m.insert(n.action, key); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Map) insert(a Action, k KeyID) error {
	if other, ok := m.byKey[k]; ok {
		return &DuplicateKeyError{Key: k, First: other, Second: a}
	}
	m.byAction[a] = k
	m.byKey[k] = a
	return nil
}

// Key is the forward lookup.
func (m *Map) Key(a Action) (KeyID, bool) {
	if m == nil {
		return 0, false
	}
	k, ok := m.byAction[a]
	return k, ok
}

// Bound reports whether a has a key.
func (m *Map) Bound(a Action) bool {
	_, ok := m.Key(a)
	return ok
}

// Action is the reverse lookup.
func (m *Map) Action(k KeyID) (Action, bool) {
	if m == nil {
		return 0, false
	}
	a, ok := m.byKey[k]
	return a, ok
}

func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.byAction)
}
