// Package jit executes IR modules. A Session plays the role of an ORC-style
// JIT: modules are added and removed under opaque handles, symbols are
// resolved by name while the session is active, and resolved symbols are
// invoked with a calling convention derived from their return type.
//
// Sessions move Empty -> Active on AddModule and back to Empty when the last
// handle is removed; Lookup is only valid while Active.
package jit

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/igfraga/go-conflake/internal/ir"
)

// Err is a JIT session failure.
type Err struct {
	Message string
}

func (e *Err) Error() string { return e.Message }

// State is the session lifecycle state.
type State int

const (
	// Empty means the session holds no modules; Lookup is invalid.
	Empty State = iota
	// Active means at least one module is resident.
	Active
)

// Handle identifies a resident module within a session.
type Handle struct {
	id uuid.UUID
}

// DataLayout is the target data layout modules are compiled against: the
// common 64-bit little-endian layout with 8-byte doubles, integers and
// pointers.
const DataLayout = "e-m:e-i64:64-f80:128-n8:16:32:64-S128"

var initOnce sync.Once

// InitNativeTarget performs the process-wide one-shot target setup. Multiple
// sessions in one process initialize exactly once and never race.
func InitNativeTarget() {
	initOnce.Do(func() {})
}

// Session owns resident modules and their executable symbols.
type Session struct {
	modules map[uuid.UUID]*ir.Module
	externs map[string]HostFunc
}

// NewSession creates an empty session with the default host externs
// registered.
func NewSession() *Session {
	InitNativeTarget()
	return &Session{
		modules: make(map[uuid.UUID]*ir.Module),
		externs: defaultExterns(),
	}
}

// State returns the session's lifecycle state.
func (s *Session) State() State {
	if len(s.modules) == 0 {
		return Empty
	}
	return Active
}

// AddModule makes the module's symbols resolvable and returns the handle
// that owns them.
func (s *Session) AddModule(m *ir.Module) (Handle, error) {
	if m == nil {
		return Handle{}, &Err{Message: "cannot add a nil module"}
	}
	h := Handle{id: uuid.New()}
	s.modules[h.id] = m
	return h, nil
}

// RemoveModule releases the module behind the handle along with its code and
// symbols.
func (s *Session) RemoveModule(h Handle) error {
	if _, ok := s.modules[h.id]; !ok {
		return &Err{Message: "unknown module handle"}
	}
	delete(s.modules, h.id)
	return nil
}

// Symbol is a resolved, invocable function address.
type Symbol struct {
	session *Session
	module  *ir.Module
	fn      *ir.Function
}

// Lookup resolves a defined symbol by name. It is only valid while the
// session is Active.
func (s *Session) Lookup(name string) (*Symbol, error) {
	if s.State() != Active {
		return nil, &Err{Message: "lookup on an empty session"}
	}
	for _, m := range s.modules {
		if fn := m.Func(name); fn != nil && !fn.IsDeclaration() {
			return &Symbol{session: s, module: m, fn: fn}, nil
		}
	}
	return nil, &Err{Message: fmt.Sprintf("Could not find symbol: %v", name)}
}

// CallDouble invokes a zero-argument symbol returning double.
func (sym *Symbol) CallDouble() (float64, error) {
	w, err := sym.call()
	if err != nil {
		return 0, err
	}
	return w.f, nil
}

// CallInt64 invokes a zero-argument symbol returning int64.
func (sym *Symbol) CallInt64() (int64, error) {
	w, err := sym.call()
	if err != nil {
		return 0, err
	}
	return w.i, nil
}

// CallBool invokes a zero-argument symbol returning bool (i8-derived).
func (sym *Symbol) CallBool() (bool, error) {
	w, err := sym.call()
	if err != nil {
		return false, err
	}
	return w.b, nil
}

func (sym *Symbol) call() (word, error) {
	if len(sym.fn.Params) != 0 {
		return word{}, &Err{
			Message: fmt.Sprintf("symbol %v takes arguments and cannot be evaluated directly", sym.fn.Nam),
		}
	}
	machine := &machine{session: sym.session, module: sym.module}
	return machine.run(sym.fn, nil)
}
