package solver

import (
	"sort"
	"strings"

	"github.com/ltlab/golasso/ltl"
)

// A Literal is an atom or a negated atom of a model state.
type Literal struct {
	Atom     string
	Negative bool
}

func (l Literal) String() string {
	if l.Negative {
		return "!" + l.Atom
	}
	return l.Atom
}

// A State is the set of literals holding at one instant of a model.
type State []Literal

func (st State) String() string {
	strs := make([]string, len(st))
	for i, l := range st {
		strs[i] = l.String()
	}
	return "{" + strings.Join(strs, ", ") + "}"
}

// holds reports whether the atom is asserted positively in the state.
// Atoms the state does not mention are taken to be false.
func (st State) holds(atom string) bool {
	for _, l := range st {
		if l.Atom == atom {
			return !l.Negative
		}
	}
	return false
}

// A Model is an ultimately periodic word: the states at indices
// [LoopState, len(States)) repeat forever after the prefix.
type Model struct {
	States    []State
	LoopState uint64
}

func (m *Model) String() string {
	var sb strings.Builder
	for i, st := range m.States {
		if uint64(i) == m.LoopState {
			sb.WriteString("→ ")
		} else {
			sb.WriteString("  ")
		}
		sb.WriteString(st.String())
		if i < len(m.States)-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Model returns the lasso model of the last Satisfiable verdict, or nil
// when no model is available. The model walks the search stack bottom to
// top, emitting one state per time step; choice and SAT frames are proof
// artifacts and are skipped.
func (s *Solver) Model() *Model {
	if s.result != Satisfiable {
		return nil
	}

	if s.trivially {
		// The formula collapsed to ⊤ during initialization.
		return &Model{States: []State{{Literal{Atom: "⊤"}}}, LoopState: 0}
	}

	if s.state != statePaused {
		return nil
	}

	m := &Model{LoopState: s.loopState}
	for _, f := range s.stack {
		if f.kind == frameChoice || f.kind == frameSAT {
			continue
		}
		var st State
		for j := 0; j < s.c.n; j++ {
			if !f.formulas.test(j) {
				continue
			}
			if name, ok := s.c.atomName[j]; ok {
				st = append(st, Literal{Atom: name})
			} else if s.c.negation.test(j) {
				if name, ok := s.c.atomName[s.c.lhs[j]]; ok {
					st = append(st, Literal{Atom: name, Negative: true})
				}
			}
		}
		sort.Slice(st, func(a, b int) bool { return st[a].Atom < st[b].Atom })
		m.States = append(m.States, st)
	}

	// The top frame restates the loop closure; drop it.
	m.States = m.States[:len(m.States)-1]
	return m
}

// Satisfies reports whether the infinite word denoted by the model
// satisfies f under standard LTL semantics. Atoms absent from a state are
// false there.
func (m *Model) Satisfies(f *ltl.Formula) bool {
	if len(m.States) == 0 {
		return false
	}
	return m.eval(f, 0)
}

// succ returns the position following k on the lasso.
func (m *Model) succ(k int) int {
	if k+1 < len(m.States) {
		return k + 1
	}
	return int(m.LoopState)
}

// orbit returns the positions visited from k onward, each exactly once.
func (m *Model) orbit(k int) []int {
	visited := make([]bool, len(m.States))
	var out []int
	for !visited[k] {
		visited[k] = true
		out = append(out, k)
		k = m.succ(k)
	}
	return out
}

func (m *Model) eval(f *ltl.Formula, k int) bool {
	switch f.Op {
	case ltl.OpTrue:
		return true
	case ltl.OpFalse:
		return false
	case ltl.OpAtom:
		return m.States[k].holds(f.Name)
	case ltl.OpNot:
		return !m.eval(f.L, k)
	case ltl.OpNext:
		return m.eval(f.L, m.succ(k))
	case ltl.OpAlways:
		for _, j := range m.orbit(k) {
			if !m.eval(f.L, j) {
				return false
			}
		}
		return true
	case ltl.OpEventually:
		for _, j := range m.orbit(k) {
			if m.eval(f.L, j) {
				return true
			}
		}
		return false
	case ltl.OpUntil:
		for _, j := range m.orbit(k) {
			if m.eval(f.R, j) {
				return true
			}
			if !m.eval(f.L, j) {
				return false
			}
		}
		return false
	case ltl.OpAnd:
		return m.eval(f.L, k) && m.eval(f.R, k)
	case ltl.OpOr:
		return m.eval(f.L, k) || m.eval(f.R, k)
	case ltl.OpImplies:
		return !m.eval(f.L, k) || m.eval(f.R, k)
	case ltl.OpIff:
		return m.eval(f.L, k) == m.eval(f.R, k)
	default:
		panic("invalid formula")
	}
}
