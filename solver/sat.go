package solver

import (
	"sort"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"

	"github.com/ltlab/golasso/ltl"
)

// The SAT bridge resolves all pending disjunctions of a frame in one shot:
// it abstracts the locally relevant closure entries into a propositional
// instance, asks the CDCL solver for an assignment, and commits it as a
// successor frame. Each extracted assignment is blocked inside the frame's
// solver, so rolling back into the frame enumerates the next one.

// shouldUseSAT reports whether the bridge is enabled and the frame still
// has unprocessed disjunctions.
func (s *Solver) shouldUseSAT(f *frame) bool {
	if !s.useSAT {
		return false
	}
	s.tmp.copyFrom(f.formulas)
	s.tmp.andWith(f.toProcess)
	s.tmp.andWith(s.c.disjunction)
	return s.tmp.any()
}

// runSATBridge turns f into a SAT frame, loads the propositional
// abstraction of its asserted atoms, tomorrows, negated atoms and
// disjunctions, and pushes the first extracted assignment. If the
// instance is unsatisfiable the frame is rolled back instead.
func (s *Solver) runSATBridge(f *frame) {
	f.kind = frameSAT
	f.solver = gini.New()

	// Exposed entries: atoms, tomorrows, atom negations (one slot above
	// their atom) and disjunctions, restricted to the asserted set.
	s.tmp.copyFrom(s.c.atom)
	s.tmp.shiftUp()
	s.tmp.andWith(s.c.negation)
	s.tmp.orWith(s.c.atom)
	s.tmp.orWith(s.c.tomorrow)
	s.tmp.orWith(s.c.disjunction)
	s.tmp.andWith(f.formulas)

	for one := s.tmp.findFirst(); one >= 0; one = s.tmp.findNext(one) {
		for _, lit := range s.c.clauses[one] {
			f.solver.Add(lit)
			f.literals = append(f.literals, int(lit.Var())-1)
		}
		f.solver.Add(z.LitNull)

		if s.c.disjunction.test(one) {
			f.toProcess.clear(one)
		}
	}

	sort.Ints(f.literals)
	f.literals = dedupInts(f.literals)

	if f.solver.Solve() != 1 {
		// No assignment at all: this frame is about to be discarded.
		f.kind = frameUnknown
		s.rollbackToLatestChoice()
		return
	}

	s.push(s.extractAssignment(f))
}

// extractAssignment reads the solver's current model and builds the child
// frame asserting it: positive variables assert their closure entry, false
// variables assert the paired negation entry when one exists. The
// assignment is then blocked so the next solve yields a different one.
func (s *Solver) extractAssignment(f *frame) *frame {
	child := childFrame(f)
	var blocking []z.Lit

	for _, id := range f.literals {
		v := z.Var(id + 1)
		if f.solver.Value(v.Pos()) {
			blocking = append(blocking, v.Neg())
			child.formulas.set(id)
		} else if s.negationSlot(id + 1) {
			blocking = append(blocking, v.Pos())
			child.formulas.set(id + 1)
		}
	}

	for _, lit := range blocking {
		f.solver.Add(lit)
	}
	f.solver.Add(z.LitNull)
	return child
}

// negationSlot reports whether closure index j holds the negation-shaped
// counterpart of the entry at j-1: a negated atom or a negated tomorrow.
func (s *Solver) negationSlot(j int) bool {
	if j >= s.c.n {
		return false
	}
	if s.c.negation.test(j) {
		return true
	}
	return s.c.tomorrow.test(j) && s.c.formulas[j].L.Op == ltl.OpNot
}

func dedupInts(xs []int) []int {
	if len(xs) == 0 {
		return xs
	}
	out := xs[:1]
	for _, x := range xs[1:] {
		if x != out[len(out)-1] {
			out = append(out, x)
		}
	}
	return out
}
