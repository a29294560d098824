/*
Package solver decides satisfiability of LTL formulas with a one-pass
tree-tableau procedure and produces finite witnesses for satisfiable ones.

The solver expands a formula into its closure: the set of its subformulas,
their negations, and the next-step unfoldings of the temporal fixpoints,
totally ordered so that related entries sit at fixed relative positions.
Every set manipulated during the search is a bitset over closure indices,
which turns the tableau rules into a handful of word-wide mask operations.

The search itself is a backtracking walk over a stack of frames. A frame
either describes the obligations asserted at one time step or records a
branching decision inside it. Deterministic (α) rules decompose
conjunctions and always-formulas in place; branching (β) rules split
disjunctions, eventualities and untils into a committed first alternative
and a second one taken on rollback; the STEP rule advances time by
stripping one X from every next-step obligation. A satisfiable verdict is
reached when a frame runs out of obligations, or when an ancestor frame
covers the current one and every pending eventuality has been fulfilled
inside the candidate loop, which closes a lasso-shaped model.

Basic usage:

	f, err := ltl.ParseString("G(request -> F grant)")
	if err != nil { ... }
	s := solver.New(f, solver.Options{BacktrackProbability: 100})
	if s.Solve() == solver.Satisfiable {
		m := s.Model()
		fmt.Println(m)
	}

After a Satisfiable verdict the solver is paused on the witness; calling
Solve again searches for a different model, so all models within the depth
bound can be enumerated.

With Options.UseSAT, frames holding pending disjunctions hand them to an
embedded CDCL solver as a propositional abstraction instead of branching
on them one by one; each satisfying assignment of the abstraction becomes
one successor frame.
*/
package solver
