// Package ltl offers facilities to build, parse and normalize formulas of
// Linear Temporal Logic over discrete infinite time.
//
// A formula is a tree of temporal and boolean connectives over named atoms.
// The temporal operators are X (next), G (always), F (eventually) and
// U (until). Implications and biconditionals can be written but are
// eliminated by Simplify before a formula reaches the solver.
//
// For example, the formula
//
//	G(request -> F grant)
//
// can be built programmatically:
//
//	f := ltl.Always(ltl.Implies(ltl.Atom("request"), ltl.Eventually(ltl.Atom("grant"))))
//
// or parsed from its textual form:
//
//	f, err := ltl.ParseString("G(request -> F grant)")
//
// Simplify rewrites a formula into the base used by the tableau engine:
// implications and biconditionals are expanded, negations are pushed down
// to atoms and until subformulas, and boolean constants are folded away.
package ltl
