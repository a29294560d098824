package solver

import (
	"fmt"
	"sort"

	"github.com/go-air/gini/z"
	"github.com/ltlab/golasso/ltl"
)

// A closure holds the ground set of the tableau: the deductive closure of
// the input formula, totally ordered so that the negation of an entry sits
// at the directly following index, together with every side table the rule
// engine needs. It is immutable once built.
type closure struct {
	formulas []*ltl.Formula
	n        int
	start    int // index of the input formula

	lhs, rhs []int // indices of the immediate subformulas (of the simplified negated operands for ¬U), -1 when absent
	atomName map[int]string

	atom        *bitset
	negation    *bitset
	tomorrow    *bitset
	always      *bitset
	eventually  *bitset
	conjunction *bitset
	disjunction *bitset
	until       *bitset
	notUntil    *bitset

	fwEv []int // closure index -> eventuality slot, -1 when none
	bwEv []int // eventuality slot -> closure index

	// xSkin maps each temporal fixpoint entry (G, F, U, ¬U) to the index
	// of its X-wrapped version, used by the unfolding rules. The order
	// puts it one or two slots after the entry itself.
	xSkin []int

	clauses [][]z.Lit // propositional abstraction, one clause per entry
}

// buildClosure computes the closure of the simplified formula f.
// The closure contains every subformula of f, the simplified negation of
// each member, the X-skin of every temporal fixpoint (G, F, U, ¬U), and,
// for every ¬(α U β), the simplified negations of α and β.
func buildClosure(f *ltl.Formula) *closure {
	var gathered []*ltl.Formula
	seen := make(map[string]bool)

	var gather func(g *ltl.Formula)
	gather = func(g *ltl.Formula) {
		key := g.String()
		if seen[key] {
			return
		}
		seen[key] = true
		gathered = append(gathered, g)

		switch g.Op {
		case ltl.OpTrue, ltl.OpFalse, ltl.OpAtom:
		case ltl.OpNot:
			gather(g.L)
			if g.L.Op == ltl.OpUntil {
				// The ¬U rule asserts the negated operands directly.
				gather(ltl.Simplify(ltl.Not(g.L.L)))
				gather(ltl.Simplify(ltl.Not(g.L.R)))
				gather(ltl.Next(g))
			}
		case ltl.OpNext:
			gather(g.L)
		case ltl.OpAlways, ltl.OpEventually:
			gather(g.L)
			gather(ltl.Next(g))
		case ltl.OpAnd, ltl.OpOr:
			gather(g.L)
			gather(g.R)
		case ltl.OpUntil:
			gather(g.L)
			gather(g.R)
			gather(ltl.Next(g))
		default:
			panic(fmt.Sprintf("unsupported operator in closure: %s", g))
		}
	}

	gather(f)
	// Close under simplified negation; gathered grows while we iterate.
	for i := 0; i < len(gathered); i++ {
		gather(ltl.Simplify(ltl.Not(gathered[i])))
	}

	sort.Slice(gathered, func(i, j int) bool {
		return ltl.Compare(gathered[i], gathered[j]) < 0
	})
	uniq := gathered[:1]
	for _, g := range gathered[1:] {
		if ltl.Compare(uniq[len(uniq)-1], g) != 0 {
			uniq = append(uniq, g)
		}
	}

	n := len(uniq)
	c := &closure{
		formulas:    uniq,
		n:           n,
		start:       -1,
		lhs:         make([]int, n),
		rhs:         make([]int, n),
		atomName:    make(map[int]string),
		atom:        newBitset(n),
		negation:    newBitset(n),
		tomorrow:    newBitset(n),
		always:      newBitset(n),
		eventually:  newBitset(n),
		conjunction: newBitset(n),
		disjunction: newBitset(n),
		until:       newBitset(n),
		notUntil:    newBitset(n),
		fwEv:        make([]int, n),
		xSkin:       make([]int, n),
		clauses:     make([][]z.Lit, n),
	}
	for i := range c.lhs {
		c.lhs[i] = -1
		c.rhs[i] = -1
		c.fwEv[i] = -1
		c.xSkin[i] = -1
	}

	for i, g := range uniq {
		if ltl.Equal(g, f) {
			c.start = i
		}
		c.index(i, g)
	}
	if c.start < 0 {
		panic("malformed closure: input formula not found")
	}

	c.buildEventualities()
	c.buildClauses()
	return c
}

// lookup returns the closure index of g.
func (c *closure) lookup(g *ltl.Formula) int {
	i := sort.Search(c.n, func(k int) bool {
		return ltl.Compare(c.formulas[k], g) >= 0
	})
	if i == c.n || ltl.Compare(c.formulas[i], g) != 0 {
		panic(fmt.Sprintf("malformed closure: missing subformula %s", g))
	}
	return i
}

// index fills the kind bitsets and the lhs/rhs tables for entry i.
func (c *closure) index(i int, g *ltl.Formula) {
	switch g.Op {
	case ltl.OpAtom:
		c.atom.set(i)
		c.atomName[i] = g.Name

	case ltl.OpNot:
		if g.L.Op == ltl.OpUntil {
			c.notUntil.set(i)
			c.lhs[i] = c.lookup(ltl.Simplify(ltl.Not(g.L.L)))
			c.rhs[i] = c.lookup(ltl.Simplify(ltl.Not(g.L.R)))
			c.xSkin[i] = c.lookup(ltl.Next(g))
			return
		}
		c.negation.set(i)
		c.lhs[i] = c.lookup(g.L)

	case ltl.OpNext:
		c.tomorrow.set(i)
		c.lhs[i] = c.lookup(g.L)

	case ltl.OpAlways:
		c.always.set(i)
		c.lhs[i] = c.lookup(g.L)
		c.xSkin[i] = c.lookup(ltl.Next(g))

	case ltl.OpEventually:
		c.eventually.set(i)
		c.lhs[i] = c.lookup(g.L)
		c.xSkin[i] = c.lookup(ltl.Next(g))

	case ltl.OpAnd:
		c.conjunction.set(i)
		c.lhs[i] = c.lookup(g.L)
		c.rhs[i] = c.lookup(g.R)

	case ltl.OpOr:
		c.disjunction.set(i)
		c.lhs[i] = c.lookup(g.L)
		c.rhs[i] = c.lookup(g.R)

	case ltl.OpUntil:
		c.until.set(i)
		c.lhs[i] = c.lookup(g.L)
		c.rhs[i] = c.lookup(g.R)
		c.xSkin[i] = c.lookup(ltl.Next(g))

	default:
		panic(fmt.Sprintf("unsupported operator in closure: %s", g))
	}
}

// buildEventualities assigns a compact slot to every subformula expected
// to eventually hold: the operand of each F, the right operand of each U,
// and both (negated) operands of each ¬U.
func (c *closure) buildEventualities() {
	var evs []*ltl.Formula
	for i := 0; i < c.n; i++ {
		switch {
		case c.eventually.test(i):
			evs = append(evs, c.formulas[c.lhs[i]])
		case c.until.test(i):
			evs = append(evs, c.formulas[c.rhs[i]])
		case c.notUntil.test(i):
			evs = append(evs, c.formulas[c.lhs[i]])
			evs = append(evs, c.formulas[c.rhs[i]])
		}
	}
	if len(evs) == 0 {
		return
	}

	sort.Slice(evs, func(i, j int) bool { return ltl.Compare(evs[i], evs[j]) < 0 })
	uniq := evs[:1]
	for _, g := range evs[1:] {
		if ltl.Compare(uniq[len(uniq)-1], g) != 0 {
			uniq = append(uniq, g)
		}
	}

	c.bwEv = make([]int, len(uniq))
	for s, g := range uniq {
		pos := c.lookup(g)
		c.fwEv[pos] = s
		c.bwEv[s] = pos
	}
}

// buildClauses precomputes the propositional abstraction used by the SAT
// bridge: one clause per closure entry, over one variable per closure
// position. The entry at index i is encoded by the variable i+1; a
// negation is encoded as the negative literal of the entry it follows.
func (c *closure) buildClauses() {
	for i, g := range c.formulas {
		switch g.Op {
		case ltl.OpAtom, ltl.OpAlways, ltl.OpEventually, ltl.OpUntil:
			c.clauses[i] = []z.Lit{z.Var(i + 1).Pos()}
		case ltl.OpNot:
			// Covers both plain negations and ¬U entries: the negated
			// formula sits at the directly preceding index.
			c.clauses[i] = []z.Lit{z.Var(i).Neg()}
		case ltl.OpNext:
			if g.L.Op == ltl.OpNot {
				c.clauses[i] = []z.Lit{z.Var(i).Neg()}
			} else {
				c.clauses[i] = []z.Lit{z.Var(i + 1).Pos()}
			}
		case ltl.OpOr:
			c.clauses[i] = c.flattenDisjunction(g, nil)
		}
		// Conjunctions contribute nothing: the abstraction is already
		// in conjunctive form.
	}
}

// flattenDisjunction encodes the leaves of a disjunction tree as a single
// multi-literal clause. A leaf is any non-disjunction subformula;
// negation-shaped leaves flip polarity.
func (c *closure) flattenDisjunction(g *ltl.Formula, lits []z.Lit) []z.Lit {
	for _, side := range []*ltl.Formula{g.L, g.R} {
		if side.Op == ltl.OpOr {
			lits = c.flattenDisjunction(side, lits)
			continue
		}
		i := c.lookup(side)
		if side.Op == ltl.OpNot || (side.Op == ltl.OpNext && side.L.Op == ltl.OpNot) {
			lits = append(lits, z.Var(i).Neg())
		} else {
			lits = append(lits, z.Var(i+1).Pos())
		}
	}
	return lits
}
