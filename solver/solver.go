package solver

import (
	"io"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/ltlab/golasso/ltl"
)

// DefaultMaximumDepth bounds the search depth when no explicit bound is
// given in the options.
const DefaultMaximumDepth = 1 << 12

// Options configure a Solver. The zero value is usable: default depth
// bound, lookback heuristic off, native branching instead of the SAT
// bridge, deterministic seed.
type Options struct {
	// MaximumDepth bounds the frame id on every branch; 0 selects
	// DefaultMaximumDepth. When the bound truncates the search, an
	// Unsatisfiable verdict only means no model was found within it.
	MaximumDepth uint64
	// BacktrackProbability in [0,100] drives the OCCASIONAL LOOKBACK
	// heuristic: how often the loop/repetition check is run before a time
	// step. Values above 100 are clamped. 100 checks on every step.
	BacktrackProbability uint32
	// MinimumBacktrack and MaximumBacktrack in [0,100] are reserved for
	// the partial lookback heuristic; they are validated and clamped but
	// currently drive nothing.
	MinimumBacktrack uint32
	MaximumBacktrack uint32
	// UseSAT delegates pending disjunctions to the propositional solver
	// instead of branching on them one at a time.
	UseSAT bool
	// Seed seeds the heuristic's random source, for reproducible runs.
	Seed int64
	// Logger receives progress information about the solving process.
	// A nil Logger discards it.
	Logger *logrus.Logger
}

// A Solver decides satisfiability of an LTL formula by one-pass tree
// tableau search and, on success, produces an ultimately periodic model.
// It is the main data structure.
type Solver struct {
	formula              *ltl.Formula
	maximumDepth         uint64
	backtrackProbability uint32
	minimumBacktrack     uint32
	maximumBacktrack     uint32
	useSAT               bool
	rng                  *rand.Rand
	log                  *logrus.Logger

	c   *closure
	tmp *bitset // scratch bitset, reused by every rule

	hasEventually bool
	hasUntil      bool
	hasNotUntil   bool

	stack     []*frame
	state     solverState
	result    Result
	loopState uint64
	trivially bool // formula collapsed to a constant during initialization
}

// New builds a solver for the given formula. The formula is simplified
// first; probabilities out of range are silently clamped.
func New(f *ltl.Formula, opts Options) *Solver {
	if opts.MaximumDepth == 0 {
		opts.MaximumDepth = DefaultMaximumDepth
	}
	if opts.BacktrackProbability > 100 {
		opts.BacktrackProbability = 100
	}
	if opts.MaximumBacktrack > 100 {
		opts.MaximumBacktrack = 100
	}
	if opts.MinimumBacktrack > opts.MaximumBacktrack {
		opts.MinimumBacktrack = opts.MaximumBacktrack
	}
	log := opts.Logger
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}

	s := &Solver{
		formula:              f,
		maximumDepth:         opts.MaximumDepth,
		backtrackProbability: opts.BacktrackProbability,
		minimumBacktrack:     opts.MinimumBacktrack,
		maximumBacktrack:     opts.MaximumBacktrack,
		useSAT:               opts.UseSAT,
		rng:                  rand.New(rand.NewSource(opts.Seed)),
		log:                  log,
	}
	s.initialize()
	return s
}

func (s *Solver) initialize() {
	s.log.Info("initializing solver")

	s.formula = ltl.Simplify(s.formula)
	s.log.WithField("formula", s.formula).Debug("formula simplified")

	switch s.formula.Op {
	case ltl.OpTrue:
		s.trivially = true
		s.result = Satisfiable
		s.state = stateDone
		return
	case ltl.OpFalse:
		s.trivially = true
		s.result = Unsatisfiable
		s.state = stateDone
		return
	}

	s.c = buildClosure(s.formula)
	s.tmp = newBitset(s.c.n)

	s.hasEventually = s.c.eventually.any()
	s.hasUntil = s.c.until.any()
	s.hasNotUntil = s.c.notUntil.any()

	s.log.WithFields(logrus.Fields{
		"subformulas":   s.c.n,
		"eventualities": len(s.c.bwEv),
	}).Info("solver initialized")

	s.stack = append(s.stack, newRootFrame(s.c.start, s.c.n, len(s.c.bwEv)))
	s.state = stateInitialized
}

func (s *Solver) top() *frame {
	return s.stack[len(s.stack)-1]
}

func (s *Solver) push(f *frame) {
	s.stack = append(s.stack, f)
}

func (s *Solver) pop() {
	s.stack[len(s.stack)-1] = nil
	s.stack = s.stack[:len(s.stack)-1]
}

// Solve runs or resumes the search until a verdict is reached.
// After a Satisfiable verdict the solver is paused: calling Solve again
// abandons the current model and searches for the next one, returning
// Unsatisfiable once no further model exists within the depth bound.
func (s *Solver) Solve() Result {
	if s.state == stateRunning || s.state == stateDone {
		return s.result
	}
	if s.state == statePaused {
		// Abandon the current model and look for the next one.
		s.result = Undefined
		s.rollbackToLatestChoice()
	}
	s.state = stateRunning

search:
	for len(s.stack) > 0 {
		f := s.top()

		for applied := true; applied; {
			applied = false

			if f.formulas.none() {
				// Every obligation was discharged: the chain closes here.
				s.result = Satisfiable
				s.state = statePaused
				if f.chain != nil {
					s.loopState = f.chain.id
				} else {
					s.loopState = 0
				}
				return s.result
			}

			if s.checkContradiction(f) {
				s.rollbackToLatestChoice()
				continue search
			}

			if s.applyConjunctionRule(f) {
				applied = true
			}
			if s.applyAlwaysRule(f) {
				applied = true
			}

			if !s.shouldUseSAT(f) && s.applyChoiceRule(f, s.c.disjunction) {
				child := childFrame(f)
				child.formulas.set(s.c.lhs[f.chosen])
				s.push(child)
				continue search
			}

			if s.hasEventually && s.applyChoiceRule(f, s.c.eventually) {
				ev := &f.eventualities[s.c.fwEv[s.c.lhs[f.chosen]]]
				if ev.isNotRequested() {
					ev.setNotSatisfied()
				}
				child := childFrame(f)
				child.formulas.set(s.c.lhs[f.chosen])
				s.push(child)
				continue search
			}

			if s.hasUntil && s.applyChoiceRule(f, s.c.until) {
				ev := &f.eventualities[s.c.fwEv[s.c.rhs[f.chosen]]]
				if ev.isNotRequested() {
					ev.setNotSatisfied()
				}
				child := childFrame(f)
				child.formulas.set(s.c.rhs[f.chosen])
				s.push(child)
				continue search
			}

			if s.hasNotUntil && s.applyChoiceRule(f, s.c.notUntil) {
				ev := &f.eventualities[s.c.fwEv[s.c.lhs[f.chosen]]]
				if ev.isNotRequested() {
					ev.setNotSatisfied()
				}
				ev = &f.eventualities[s.c.fwEv[s.c.rhs[f.chosen]]]
				if ev.isNotRequested() {
					ev.setNotSatisfied()
				}
				child := childFrame(f)
				child.formulas.set(s.c.lhs[f.chosen])
				child.formulas.set(s.c.rhs[f.chosen])
				s.push(child)
				continue search
			}

			if applied {
				continue
			}

			if s.shouldUseSAT(f) {
				s.runSATBridge(f)
				continue search
			}
		}

		s.updateEventualities(f)

		// Heuristic: OCCASIONAL LOOKBACK.
		if s.rng.Intn(100) < int(s.backtrackProbability) {
			var rep1, rep2 *frame
			for cur := f.chain; cur != nil; cur = cur.chain {
				if !f.formulas.subsetOf(cur.formulas) {
					continue
				}

				// LOOP rule: the ancestor covers us and every requested
				// eventuality was satisfied inside the candidate period.
				allSatisfied := true
				for i := range f.eventualities {
					ev := f.eventualities[i]
					if ev.isNotRequested() {
						continue
					}
					if !ev.isSatisfied() || ev.id() < cur.id {
						allSatisfied = false
						break
					}
				}
				if allSatisfied {
					s.result = Satisfiable
					s.state = statePaused
					s.loopState = cur.id
					return s.result
				}

				// REP rule bookkeeping.
				if f.formulas.equal(cur.formulas) {
					if rep1 == nil {
						rep1 = cur
					} else if rep2 == nil {
						rep2 = cur
					}
				}
			}
			if rep1 != nil && rep2 != nil {
				s.rollbackToLatestChoice()
				continue search
			}
		}

		if f.id >= s.maximumDepth {
			s.rollbackToLatestChoice()
			continue search
		}

		// STEP rule: strip one X from every tomorrow obligation.
		child := stepFrame(f.id+1, s.c.n, f.eventualities, f)
		s.tmp.copyFrom(f.formulas)
		s.tmp.andWith(s.c.tomorrow)
		for i := 0; i < s.c.n; i++ {
			if s.tmp.test(i) {
				child.formulas.set(s.c.lhs[i])
			}
		}
		f.kind = frameStep
		s.push(child)
	}

	s.state = stateDone
	if s.result == Undefined {
		s.result = Unsatisfiable
	}
	return s.result
}

// checkContradiction reports whether the frame asserts both a formula and
// its negation. A negation sits directly after the formula it negates, so
// shifting the asserted negations down by one exposes the clash.
func (s *Solver) checkContradiction(f *frame) bool {
	s.tmp.copyFrom(f.formulas)
	s.tmp.andWith(s.c.negation)
	s.tmp.shiftDown()
	s.tmp.andWith(f.formulas)
	return s.tmp.any()
}

// applyConjunctionRule asserts both conjuncts of every unprocessed
// conjunction at once.
func (s *Solver) applyConjunctionRule(f *frame) bool {
	s.tmp.copyFrom(f.formulas)
	s.tmp.andWith(s.c.conjunction)
	s.tmp.andWith(f.toProcess)
	if s.tmp.none() {
		return false
	}
	for one := s.tmp.findFirst(); one >= 0; one = s.tmp.findNext(one) {
		f.formulas.set(s.c.lhs[one])
		f.formulas.set(s.c.rhs[one])
		f.toProcess.clear(one)
	}
	return true
}

// applyAlwaysRule unfolds every unprocessed G φ into φ and X G φ.
// The closure guarantees the X-skin sits at the directly following index.
func (s *Solver) applyAlwaysRule(f *frame) bool {
	s.tmp.copyFrom(f.formulas)
	s.tmp.andWith(s.c.always)
	s.tmp.andWith(f.toProcess)
	if s.tmp.none() {
		return false
	}
	for one := s.tmp.findFirst(); one >= 0; one = s.tmp.findNext(one) {
		f.formulas.set(s.c.lhs[one])
		f.formulas.set(s.c.xSkin[one])
		f.toProcess.clear(one)
	}
	return true
}

// applyChoiceRule picks the lowest unprocessed candidate of the given
// β-kind and marks the frame as a choice point on it. The caller pushes
// the child committing the first alternative; the second is taken on
// rollback.
func (s *Solver) applyChoiceRule(f *frame, kind *bitset) bool {
	s.tmp.copyFrom(f.formulas)
	s.tmp.andWith(kind)
	s.tmp.andWith(f.toProcess)
	one := s.tmp.findFirst()
	if one < 0 {
		return false
	}
	f.toProcess.clear(one)
	f.chosen = one
	f.kind = frameChoice
	return true
}

// updateEventualities stamps every eventuality whose awaited subformula
// holds in the frame with the current time index.
func (s *Solver) updateEventualities(f *frame) {
	for i := range f.eventualities {
		if f.formulas.test(s.c.bwEv[i]) {
			f.eventualities[i].setSatisfied(f.id)
		}
	}
}

// rollbackToLatestChoice unwinds the stack to the deepest frame that can
// still produce a different continuation: a choice frame with an untried
// second alternative, or a SAT frame with a further model. Everything
// above it is discarded.
func (s *Solver) rollbackToLatestChoice() {
	for len(s.stack) > 0 {
		top := s.top()

		if top.kind == frameChoice && top.chosen >= 0 {
			child := childFrame(top)
			chosen := top.chosen
			switch {
			case s.c.disjunction.test(chosen):
				child.formulas.set(s.c.rhs[chosen])
			case s.c.eventually.test(chosen):
				// Defer the obligation by one step via X F φ.
				child.formulas.set(s.c.xSkin[chosen])
			case s.c.until.test(chosen):
				child.formulas.set(s.c.lhs[chosen])
				child.formulas.set(s.c.xSkin[chosen])
			case s.c.notUntil.test(chosen):
				child.formulas.set(s.c.rhs[chosen])
				child.formulas.set(s.c.xSkin[chosen])
			default:
				panic("rollback on a frame that is not a choice point")
			}
			top.chosen = -1
			s.push(child)
			return
		}

		if top.kind == frameSAT && top.solver.Solve() == 1 {
			s.push(s.extractAssignment(top))
			return
		}

		s.pop()
	}
}
