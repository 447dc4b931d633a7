// Package solver fills a crossword grid by constraint propagation and
// backtracking search. Domains are pruned by node consistency (word
// length) and arc consistency (AC-3 over crossing constraints); the
// remaining space is searched with MRV/degree variable selection and
// least-constraining-value ordering.
package solver

import (
	"context"
	"errors"
	"sort"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/acarlson/crossgen/grid"
)

// ErrNoSolution is returned when the search space is exhausted without
// finding a complete fill. It is a normal outcome, not a fault.
var ErrNoSolution = errors.New("no solution found")

// An Assignment maps every slot to its chosen word. It is partial during
// search and total when returned from Solve.
type Assignment map[grid.Variable]string

// domains is the store of still-possible words per slot. It only ever
// shrinks; the search clones it before each tentative commitment so that
// undoing a branch is just dropping the clone.
type domains map[grid.Variable]map[string]struct{}

func (d domains) clone() domains {
	cp := make(domains, len(d))
	for v, words := range d {
		ws := make(map[string]struct{}, len(words))
		for w := range words {
			ws[w] = struct{}{}
		}
		cp[v] = ws
	}
	return cp
}

type arc struct {
	x, y grid.Variable
}

type Solver struct {
	g       *grid.Grid
	domains domains
	threads int
	nodes   atomic.Uint64
}

func New(g *grid.Grid) *Solver {
	d := make(domains, len(g.Variables()))
	for _, v := range g.Variables() {
		words := make(map[string]struct{}, len(g.Words()))
		for w := range g.Words() {
			words[w] = struct{}{}
		}
		d[v] = words
	}
	return &Solver{g: g, domains: d, threads: 1}
}

// SetThreads enables a parallel split of the root variable's candidate
// values across n workers. n <= 1 keeps the search single-threaded.
func (s *Solver) SetThreads(n int) {
	if n < 1 {
		n = 1
	}
	s.threads = n
}

// Solve runs node consistency, global arc consistency, and backtracking
// search. It returns a total assignment, ErrNoSolution when the space is
// exhausted, or the context's error if ctx expires mid-search. The
// solver's own domain store is never mutated, so Solve may be called
// repeatedly.
func (s *Solver) Solve(ctx context.Context) (Assignment, error) {
	start := time.Now()
	s.nodes.Store(0)

	d := s.domains.clone()
	s.enforceNodeConsistency(d)
	if !s.ac3(d, nil) {
		log.Debug().Msg("arc consistency emptied a domain before search")
		return nil, ErrNoSolution
	}

	var (
		asgn Assignment
		err  error
	)
	if s.threads > 1 {
		asgn, err = s.parallelBacktrack(ctx, d)
	} else {
		asgn, err = s.backtrack(ctx, d, Assignment{})
	}
	log.Debug().
		Uint64("nodes", s.nodes.Load()).
		Dur("elapsed", time.Since(start)).
		Bool("solved", err == nil).
		Msg("search finished")
	return asgn, err
}

// enforceNodeConsistency removes every word whose length disagrees with
// its slot. Idempotent; runs once before propagation.
func (s *Solver) enforceNodeConsistency(d domains) {
	for v, words := range d {
		for w := range words {
			if len(w) != v.Length {
				delete(words, w)
			}
		}
	}
}

// revise removes from domain(x) every word with no compatible partner in
// domain(y) at the registered crossing. No-op when x and y do not cross.
// Reports whether anything was removed.
func (s *Solver) revise(d domains, x, y grid.Variable) bool {
	ov, ok := s.g.Overlap(x, y)
	if !ok {
		return false
	}
	revised := false
	for wx := range d[x] {
		compatible := false
		for wy := range d[y] {
			if wx[ov.A] == wy[ov.B] {
				compatible = true
				break
			}
		}
		if !compatible {
			delete(d[x], wx)
			revised = true
		}
	}
	return revised
}

// ac3 propagates crossing constraints until a fixed point. With a nil
// arc list it starts from every ordered pair of distinct variables;
// the search passes the arcs touching a just-assigned slot instead.
// Returns false as soon as any domain empties.
func (s *Solver) ac3(d domains, arcs []arc) bool {
	queue := arcs
	if queue == nil {
		for _, x := range s.g.Variables() {
			for _, y := range s.g.Variables() {
				if x != y {
					queue = append(queue, arc{x, y})
				}
			}
		}
	}
	for len(queue) > 0 {
		a := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		if !s.revise(d, a.x, a.y) {
			continue
		}
		if len(d[a.x]) == 0 {
			log.Debug().Str("variable", a.x.String()).Msg("domain emptied during propagation")
			return false
		}
		// Revising x may have broken a neighbor's consistency with x;
		// only those arcs need another look.
		for _, z := range s.g.Neighbors(a.x) {
			if z != a.y {
				queue = append(queue, arc{z, a.x})
			}
		}
	}
	return true
}

// selectUnassignedVariable applies minimum-remaining-values, then
// maximum degree, then the grid's row-major order.
func (s *Solver) selectUnassignedVariable(d domains, asgn Assignment) grid.Variable {
	unassigned := lo.Filter(s.g.Variables(), func(v grid.Variable, _ int) bool {
		_, done := asgn[v]
		return !done
	})
	best := unassigned[0]
	for _, v := range unassigned[1:] {
		dv, db := len(d[v]), len(d[best])
		if dv != db {
			if dv < db {
				best = v
			}
			continue
		}
		if len(s.g.Neighbors(v)) > len(s.g.Neighbors(best)) {
			best = v
		}
	}
	return best
}

// orderDomainValues sorts v's candidates by how many words they would
// rule out among unassigned neighbors (least-constraining first), ties
// broken lexicographically.
func (s *Solver) orderDomainValues(d domains, v grid.Variable, asgn Assignment) []string {
	values := lo.Keys(d[v])
	ruledOut := make(map[string]int, len(values))
	for _, n := range s.g.Neighbors(v) {
		if _, done := asgn[n]; done {
			continue
		}
		ov, _ := s.g.Overlap(v, n)
		for _, value := range values {
			for w := range d[n] {
				if value[ov.A] != w[ov.B] {
					ruledOut[value]++
				}
			}
		}
	}
	sort.Slice(values, func(i, j int) bool {
		if ruledOut[values[i]] != ruledOut[values[j]] {
			return ruledOut[values[i]] < ruledOut[values[j]]
		}
		return values[i] < values[j]
	})
	return values
}

// consistent reports whether the partial assignment uses pairwise
// distinct words of the right lengths that agree at every crossing.
func (s *Solver) consistent(asgn Assignment) bool {
	used := make(map[string]struct{}, len(asgn))
	for v, w := range asgn {
		if _, dup := used[w]; dup {
			return false
		}
		used[w] = struct{}{}
		if len(w) != v.Length {
			return false
		}
		for _, n := range s.g.Neighbors(v) {
			nw, done := asgn[n]
			if !done {
				continue
			}
			ov, _ := s.g.Overlap(v, n)
			if w[ov.A] != nw[ov.B] {
				return false
			}
		}
	}
	return true
}

// backtrack extends asgn one slot at a time. Each tentative commitment
// is propagated through the arcs that touch it on a cloned domain store,
// so failure just drops the clone. Returns ErrNoSolution when every
// candidate for the chosen slot fails.
func (s *Solver) backtrack(ctx context.Context, d domains, asgn Assignment) (Assignment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.nodes.Add(1)
	if len(asgn) == len(s.g.Variables()) {
		return asgn, nil
	}
	v := s.selectUnassignedVariable(d, asgn)
	for _, value := range s.orderDomainValues(d, v, asgn) {
		asgn[v] = value
		if s.consistent(asgn) {
			trial := d.clone()
			trial[v] = map[string]struct{}{value: {}}
			arcs := lo.Map(s.g.Neighbors(v), func(n grid.Variable, _ int) arc {
				return arc{n, v}
			})
			if s.ac3(trial, arcs) {
				result, err := s.backtrack(ctx, trial, asgn)
				if err == nil {
					return result, nil
				}
				if !errors.Is(err, ErrNoSolution) {
					return nil, err
				}
			}
		}
		delete(asgn, v)
	}
	return nil, ErrNoSolution
}
