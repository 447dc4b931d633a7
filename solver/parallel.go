package solver

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"
)

// parallelBacktrack forks the root variable's candidate values across
// workers, each searching an independent clone of the domain store. The
// first complete fill wins and cancels the rest. Branches are disjoint,
// so no two workers ever share mutable state.
func (s *Solver) parallelBacktrack(parent context.Context, d domains) (Assignment, error) {
	root := s.selectUnassignedVariable(d, Assignment{})
	values := s.orderDomainValues(d, root, Assignment{})

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	g := errgroup.Group{}
	g.SetLimit(s.threads)

	var mu sync.Mutex
	var solution Assignment

	for _, value := range values {
		value := value
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			trial := d.clone()
			trial[root] = map[string]struct{}{value: {}}
			arcs := make([]arc, 0, len(s.g.Neighbors(root)))
			for _, n := range s.g.Neighbors(root) {
				arcs = append(arcs, arc{n, root})
			}
			if !s.ac3(trial, arcs) {
				return nil
			}
			result, err := s.backtrack(ctx, trial, Assignment{root: value})
			if err != nil {
				// A lost race or an exhausted branch is not an error for
				// the group; a parent deadline is reported by the caller.
				if errors.Is(err, ErrNoSolution) || ctx.Err() != nil {
					return nil
				}
				return err
			}
			mu.Lock()
			if solution == nil {
				solution = result
				cancel()
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if solution != nil {
		return solution, nil
	}
	if err := parent.Err(); err != nil {
		return nil, err
	}
	return nil, ErrNoSolution
}
