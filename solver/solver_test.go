package solver

import (
	"context"
	"errors"
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acarlson/crossgen/grid"
)

// plus: one across and one down slot of length 3 crossing at index 1
// of each.
const plus = `#_#
___
#_#`

// rails: two across slots of length 3 with no crossing.
const rails = `___
###
___`

// frame: four slots, the fixture used by the grid package tests too.
const frame = `#___#
#_##_
#_##_
#_##_
#____`

func mustGrid(t *testing.T, structure string, words []string) *grid.Grid {
	t.Helper()
	g, err := grid.NewFromStrings(structure, words)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

// checkFill verifies completeness, word lengths, distinctness, and
// crossing agreement for a returned assignment.
func checkFill(t *testing.T, g *grid.Grid, fill Assignment) {
	t.Helper()
	is := is.New(t)
	is.Equal(len(fill), len(g.Variables()))
	used := map[string]struct{}{}
	for _, v := range g.Variables() {
		w, ok := fill[v]
		is.True(ok)
		is.Equal(len(w), v.Length)
		_, dup := used[w]
		is.True(!dup)
		used[w] = struct{}{}
		_, inVocab := g.Words()[w]
		is.True(inVocab)
		for _, n := range g.Neighbors(v) {
			ov, ok := g.Overlap(v, n)
			is.True(ok)
			is.Equal(w[ov.A], fill[n][ov.B])
		}
	}
}

func TestCrossingSlots(t *testing.T) {
	is := is.New(t)
	// Middle letters must agree; CAR and CAT share an A.
	g := mustGrid(t, plus, []string{"CAT", "CAR", "DOG"})
	fill, err := New(g).Solve(context.Background())
	is.NoErr(err)
	checkFill(t, g, fill)
}

func TestCrossingSlotsNoCompatiblePair(t *testing.T) {
	is := is.New(t)
	// All middle letters differ, so no pair of distinct words can cross.
	g := mustGrid(t, plus, []string{"CAT", "DOG", "ACT"})
	_, err := New(g).Solve(context.Background())
	is.True(errors.Is(err, ErrNoSolution))
}

func TestNoWordOfRequiredLength(t *testing.T) {
	is := is.New(t)
	g := mustGrid(t, "_____", []string{"CAT", "DOG"})
	s := New(g)
	_, err := s.Solve(context.Background())
	is.True(errors.Is(err, ErrNoSolution))
	// Node consistency emptied the only domain before any search.
	is.True(s.nodes.Load() <= 1)
}

func TestIndependentSlots(t *testing.T) {
	is := is.New(t)
	g := mustGrid(t, rails, []string{"CAT", "DOG"})
	fill, err := New(g).Solve(context.Background())
	is.NoErr(err)
	checkFill(t, g, fill)
}

func TestFullGrid(t *testing.T) {
	is := is.New(t)
	words := []string{"HELLO", "HAT", "OXEN", "BARN", "HELP", "DOG", "CAB", "TEN"}
	g := mustGrid(t, frame, words)
	fill, err := New(g).Solve(context.Background())
	is.NoErr(err)
	checkFill(t, g, fill)
}

func TestSolveIsRepeatable(t *testing.T) {
	is := is.New(t)
	g := mustGrid(t, plus, []string{"CAT", "CAR"})
	s := New(g)
	first, err := s.Solve(context.Background())
	is.NoErr(err)
	second, err := s.Solve(context.Background())
	is.NoErr(err)
	is.Equal(first, second)
}

func TestNodeConsistencyIdempotent(t *testing.T) {
	is := is.New(t)
	g := mustGrid(t, frame, []string{"HELLO", "HAT", "OXEN", "BARN", "A", "TOOLONGWORD"})
	s := New(g)
	d := s.domains.clone()
	s.enforceNodeConsistency(d)
	once := d.clone()
	s.enforceNodeConsistency(d)
	is.Equal(d, once)
	for v, words := range d {
		for w := range words {
			is.Equal(len(w), v.Length)
		}
	}
}

func TestAC3Monotonic(t *testing.T) {
	is := is.New(t)
	g := mustGrid(t, frame, []string{"HELLO", "HAT", "OXEN", "BARN", "HELP", "CAB"})
	s := New(g)
	d := s.domains.clone()
	s.enforceNodeConsistency(d)
	before := d.clone()
	is.True(s.ac3(d, nil))
	for v, words := range d {
		for w := range words {
			_, ok := before[v][w]
			is.True(ok)
		}
	}
}

func TestAC3Soundness(t *testing.T) {
	is := is.New(t)
	// The unique fill is HELLO/HAT/OXEN/BARN; AC-3 must not delete any
	// of the words it depends on.
	g := mustGrid(t, frame, []string{"HELLO", "HAT", "OXEN", "BARN", "HELP", "DOG"})
	s := New(g)
	d := s.domains.clone()
	s.enforceNodeConsistency(d)
	is.True(s.ac3(d, nil))

	fill, err := s.Solve(context.Background())
	is.NoErr(err)
	for v, w := range fill {
		_, ok := d[v][w]
		is.True(ok)
	}
}

// cross43: a length-4 across slot crossed by a length-3 down slot at
// index 1 of each.
const cross43 = `#_##
____
#_##`

func TestAC3FailureDetection(t *testing.T) {
	is := is.New(t)
	// DOGS[1] and CAT[1] disagree, so propagation empties a domain.
	g := mustGrid(t, cross43, []string{"DOGS", "CAT"})
	s := New(g)
	d := s.domains.clone()
	s.enforceNodeConsistency(d)
	is.True(!s.ac3(d, nil))

	// Solve hits the same wall during global propagation and never
	// starts the search.
	_, err := s.Solve(context.Background())
	is.True(errors.Is(err, ErrNoSolution))
	is.Equal(s.nodes.Load(), uint64(0))
}

func TestScopedAC3(t *testing.T) {
	is := is.New(t)
	g := mustGrid(t, plus, []string{"CAT", "CAR", "DOG", "BUS"})
	s := New(g)
	d := s.domains.clone()
	s.enforceNodeConsistency(d)

	across := grid.Variable{Row: 1, Col: 0, Length: 3, Dir: grid.Across}
	down := grid.Variable{Row: 0, Col: 1, Length: 3, Dir: grid.Down}

	// Commit the across slot to CAT and re-propagate only the arcs that
	// touch it.
	d[across] = map[string]struct{}{"CAT": {}}
	is.True(s.ac3(d, []arc{{down, across}}))
	// Only words with an A in the middle survive in the down slot.
	is.Equal(d[down], map[string]struct{}{"CAT": {}, "CAR": {}})
}

func TestVariableSelection(t *testing.T) {
	g := mustGrid(t, frame, []string{"HELLO", "HAT", "OXEN", "BARN"})
	s := New(g)

	a3 := grid.Variable{Row: 0, Col: 1, Length: 3, Dir: grid.Across}
	d5 := grid.Variable{Row: 0, Col: 1, Length: 5, Dir: grid.Down}
	d4 := grid.Variable{Row: 1, Col: 4, Length: 4, Dir: grid.Down}
	a4 := grid.Variable{Row: 4, Col: 1, Length: 4, Dir: grid.Across}

	d := domains{
		a3: {"HAT": {}, "CAB": {}},
		d5: {"HELLO": {}},
		d4: {"OXEN": {}, "BARN": {}},
		a4: {"OXEN": {}, "BARN": {}},
	}

	// Smallest domain wins.
	assert.Equal(t, d5, s.selectUnassignedVariable(d, Assignment{}))
	// a3, d4, and a4 tie at domain size 2; a4 has the highest degree.
	assert.Equal(t, a4, s.selectUnassignedVariable(d, Assignment{d5: "HELLO"}))
	// Remaining tie at equal size and degree falls back to grid order.
	assert.Equal(t, a3, s.selectUnassignedVariable(d, Assignment{d5: "HELLO", a4: "BARN"}))
}

func TestValueOrdering(t *testing.T) {
	g := mustGrid(t, plus, []string{"CAT", "CAR", "TAR", "DOG", "BUS"})
	s := New(g)
	d := s.domains.clone()
	s.enforceNodeConsistency(d)

	across := grid.Variable{Row: 1, Col: 0, Length: 3, Dir: grid.Across}

	// Middle letters in the down domain: A (CAT, CAR, TAR), O (DOG),
	// U (BUS). An A-middled candidate rules out 2 of 5; DOG and BUS rule
	// out 4 of 5 each. Ties are lexicographic.
	got := s.orderDomainValues(d, across, Assignment{})
	require.Len(t, got, 5)
	assert.Equal(t, []string{"CAR", "CAT", "TAR", "BUS", "DOG"}, got)
}

func TestParallelSolve(t *testing.T) {
	is := is.New(t)
	words := []string{"HELLO", "HAT", "OXEN", "BARN", "HELP", "DOG", "CAB", "TEN"}
	g := mustGrid(t, frame, words)
	s := New(g)
	s.SetThreads(4)
	fill, err := s.Solve(context.Background())
	is.NoErr(err)
	checkFill(t, g, fill)
}

func TestParallelSolveNoSolution(t *testing.T) {
	is := is.New(t)
	g := mustGrid(t, plus, []string{"CAT", "DOG", "ACT"})
	s := New(g)
	s.SetThreads(4)
	_, err := s.Solve(context.Background())
	is.True(errors.Is(err, ErrNoSolution))
}

func TestSolveCancelled(t *testing.T) {
	is := is.New(t)
	g := mustGrid(t, plus, []string{"CAT", "CAR"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(g).Solve(ctx)
	is.True(errors.Is(err, context.Canceled))
}
