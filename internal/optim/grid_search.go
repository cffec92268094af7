package optim

import (
	"context"
	"errors"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ErrNoFeasible is returned when every grid point failed.
var ErrNoFeasible = errors.New("optim: no feasible grid point")

// Objective scores one parameter assignment; lower is better. An error
// marks the point infeasible.
type Objective func(ctx context.Context, params map[string]float64) (float64, error)

// Point is one evaluated grid point.
type Point struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	workers    int
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges, workers: runtime.GOMAXPROCS(0)}
}

// WithWorkers bounds the number of concurrent evaluations.
func (g *GridSearch) WithWorkers(n int) *GridSearch {
	if n > 0 {
		g.workers = n
	}
	return g
}

// Search returns the grid point with the lowest objective. Ties keep the
// earliest point in enumeration order.
func (g *GridSearch) Search(ctx context.Context, objective Objective) (map[string]float64, float64, error) {
	points, err := g.Evaluate(ctx, objective)
	if err != nil {
		return nil, 0, err
	}

	best := math.Inf(1)
	var bestParams map[string]float64
	for _, p := range points {
		if p.Err != nil {
			continue
		}
		if p.Value < best {
			best = p.Value
			bestParams = p.Params
		}
	}
	if bestParams == nil {
		return nil, 0, ErrNoFeasible
	}
	return bestParams, best, nil
}

// Evaluate scores every grid point concurrently and returns them in
// enumeration order. Only cancellation of ctx is returned as an error.
func (g *GridSearch) Evaluate(ctx context.Context, objective Objective) ([]Point, error) {
	var points []Point
	g.enumerate(0, make(map[string]float64), &points)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for i := range points {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			points[i].Value, points[i].Err = objective(ctx, points[i].Params)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return points, nil
}

func (g *GridSearch) enumerate(depth int, current map[string]float64, out *[]Point) {
	if depth == len(g.paramNames) {
		params := make(map[string]float64, len(current))
		for k, v := range current {
			params[k] = v
		}
		*out = append(*out, Point{Params: params})
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[paramName] = val
		g.enumerate(depth+1, current, out)
	}
	delete(current, paramName)
}
