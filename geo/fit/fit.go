// Package fit does least-squares polynomial regression over (x, y) samples.
package fit

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrUnderdetermined is returned when there are fewer samples than coefficients.
	ErrUnderdetermined = errors.New("underdetermined fit")

	// ErrDegenerate is returned when the samples do not span enough distinct x values
	// for a unique solution.
	ErrDegenerate = errors.New("degenerate fit")
)

// Polynomial fits y = c[0]*x^order + ... + c[order] to points by least squares.
// Coefficients are returned highest degree first.
func Polynomial(points [][2]float64, order int) ([]float64, error) {
	if order < 0 {
		return nil, fmt.Errorf("fit: negative order %d", order)
	}
	n, k := len(points), order+1
	if n < k {
		return nil, fmt.Errorf("%w: at least %d points are required for fitting a %s polynomial, got %d",
			ErrUnderdetermined, k, degreeName(order), n)
	}
	if distinct := distinctX(points); distinct < k {
		return nil, fmt.Errorf("%w: %d distinct x values for %d coefficients", ErrDegenerate, distinct, k)
	}

	// Vandermonde design matrix, highest power in column 0.
	a := mat.NewDense(n, k, nil)
	b := mat.NewVecDense(n, nil)
	for i, p := range points {
		for j := 0; j < k; j++ {
			a.Set(i, j, math.Pow(p[0], float64(order-j)))
		}
		b.SetVec(i, p[1])
	}

	var c mat.VecDense
	if err := c.SolveVec(a, b); err != nil {
		var cond mat.Condition
		if errors.As(err, &cond) {
			return nil, fmt.Errorf("%w: condition number %g", ErrDegenerate, float64(cond))
		}
		return nil, fmt.Errorf("fit: %w", err)
	}
	out := make([]float64, k)
	for j := range out {
		out[j] = c.AtVec(j)
	}
	return out, nil
}

// Quadratic fits y = a*x^2 + b*x + c and returns [a, b, c].
func Quadratic(points [][2]float64) ([3]float64, error) {
	c, err := Polynomial(points, 2)
	if err != nil {
		return [3]float64{}, err
	}
	return [3]float64{c[0], c[1], c[2]}, nil
}

// EvalQuadratic evaluates a*x^2 + b*x + c.
func EvalQuadratic(c [3]float64, x float64) float64 {
	return c[0]*x*x + c[1]*x + c[2]
}

func distinctX(points [][2]float64) int {
	seen := make(map[float64]struct{}, len(points))
	for _, p := range points {
		seen[p[0]] = struct{}{}
	}
	return len(seen)
}

func degreeName(order int) string {
	switch order {
	case 1:
		return "first-degree"
	case 2:
		return "second-degree"
	case 3:
		return "third-degree"
	}
	return fmt.Sprintf("degree-%d", order)
}
