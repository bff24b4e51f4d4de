// Package statistics summarizes a working state's centrality distributions
// and reports how they shifted between two runs of the analysis.
package statistics

import (
	"fmt"
	"io"
	"sort"

	"github.com/runziggurat/ips/pkg/model"
)

// percentageChangeEpsilon guards PercentageChange's denominator: without
// it, a distribution whose original value happens to be exactly zero
// would report a divide-by-zero rather than a defined (if large) change.
const percentageChangeEpsilon = 1e-9

// Statistics summarizes one IpsState's four centrality distributions.
type Statistics struct {
	NodesCount int

	DegreeAverage float64
	DegreeMedian  float64
	DegreeMin     float64
	DegreeMax     float64

	BetweennessAverage float64
	BetweennessMedian  float64
	BetweennessMin     float64
	BetweennessMax     float64

	ClosenessAverage float64
	ClosenessMedian  float64
	ClosenessMin     float64
	ClosenessMax     float64

	EigenvectorAverage float64
	EigenvectorMedian  float64
	EigenvectorMin     float64
	EigenvectorMax     float64
}

// Average returns the arithmetic mean of values, or 0 for an empty slice.
func Average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// AverageInt returns the arithmetic mean of integer values, or 0 for an
// empty slice. Used for degree centrality, which is stored as ints.
func AverageInt(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum int
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

// Median returns the median of values and true, or (0, false) for an empty
// slice. Callers must check the second return value; an empty series has
// no defined median. values is not mutated.
func Median(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2.0, true
	}
	return sorted[mid], true
}

// MedianInt is Median for integer series.
func MedianInt(values []int) (float64, bool) {
	floats := make([]float64, len(values))
	for i, v := range values {
		floats[i] = float64(v)
	}
	return Median(floats)
}

// Generate computes a Statistics snapshot of state. Min/max for each
// centrality are taken from state's stored normalization Factors, not
// recomputed from the node values, matching how the reference
// implementation sources them.
func Generate(state *model.IpsState) Statistics {
	degrees := make([]int, 0, len(state.Degrees))
	for _, d := range state.Degrees {
		degrees = append(degrees, d)
	}
	degreeMedian, _ := MedianInt(degrees)

	betweenness := make([]float64, len(state.Nodes))
	closeness := make([]float64, len(state.Nodes))
	for i, n := range state.Nodes {
		betweenness[i] = n.Betweenness
		closeness[i] = n.Closeness
	}
	betweennessMedian, _ := Median(betweenness)
	closenessMedian, _ := Median(closeness)

	eigenvalues := make([]float64, 0, len(state.Eigenvalues))
	for _, e := range state.Eigenvalues {
		eigenvalues = append(eigenvalues, e)
	}
	eigenvectorMedian, _ := Median(eigenvalues)

	return Statistics{
		NodesCount: len(state.Nodes),

		DegreeAverage: AverageInt(degrees),
		DegreeMedian:  degreeMedian,
		DegreeMin:     state.DegreeFactors.Min,
		DegreeMax:     state.DegreeFactors.Max,

		BetweennessAverage: Average(betweenness),
		BetweennessMedian:  betweennessMedian,
		BetweennessMin:     state.BetweennessFactors.Min,
		BetweennessMax:     state.BetweennessFactors.Max,

		ClosenessAverage: Average(closeness),
		ClosenessMedian:  closenessMedian,
		ClosenessMin:     state.ClosenessFactors.Min,
		ClosenessMax:     state.ClosenessFactors.Max,

		EigenvectorAverage: Average(eigenvalues),
		EigenvectorMedian:  eigenvectorMedian,
		EigenvectorMin:     state.EigenvectorFactors.Min,
		EigenvectorMax:     state.EigenvectorFactors.Max,
	}
}

// PercentageChange returns the percentage difference of new relative to
// orig. The epsilon guard keeps the result finite when orig is zero or
// extremely small, which the reference implementation's plain subtraction
// delta never had to handle.
func PercentageChange(orig, new float64) float64 {
	denom := orig
	if denom < 0 {
		denom = -denom
	}
	if denom < percentageChangeEpsilon {
		denom = percentageChangeEpsilon
	}
	return ((new - orig) / denom) * 100
}

// Print writes a human-readable summary of s to w.
func Print(w io.Writer, s Statistics) {
	fmt.Fprintf(w, "nodes: %d\n", s.NodesCount)
	fmt.Fprintf(w, "degree:      avg=%.4f median=%.4f min=%.4f max=%.4f\n",
		s.DegreeAverage, s.DegreeMedian, s.DegreeMin, s.DegreeMax)
	fmt.Fprintf(w, "betweenness: avg=%.4f median=%.4f min=%.4f max=%.4f\n",
		s.BetweennessAverage, s.BetweennessMedian, s.BetweennessMin, s.BetweennessMax)
	fmt.Fprintf(w, "closeness:   avg=%.4f median=%.4f min=%.4f max=%.4f\n",
		s.ClosenessAverage, s.ClosenessMedian, s.ClosenessMin, s.ClosenessMax)
	fmt.Fprintf(w, "eigenvector: avg=%.4f median=%.4f min=%.4f max=%.4f\n",
		s.EigenvectorAverage, s.EigenvectorMedian, s.EigenvectorMin, s.EigenvectorMax)
}

// PrintDelta writes the percentage change of each averaged field between
// orig and updated to w.
func PrintDelta(w io.Writer, orig, updated Statistics) {
	fmt.Fprintf(w, "nodes:       %+.2f%%\n", PercentageChange(float64(orig.NodesCount), float64(updated.NodesCount)))
	fmt.Fprintf(w, "degree:      %+.2f%%\n", PercentageChange(orig.DegreeAverage, updated.DegreeAverage))
	fmt.Fprintf(w, "betweenness: %+.2f%%\n", PercentageChange(orig.BetweennessAverage, updated.BetweennessAverage))
	fmt.Fprintf(w, "closeness:   %+.2f%%\n", PercentageChange(orig.ClosenessAverage, updated.ClosenessAverage))
	fmt.Fprintf(w, "eigenvector: %+.2f%%\n", PercentageChange(orig.EigenvectorAverage, updated.EigenvectorAverage))
}
