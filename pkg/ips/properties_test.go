package ips

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/runziggurat/ips/pkg/model"
	"github.com/runziggurat/ips/pkg/statistics"
)

// randomSymmetricGraph draws a random undirected graph (as index
// adjacency) with the symmetric-adjacency invariant already satisfied, so
// the property under test is whatever the exercised operation does to it.
func randomSymmetricGraph(t *rapid.T, maxNodes int) []model.Node {
	n := rapid.IntRange(2, maxNodes).Draw(t, "n")
	nodes := make([]model.Node, n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if rapid.Bool().Draw(t, "edge") {
				nodes[i].Connections = append(nodes[i].Connections, j)
				nodes[j].Connections = append(nodes[j].Connections, i)
			}
		}
	}
	return nodes
}

func assertSymmetric(t *rapid.T, nodes []model.Node) {
	for i, n := range nodes {
		for _, j := range n.Connections {
			if !containsInt(nodes[j].Connections, i) {
				t.Fatalf("adjacency not symmetric: %d -> %d but not back", i, j)
			}
			if j == i {
				t.Fatalf("self-loop at node %d", i)
			}
		}
	}
}

func TestPropertyRemoveNodePreservesSymmetry(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		nodes := randomSymmetricGraph(t, 12)
		assertSymmetric(t, nodes)

		idx := rapid.IntRange(0, len(nodes)-1).Draw(t, "idx")
		out := RemoveNode(nodes, idx)
		if len(out) != len(nodes)-1 {
			t.Fatalf("expected %d nodes, got %d", len(nodes)-1, len(out))
		}
		assertSymmetric(t, out)
	})
}

func TestPropertyDetectIslandsPartitionsAllNodes(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		nodes := randomSymmetricGraph(t, 20)
		islands := DetectIslands(nodes)

		seen := map[int]bool{}
		for _, isl := range islands {
			for idx := range isl {
				if seen[idx] {
					t.Fatalf("node %d appears in more than one island", idx)
				}
				seen[idx] = true
			}
		}
		if len(seen) != len(nodes) {
			t.Fatalf("islands cover %d of %d nodes", len(seen), len(nodes))
		}
	})
}

func TestPropertyFindBridgesOnlyStrictlyAboveThreshold(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(2, 10).Draw(t, "n")
		nodes := make([]model.Node, n)
		for i := range nodes {
			nodes[i].Betweenness = rapid.Float64Range(0, 100).Draw(t, "betweenness")
		}
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if rapid.Bool().Draw(t, "edge") {
					nodes[i].Connections = append(nodes[i].Connections, j)
					nodes[j].Connections = append(nodes[j].Connections, i)
				}
			}
		}
		adjustment := rapid.Float64Range(0.1, 3).Draw(t, "adjustment")

		values := make([]float64, n)
		for i, nd := range nodes {
			values[i] = nd.Betweenness
		}
		median, ok := statistics.Median(values)
		bridges := FindBridges(nodes, adjustment)
		if !ok {
			return
		}
		threshold := median * adjustment

		for from, peers := range bridges {
			for to := range peers {
				if nodes[from].Betweenness <= threshold {
					t.Fatalf("bridge endpoint %d does not exceed threshold %v", from, threshold)
				}
				if nodes[to].Betweenness <= threshold {
					t.Fatalf("bridge endpoint %d does not exceed threshold %v", to, threshold)
				}
			}
		}
	})
}

func TestPropertyQuotaEnvelope(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(3, 15).Draw(t, "n")
		nodes := make([]model.Node, n)
		degrees := make(map[int]int, n)
		eigen := make(map[int]float64, n)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if rapid.Bool().Draw(t, "edge") {
					nodes[i].Connections = append(nodes[i].Connections, j)
					nodes[j].Connections = append(nodes[j].Connections, i)
				}
			}
			nodes[i].Betweenness = rapid.Float64Range(0, 10).Draw(t, "bw")
			nodes[i].Closeness = rapid.Float64Range(0, 1).Draw(t, "cl")
		}
		for i := range nodes {
			degrees[i] = len(nodes[i].Connections)
			eigen[i] = 0
		}

		working := &model.IpsState{
			Nodes:              nodes,
			Degrees:            degrees,
			Eigenvalues:        eigen,
			DegreeFactors:      factorsOf(degreesToFloat(degrees)),
			BetweennessFactors: factorsOf(betweennessValues(nodes)),
			ClosenessFactors:   factorsOf(closenessValues(nodes)),
			EigenvectorFactors: factorsOf([]float64{0, 1}),
		}
		final := CloneState(working)
		changeNoMore := rapid.IntRange(1, 4).Draw(t, "change_no_more")
		cfg := Config{ChangeAtLeast: 1, ChangeNoMore: changeNoMore, Weights: Weights{Degree: 1}}
		constFactors := CalculateConstFactors(working, cfg.Weights)
		bridges := model.Bridges{}

		degreeAvg := 0.0
		for _, d := range degrees {
			degreeAvg += float64(d)
		}
		if n > 0 {
			degreeAvg /= float64(n)
		}

		for idx := range nodes {
			DecideNode(idx, working, final, constFactors, bridges, degreeAvg, cfg)
		}

		for i := range nodes {
			diff := len(final.Nodes[i].Connections) - len(working.Nodes[i].Connections)
			if diff < 0 {
				diff = -diff
			}
			// Quota grows by at most ChangeNoMore per decision pass, and
			// a node can be touched both as subject and as a neighbor's
			// candidate, so allow for two such passes' worth of budget.
			if diff > 2*changeNoMore {
				t.Fatalf("node %d degree churned by %d, budget was %d", i, diff, changeNoMore)
			}
		}
	})
}

func factorsOf(values []float64) (f struct{ Min, Max float64 }) {
	if len(values) == 0 {
		return
	}
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return struct{ Min, Max float64 }{min, max}
}

func degreesToFloat(degrees map[int]int) []float64 {
	out := make([]float64, 0, len(degrees))
	for _, d := range degrees {
		out = append(out, float64(d))
	}
	return out
}

func betweennessValues(nodes []model.Node) []float64 {
	out := make([]float64, len(nodes))
	for i, n := range nodes {
		out[i] = n.Betweenness
	}
	return out
}

func closenessValues(nodes []model.Node) []float64 {
	out := make([]float64, len(nodes))
	for i, n := range nodes {
		out[i] = n.Closeness
	}
	return out
}
