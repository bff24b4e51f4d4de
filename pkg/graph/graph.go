// Package graph computes the structural centralities the IPS pipeline
// rates peers with: degree, betweenness, closeness and eigenvector. Nodes
// are addressed by dense integer index, matching the node slice the rest
// of the pipeline already works with, rather than by gonum's own ID space.
package graph

import (
	"context"
	"math"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/runziggurat/ips/pkg/metrics"
)

// Build constructs a gonum undirected graph from an adjacency list where
// adjacency[i] holds the indices node i connects to. Edges are added once
// per unordered pair; gonum's SetEdge is idempotent on duplicates.
func Build(adjacency [][]int) *simple.UndirectedGraph {
	g := simple.NewUndirectedGraph()
	for i := range adjacency {
		g.AddNode(simple.Node(int64(i)))
	}
	for i, neighbors := range adjacency {
		for _, j := range neighbors {
			if i == j {
				continue
			}
			g.SetEdge(simple.Edge{F: simple.Node(int64(i)), T: simple.Node(int64(j))})
		}
	}
	return g
}

// Degree returns each node's degree, keyed by index.
func Degree(adjacency [][]int) map[int]int {
	degrees := make(map[int]int, len(adjacency))
	for i, neighbors := range adjacency {
		degrees[i] = len(neighbors)
	}
	return degrees
}

// Closeness returns each node's closeness centrality, keyed by index,
// using gonum's implementation directly.
func Closeness(g graph.Graph) map[int]float64 {
	defer metrics.Timer(metrics.ClosenessCompute)()
	raw := network.Closeness(g, path.DijkstraAllPaths(g))
	out := make(map[int]float64, len(raw))
	for id, v := range raw {
		out[int(id)] = v
	}
	return out
}

// brandesBuffers holds the per-source BFS/accumulation state for one
// Brandes betweenness pass, pooled so repeated passes don't reallocate.
type brandesBuffers struct {
	sigma     []float64
	dist      []int
	delta     []float64
	predAlloc [][]int
	queue     []int
	stack     []int
}

func newBrandesBuffers(n int) *brandesBuffers {
	b := &brandesBuffers{
		sigma:     make([]float64, n),
		dist:      make([]int, n),
		delta:     make([]float64, n),
		predAlloc: make([][]int, n),
		queue:     make([]int, 0, n),
		stack:     make([]int, 0, n),
	}
	return b
}

func (b *brandesBuffers) reset(n int) {
	for i := 0; i < n; i++ {
		b.sigma[i] = 0
		b.dist[i] = -1
		b.delta[i] = 0
		b.predAlloc[i] = b.predAlloc[i][:0]
	}
	b.queue = b.queue[:0]
	b.stack = b.stack[:0]
}

// Betweenness computes exact (unnormalized, for an undirected graph halved
// to avoid double-counting each shortest path from both endpoints)
// betweenness centrality for every node in adjacency, fanning the per-source
// Brandes passes out across workers workers bounded by an errgroup, mirroring
// the bounded worker-pool shape used elsewhere in this codebase for
// independent per-item work.
func Betweenness(adjacency [][]int, workers int) map[int]float64 {
	defer metrics.Timer(metrics.BetweennessCompute)()
	n := len(adjacency)
	scores := make([]float64, n)
	if n == 0 {
		return map[int]float64{}
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var mu sync.Mutex
	pool := sync.Pool{New: func() any { return newBrandesBuffers(n) }}

	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(workers)

	for s := 0; s < n; s++ {
		s := s
		g.Go(func() error {
			buf := pool.Get().(*brandesBuffers)
			defer pool.Put(buf)
			local := singleSourceBetweenness(adjacency, s, buf)
			mu.Lock()
			for i, v := range local {
				scores[i] += v
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[int]float64, n)
	for i, v := range scores {
		out[i] = v / 2
	}
	return out
}

// singleSourceBetweenness runs one Brandes BFS/back-propagation pass
// rooted at s and returns the partial dependency contribution of each node.
func singleSourceBetweenness(adjacency [][]int, s int, buf *brandesBuffers) []float64 {
	n := len(adjacency)
	buf.reset(n)

	buf.sigma[s] = 1
	buf.dist[s] = 0
	buf.queue = append(buf.queue, s)

	for qi := 0; qi < len(buf.queue); qi++ {
		v := buf.queue[qi]
		buf.stack = append(buf.stack, v)
		for _, w := range adjacency[v] {
			if buf.dist[w] < 0 {
				buf.dist[w] = buf.dist[v] + 1
				buf.queue = append(buf.queue, w)
			}
			if buf.dist[w] == buf.dist[v]+1 {
				buf.sigma[w] += buf.sigma[v]
				buf.predAlloc[w] = append(buf.predAlloc[w], v)
			}
		}
	}

	for i := len(buf.stack) - 1; i >= 0; i-- {
		w := buf.stack[i]
		for _, v := range buf.predAlloc[w] {
			if buf.sigma[w] != 0 {
				buf.delta[v] += (buf.sigma[v] / buf.sigma[w]) * (1 + buf.delta[w])
			}
		}
	}

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		if i != s {
			out[i] = buf.delta[i]
		}
	}
	return out
}

// Eigenvector computes eigenvector centrality via power iteration: repeated
// matrix-free adjacency multiplication followed by L2 normalization, until
// successive iterates converge within tol or maxIterations is reached.
func Eigenvector(adjacency [][]int) map[int]float64 {
	defer metrics.Timer(metrics.EigenvectorCompute)()
	n := len(adjacency)
	out := make(map[int]float64, n)
	if n == 0 {
		return out
	}

	const maxIterations = 1000
	const tol = 1e-9

	x := make([]float64, n)
	for i := range x {
		x[i] = 1.0 / float64(n)
	}

	for iter := 0; iter < maxIterations; iter++ {
		next := make([]float64, n)
		for i, neighbors := range adjacency {
			var sum float64
			for _, j := range neighbors {
				sum += x[j]
			}
			next[i] = sum
		}

		var norm float64
		for _, v := range next {
			norm += v * v
		}
		norm = math.Sqrt(norm)
		if norm == 0 {
			break
		}
		for i := range next {
			next[i] /= norm
		}

		var diff float64
		for i := range next {
			d := next[i] - x[i]
			diff += d * d
		}
		x = next
		if math.Sqrt(diff) < tol {
			break
		}
	}

	for i, v := range x {
		out[i] = v
	}
	return out
}
