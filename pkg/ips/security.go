package ips

import (
	"math"
	"sort"

	"github.com/runziggurat/ips/pkg/model"
)

// MassiveIslandPercentage is the share of the node population an island
// must exceed to count as "massive".
const MassiveIslandPercentage = 0.10

// NodesToBeRemovedPercentage is the share of (by betweenness, highest
// first) nodes the integrity probe removes from a cloned state to test
// whether the network would fragment if they vanished.
const NodesToBeRemovedPercentage = 0.10

// DetectIslands partitions nodes into connected components via BFS.
func DetectIslands(nodes []model.Node) []model.Island {
	visited := make([]bool, len(nodes))
	var islands []model.Island

	for start := range nodes {
		if visited[start] {
			continue
		}
		island := model.Island{}
		queue := []int{start}
		visited[start] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			island[cur] = struct{}{}
			for _, next := range nodes[cur].Connections {
				if !visited[next] {
					visited[next] = true
					queue = append(queue, next)
				}
			}
		}
		islands = append(islands, island)
	}
	return islands
}

// CountMassiveIslands returns how many of islands exceed
// MassiveIslandPercentage of totalNodes.
func CountMassiveIslands(islands []model.Island, totalNodes int) int {
	threshold := int(math.Round(float64(totalNodes) * MassiveIslandPercentage))
	count := 0
	for _, isl := range islands {
		if len(isl) > threshold {
			count++
		}
	}
	return count
}

// CheckAndFixIntegrity probes state for fragility: it removes the
// highest-betweenness NodesToBeRemovedPercentage of nodes from a cloned
// copy and checks whether doing so would leave more than one massive
// island behind. If it would, it repairs the live state in place by
// connecting the two lowest-betweenness former neighbors of each
// high-betweenness node, and returns false. If the network is already
// robust to that removal, it returns true and leaves state untouched.
func CheckAndFixIntegrity(state *model.IpsState) bool {
	n := len(state.Nodes)
	if n == 0 {
		return true
	}

	type scored struct {
		idx int
		bw  float64
	}
	ranked := make([]scored, n)
	for i, node := range state.Nodes {
		ranked[i] = scored{i, node.Betweenness}
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].bw > ranked[j].bw })

	toRemove := int(math.Round(float64(n) * NodesToBeRemovedPercentage))
	if toRemove > n {
		toRemove = n
	}
	topIdx := make([]int, toRemove)
	for i := 0; i < toRemove; i++ {
		topIdx[i] = ranked[i].idx
	}

	testNodes := cloneNodes(state.Nodes)
	removalOrder := append([]int(nil), topIdx...)
	sort.Sort(sort.Reverse(sort.IntSlice(removalOrder)))
	for _, idx := range removalOrder {
		testNodes = RemoveNode(testNodes, idx)
	}

	islands := DetectIslands(testNodes)
	if CountMassiveIslands(islands, len(testNodes)) <= 1 {
		return true
	}

	for _, idx := range topIdx {
		conns := append([]int(nil), state.Nodes[idx].Connections...)
		if len(conns) < 2 {
			continue
		}
		a := FindLowestBetweenness(conns, state.Nodes)
		remaining := removeIntValue(conns, a)
		if len(remaining) == 0 {
			continue
		}
		b := FindLowestBetweenness(remaining, state.Nodes)

		state.Nodes[a].Connections = appendUniqueInt(state.Nodes[a].Connections, b)
		state.Nodes[b].Connections = appendUniqueInt(state.Nodes[b].Connections, a)
	}
	return false
}

func removeIntValue(list []int, v int) []int {
	out := make([]int, 0, len(list))
	for _, x := range list {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

func appendUniqueInt(list []int, v int) []int {
	if containsInt(list, v) {
		return list
	}
	return append(list, v)
}
