package ips

import "github.com/runziggurat/ips/pkg/model"

// GeneratePeerList builds the public peer list (address-keyed, address
// lists) from an index-addressed node slice. Connection indices that fall
// outside nodes are skipped defensively rather than causing a panic, since
// this runs on states that may be mid-repair.
func GeneratePeerList(nodes []model.Node) []model.Peer {
	peers := make([]model.Peer, 0, len(nodes))
	for _, n := range nodes {
		list := make([]string, 0, len(n.Connections))
		for _, idx := range n.Connections {
			if idx < 0 || idx >= len(nodes) {
				continue
			}
			list = append(list, nodes[idx].Addr)
		}
		peers = append(peers, model.Peer{Addr: n.Addr, List: list})
	}
	return peers
}
