package crawlio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAndFilterByNetworkType(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crawl.json")
	content := `{
		"nodes_indices": [[1,2],[0],[0]],
		"node_addrs": ["1.1.1.1:9000","2.2.2.2:9000","3.3.3.3:9000"],
		"node_network_types": ["IPv4","IPv4","Onion"]
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	result, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, result.NodeAddrs, 3)

	all := result.Nodes("")
	assert.Len(t, all, 3)

	ipv4Only := result.Nodes("IPv4")
	require.Len(t, ipv4Only, 2)
	assert.Equal(t, "1.1.1.1:9000", ipv4Only[0].Addr)
	assert.Equal(t, "2.2.2.2:9000", ipv4Only[1].Addr)
	// node 0's edge to the now-excluded node 2 must be dropped, and its
	// edge to node 1 remapped to index 1 (unchanged here since node 1
	// keeps its original relative order).
	assert.Equal(t, []int{1}, ipv4Only[0].Connections)
}

func TestLoadMismatchedLengths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crawl.json")
	content := `{"nodes_indices": [[1]], "node_addrs": ["a:1","b:2"]}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
