package geoloc

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPAPIProviderParsesSuccessResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"success","lat":51.5,"lon":-0.12}`))
	}))
	defer server.Close()

	p := NewIPAPIProvider()
	p.baseURL = server.URL
	coords, err := p.Lookup("1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, 51.5, coords.Latitude)
	assert.Equal(t, -0.12, coords.Longitude)
}

func TestIPAPIProviderReturnsErrorOnFailStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"fail","message":"invalid query"}`))
	}))
	defer server.Close()

	p := NewIPAPIProvider()
	p.baseURL = server.URL
	_, err := p.Lookup("not-an-ip")
	assert.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "fail"))
}
