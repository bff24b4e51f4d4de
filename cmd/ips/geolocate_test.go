package main

import (
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/runziggurat/ips/pkg/config"
	"github.com/runziggurat/ips/pkg/ips"
	"github.com/runziggurat/ips/pkg/model"
)

func TestResolveGeolocationNoopWhenOff(t *testing.T) {
	nodes := []model.Node{{Addr: "1.2.3.4:9000"}}
	logger := log.New(os.Stderr, "", 0)

	resolveGeolocation(nodes, ips.GeolocationOff, config.GeoIPConfig{}, logger)
	assert.Nil(t, nodes[0].Geolocation)
}

func TestResolveGeolocationSkipsUnknownProvider(t *testing.T) {
	nodes := []model.Node{{Addr: "1.2.3.4:9000"}}
	logger := log.New(os.Stderr, "", 0)

	resolveGeolocation(nodes, ips.GeolocationPreferCloser, config.GeoIPConfig{
		Providers: []string{"not-a-real-provider"},
	}, logger)
	assert.Nil(t, nodes[0].Geolocation)
}
