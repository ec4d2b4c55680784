package net

import (
	"net"
	"testing"

	"github.com/hashicorp/mdns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryURL(t *testing.T) {
	url, ok := entryURL(&mdns.ServiceEntry{AddrV4: net.IPv4(192, 168, 1, 20), Port: 8080})
	require.True(t, ok)
	assert.Equal(t, "http://192.168.1.20:8080", url)

	_, ok = entryURL(&mdns.ServiceEntry{Port: 8080})
	assert.False(t, ok)
	_, ok = entryURL(&mdns.ServiceEntry{AddrV4: net.IPv4(10, 0, 0, 1)})
	assert.False(t, ok)
	_, ok = entryURL(nil)
	assert.False(t, ok)
}

func TestPortOf(t *testing.T) {
	p, err := PortOf(":8080")
	require.NoError(t, err)
	assert.Equal(t, 8080, p)

	p, err = PortOf("127.0.0.1:9000")
	require.NoError(t, err)
	assert.Equal(t, 9000, p)

	_, err = PortOf("8080")
	assert.Error(t, err)
}

func TestFirstIPv4(t *testing.T) {
	assert.NotNil(t, firstIPv4().To4())
}

func TestServiceURL(t *testing.T) {
	assert.Regexp(t, `^http://[0-9.]+:7000$`, ServiceURL(7000))
}
