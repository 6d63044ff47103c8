package util

import (
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveServerIP_Literal(t *testing.T) {
	ip, err := ResolveServerIP("1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3.4", ip)

	ip, err = ResolveServerIP("::1")
	require.NoError(t, err)
	assert.Equal(t, "::1", ip)
}

func TestResolveServerIP_Hostname(t *testing.T) {
	old := LookupIPFn
	defer func() { LookupIPFn = old }()

	LookupIPFn = func(host string) ([]net.IP, error) {
		assert.Equal(t, "private.example", host)
		return []net.IP{net.ParseIP("fe80::1"), net.ParseIP("10.0.0.7")}, nil
	}

	// IPv4 preferred over the first answer
	ip, err := ResolveServerIP("private.example")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.7", ip)
}

func TestResolveServerIP_Errors(t *testing.T) {
	old := LookupIPFn
	defer func() { LookupIPFn = old }()
	LookupIPFn = func(string) ([]net.IP, error) { return nil, errors.New("no such host") }

	_, err := ResolveServerIP("")
	assert.Error(t, err)

	_, err = ResolveServerIP("missing.example")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.example")
}
