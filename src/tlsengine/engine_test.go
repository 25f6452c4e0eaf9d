// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package tlsengine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The shared context is built on the first init and released on the last
// balanced deinit.
func TestInitDeinitRefcount(t *testing.T) {
	ca := newTestCA(t)
	eng, _ := newTestEngine(t, ca.caDir(t))

	require.NoError(t, eng.Init())
	first := eng.sharedCtx()
	require.NotNil(t, first)

	require.NoError(t, eng.Init())
	assert.Same(t, first, eng.sharedCtx(), "second init must not rebuild the context")

	eng.Deinit()
	assert.NotNil(t, eng.sharedCtx(), "context released before the last deinit")

	eng.Deinit()
	assert.Nil(t, eng.sharedCtx())
	assert.False(t, eng.initialized())
}

func TestDeinitWithoutInitIsSafe(t *testing.T) {
	eng := New()
	eng.Deinit()
	eng.Deinit()
	assert.False(t, eng.initialized())
}

func TestInitConcurrent(t *testing.T) {
	ca := newTestCA(t)
	eng, _ := newTestEngine(t, ca.caDir(t))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, eng.Init())
		}()
	}
	wg.Wait()

	for i := 0; i < 8; i++ {
		eng.Deinit()
	}
	assert.False(t, eng.initialized())
}

// With certificate checking disabled the engine warns and skips trust
// material entirely.
func TestInitWithoutCertificateCheck(t *testing.T) {
	eng, buf := newLoggedEngine()
	eng.SetConfigInt(KeyCheckCertificate, 0)
	// Point at a nonexistent directory: it must not even be opened.
	eng.SetConfigString(KeyCADirectory, "/nonexistent/certs")

	require.NoError(t, eng.Init())
	defer eng.Deinit()

	assert.Contains(t, buf.String(), "certificate check disabled")
	assert.True(t, eng.sharedCtx().template.InsecureSkipVerify)
}

func TestOpenInvalidArguments(t *testing.T) {
	eng, _ := newLoggedEngine()

	_, err := eng.Open(nil)
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = eng.Open(&TCPConn{SockFD: -1, Hostname: "localhost"})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestDisabledBackend(t *testing.T) {
	ca := newTestCA(t)
	leaf, key := ca.issueLeaf(t, 3, "")
	addr := startEchoServer(t, leaf, key)

	eng, _ := newTestEngine(t, ca.caDir(t))
	eng.SetBackend(DisabledBackend())

	fd := dialNonblock(t, addr)
	tcp := &TCPConn{SockFD: fd, Hostname: "localhost", ConnectTimeout: 2000}

	_, err := eng.Open(tcp)
	assert.ErrorIs(t, err, ErrTLSDisabled)
	assert.Nil(t, tcp.SSLSession)
	eng.Deinit()
}

func TestBackendNames(t *testing.T) {
	assert.Equal(t, "crypto/tls", StdBackend().Name())
	assert.Equal(t, "disabled", DisabledBackend().Name())
}

func TestALPNSplit(t *testing.T) {
	tests := []struct {
		alpn string
		want []string
	}{
		{alpn: "h2,http/1.1", want: []string{"h2", "http/1.1"}},
		{alpn: "h2", want: []string{"h2"}},
		{alpn: " h2 , http/1.1 ", want: []string{"h2", "http/1.1"}},
		{alpn: ",", want: nil},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, splitALPN(tt.alpn))
	}
}
