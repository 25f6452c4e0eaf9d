// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package tlsengine

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/H0llyW00dzZ/tls-client-engine/src/logger"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// testCA is a throwaway root with the keys needed to sign leaves, CRLs
// and OCSP responses.
type testCA struct {
	cert *x509.Certificate
	key  *ecdsa.PrivateKey
}

func newTestCA(t *testing.T) *testCA {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "Engine Test Root", Organization: []string{"tlsengine"}},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		IsCA:                  true,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign | x509.KeyUsageDigitalSignature,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	return &testCA{cert: cert, key: key}
}

// issueLeaf signs a server certificate for localhost, optionally naming
// an OCSP responder in the AIA extension.
func (ca *testCA) issueLeaf(t *testing.T, serial int64, ocspServer string) (*x509.Certificate, *ecdsa.PrivateKey) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(serial),
		Subject:      pkix.Name{CommonName: "localhost"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		DNSNames:     []string{"localhost"},
		IPAddresses:  []net.IP{net.ParseIP("127.0.0.1")},
	}
	if ocspServer != "" {
		tmpl.OCSPServer = []string{ocspServer}
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, ca.cert, &key.PublicKey, ca.key)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	return cert, key
}

// caDir writes the root as root.pem plus an unrelated noise.txt entry
// and returns the directory, mirroring a minimal CA directory.
func (ca *testCA) caDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	pemData := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: ca.cert.Raw})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "root.pem"), pemData, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "noise.txt"), []byte("not a certificate\n"), 0644))
	return dir
}

// startEchoServer runs a TLS echo server with the given leaf and returns
// its address. The same tls.Config is reused across connections so
// session tickets stay valid for resumption tests.
func startEchoServer(t *testing.T, cert *x509.Certificate, key *ecdsa.PrivateKey) string {
	t.Helper()

	cfg := &tls.Config{
		Certificates: []tls.Certificate{{
			Certificate: [][]byte{cert.Raw},
			PrivateKey:  key,
			Leaf:        cert,
		}},
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				tc := tls.Server(c, cfg)
				if tc.Handshake() != nil {
					return
				}
				buf := make([]byte, 1024)
				for {
					n, err := tc.Read(buf)
					if err != nil {
						return
					}
					if _, err := tc.Write(buf[:n]); err != nil {
						return
					}
				}
			}(conn)
		}
	}()

	return ln.Addr().String()
}

// startSilentServer accepts TCP connections and never writes a byte, so
// handshakes stall until the engine's timeout fires.
func startSilentServer(t *testing.T) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	var conns []net.Conn
	var mu sync.Mutex
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, conn)
			mu.Unlock()
		}
	}()
	t.Cleanup(func() {
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			c.Close()
		}
	})

	return ln.Addr().String()
}

// dialNonblock connects to addr and returns a non-blocking duplicate of
// the socket descriptor.
func dialNonblock(t *testing.T, addr string) int {
	t.Helper()

	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	file, err := conn.(*net.TCPConn).File()
	require.NoError(t, err)
	t.Cleanup(func() { file.Close() })

	fd := int(file.Fd())
	require.NoError(t, unix.SetNonblock(fd, true))
	return fd
}

// newTestEngine builds an engine trusting the given CA directory, with
// OCSP switched off (the test certificates have no live responder) and a
// debug-level log capture.
func newTestEngine(t *testing.T, caDir string) (*Engine, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer
	eng := New()
	eng.SetLogger(logger.NewLeveled(&buf, logger.LevelDebug))
	eng.SetConfigString(KeyCADirectory, caDir)
	eng.SetConfigInt(KeyOCSP, 0)
	return eng, &buf
}

// memSessionCache is an in-memory SessionCache.
type memSessionCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemSessionCache() *memSessionCache {
	return &memSessionCache{entries: make(map[string][]byte)}
}

func (c *memSessionCache) Get(hostname string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	blob, ok := c.entries[hostname]
	return blob, ok
}

func (c *memSessionCache) Add(hostname string, blob []byte, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[hostname] = append([]byte(nil), blob...)
}

func (c *memSessionCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// pinFunc adapts a function to HPKPCache.
type pinFunc func(hostname string, spki []byte) PinCheck

func (f pinFunc) Check(hostname string, spki []byte) PinCheck { return f(hostname, spki) }

// fakeFetcher serves canned responder payloads instead of the network.
type fakeFetcher struct {
	mu     sync.Mutex
	body   []byte
	status int
	err    error
	calls  int
}

func (f *fakeFetcher) Fetch(context.Context, string, map[string]string, []byte) ([]byte, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, 0, f.err
	}
	status := f.status
	if status == 0 {
		status = 200
	}
	return f.body, status, nil
}
