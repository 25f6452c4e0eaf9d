// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package tlsengine

import (
	"crypto/tls"
	"net"
)

// Backend is the cryptographic capability behind the engine. The engine
// delegates X.509 path validation and TLS record framing to it.
type Backend interface {
	// Name identifies the back-end in logs.
	Name() string
	// Client starts a client-side TLS connection over conn. The disabled
	// back-end returns ErrTLSDisabled here.
	Client(conn net.Conn, cfg *tls.Config) (BackendConn, error)
}

// BackendConn is a single client TLS connection owned by the back-end.
type BackendConn interface {
	// Handshake runs or resumes the TLS handshake.
	Handshake() error
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	// Shutdown sends the close notification without closing the
	// underlying socket.
	Shutdown() error
	// ConnectionState describes the negotiated parameters.
	ConnectionState() tls.ConnectionState
}

// stdBackend implements Backend on top of the standard library TLS stack.
type stdBackend struct{}

// StdBackend returns the default crypto/tls-based back-end.
func StdBackend() Backend { return stdBackend{} }

func (stdBackend) Name() string { return "crypto/tls" }

func (stdBackend) Client(conn net.Conn, cfg *tls.Config) (BackendConn, error) {
	return &stdConn{conn: tls.Client(conn, cfg)}, nil
}

type stdConn struct {
	conn *tls.Conn
}

func (c *stdConn) Handshake() error              { return c.conn.Handshake() }
func (c *stdConn) Read(p []byte) (int, error)    { return c.conn.Read(p) }
func (c *stdConn) Write(p []byte) (int, error)   { return c.conn.Write(p) }
func (c *stdConn) ConnectionState() tls.ConnectionState {
	return c.conn.ConnectionState()
}

// Shutdown sends close_notify. tls.Conn.Close would also close the
// borrowed socket, so only the write side is shut down here.
func (c *stdConn) Shutdown() error { return c.conn.CloseWrite() }

// disabledBackend is the no-op build-matrix stub. Opening a connection
// through it fails with ErrTLSDisabled.
type disabledBackend struct{}

// DisabledBackend returns the stub back-end used when TLS support is
// switched off.
func DisabledBackend() Backend { return disabledBackend{} }

func (disabledBackend) Name() string { return "disabled" }

func (disabledBackend) Client(net.Conn, *tls.Config) (BackendConn, error) {
	return nil, ErrTLSDisabled
}
