// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package tlsengine

import (
	"crypto/tls"
	"errors"

	"github.com/H0llyW00dzZ/tls-client-engine/src/internal/sockio"
)

// TCPConn describes an already-connected TCP connection the engine runs
// its handshake over. The socket must be non-blocking; the engine never
// closes it.
type TCPConn struct {
	// SockFD is the connected, non-blocking socket descriptor.
	SockFD int
	// Hostname is used for SNI, host verification, session lookup and
	// HPKP lookup.
	Hostname string
	// ConnectTimeout bounds the handshake in milliseconds; 0 means no
	// bound.
	ConnectTimeout int
	// SSLSession is owned by the engine between Open and Close.
	SSLSession *Session
}

// Session is the per-connection TLS state. It is created by Open,
// consumed by Close, and must not be shared across goroutines.
type Session struct {
	eng     *Engine
	conn    *sockio.Conn
	bc      BackendConn
	host    string
	resumed bool
}

// Resumed reports whether the back-end reused a cached session during
// the handshake.
func (s *Session) Resumed() bool { return s.resumed }

// ConnectionState describes the negotiated TLS parameters.
func (s *Session) ConnectionState() tls.ConnectionState { return s.bc.ConnectionState() }

// Open runs a TLS handshake over the given TCP connection.
//
// The engine is lazily initialized if the caller has not done so. On
// success the TLS session is returned and also published on
// tcp.SSLSession; pass it to Close to tear the tunnel down. If the
// handshake cannot be completed within tcp.ConnectTimeout, Open fails
// with ErrTimeout and releases the session state.
func (e *Engine) Open(tcp *TCPConn) (*Session, error) {
	if tcp == nil || tcp.SockFD < 0 {
		return nil, ErrInvalid
	}
	if !e.initialized() {
		if err := e.Init(); err != nil {
			return nil, err
		}
	}

	ctx := e.sharedCtx()
	if ctx == nil {
		return nil, ErrUnknown
	}

	conn := sockio.NewConn(tcp.SockFD)
	timeout := tcp.ConnectTimeout
	if timeout == 0 {
		timeout = -1
	}
	conn.SetTimeout(timeout)

	cfg := e.clientConfig(ctx, tcp.Hostname)

	// Resume from a previous TLS session, if available.
	switch ctx.bridge.resume(tcp.Hostname) {
	case 1:
		e.log.Debug("will try to resume cached TLS session")
	case 0:
		e.log.Debug("no cached TLS session available. Will run a full handshake.")
	default:
		e.log.Error("could not get cached TLS session")
	}

	bc, err := e.backend.Client(conn, cfg)
	if err != nil {
		return nil, err
	}

	if err := bc.Handshake(); err != nil {
		return nil, e.classifyHandshakeError(err)
	}

	sess := &Session{
		eng:     e,
		conn:    conn,
		bc:      bc,
		host:    tcp.Hostname,
		resumed: bc.ConnectionState().DidResume,
	}

	if sess.resumed {
		e.log.Debug("handshake completed (resumed session)")
	} else {
		e.log.Debug("handshake completed (full handshake - not resumed)")
	}

	// Save the current TLS session
	if ctx.bridge.save(tcp.Hostname) == 1 {
		e.log.Debug("TLS session saved in cache")
	} else {
		e.log.Debug("TLS session discarded")
	}

	if ctx.conf.PrintInfo {
		e.printInfo(sess)
	}

	tcp.SSLSession = sess
	return sess, nil
}

// classifyHandshakeError maps back-end failures onto the engine's error
// taxonomy: readiness timeouts, certificate verification failures, and
// everything else as a plain handshake error.
func (e *Engine) classifyHandshakeError(err error) error {
	if errors.Is(err, sockio.ErrTimeout) {
		return ErrTimeout
	}

	var certErr *tls.CertificateVerificationError
	if errors.Is(err, ErrCertificate) || errors.As(err, &certErr) {
		e.log.Error("could not complete TLS handshake: %v", err)
		return ErrCertificate
	}

	e.log.Error("could not complete TLS handshake: %v", err)
	return ErrHandshake
}

// Close closes an active TLS tunnel opened with Open. The close
// notification is sent to the peer, the session state is released and
// the caller's handle is set to nil, making a second Close on the same
// slot a no-op. The underlying TCP connection is kept open.
func (e *Engine) Close(session **Session) {
	if session == nil || *session == nil {
		return
	}
	s := *session

	if err := s.bc.Shutdown(); err != nil {
		e.log.Debug("TLS shutdown: %v", err)
	}

	*session = nil
}
