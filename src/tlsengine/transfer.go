// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package tlsengine

import (
	"errors"
	"fmt"
	"io"

	"github.com/H0llyW00dzZ/tls-client-engine/src/internal/sockio"
)

type ioDirection int

const (
	ioRead ioDirection = iota
	ioWrite
)

// transfer moves bytes through the TLS tunnel with the readiness/retry
// discipline: wait for the socket in the requested direction, attempt
// the operation, and retry transient want-read/want-write conditions.
// A zero timeout never blocks: if the socket is not ready the transfer
// returns 0 without touching the session.
func (e *Engine) transfer(dir ioDirection, s *Session, timeoutMS int, buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	if s == nil || s.bc == nil {
		return 0, ErrInvalid
	}
	if timeoutMS < -1 {
		timeoutMS = -1
	}

	if timeoutMS == 0 {
		dirs := sockio.Readable
		if dir == ioWrite {
			dirs = sockio.Writable
		}
		ready, err := sockio.Wait(s.conn.FD(), 0, dirs)
		if err != nil {
			return 0, ErrUnknown
		}
		if ready == 0 {
			return 0, nil
		}
	}

	s.conn.SetTimeout(timeoutMS)

	var n int
	var err error
	if dir == ioRead {
		n, err = s.bc.Read(buf)
	} else {
		n, err = s.bc.Write(buf)
	}

	if err != nil {
		switch {
		case errors.Is(err, sockio.ErrTimeout):
			return 0, ErrTimeout
		case errors.Is(err, sockio.ErrWantRead), errors.Is(err, sockio.ErrWantWrite):
			// Only reachable with a zero timeout; the socket went
			// unready between the poll and the operation.
			return 0, nil
		case errors.Is(err, io.EOF):
			return 0, nil
		default:
			return 0, fmt.Errorf("%w: %v", ErrHandshake, err)
		}
	}

	return n, nil
}

// ReadTimeout reads at most len(buf) bytes from the TLS tunnel.
//
// The timeout tells how long to wait until data becomes available, in
// milliseconds. A timeout of zero causes the call to return immediately;
// a negative value waits indefinitely. The returned count may be zero if
// the timeout elapses before data arrives. Fatal TLS-layer errors are
// logged and surface as ErrUnknown.
func (e *Engine) ReadTimeout(s *Session, buf []byte, timeoutMS int) (int, error) {
	n, err := e.transfer(ioRead, s, timeoutMS, buf)
	if errors.Is(err, ErrHandshake) {
		e.log.Error("TLS read error: %v", err)
		return 0, ErrUnknown
	}
	return n, err
}

// WriteTimeout sends len(buf) bytes through the TLS tunnel.
//
// The timeout tells how long to wait until data can be sent, in
// milliseconds. A timeout of zero causes the call to return immediately;
// a negative value waits indefinitely. The returned count may be zero if
// the timeout elapses before anything could be written. Fatal TLS-layer
// errors are logged and surface as ErrUnknown.
func (e *Engine) WriteTimeout(s *Session, buf []byte, timeoutMS int) (int, error) {
	n, err := e.transfer(ioWrite, s, timeoutMS, buf)
	if errors.Is(err, ErrHandshake) {
		e.log.Error("TLS write error: %v", err)
		return 0, ErrUnknown
	}
	return n, err
}
