// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package sockio

import (
	"io"
	"net"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Conn adapts a non-blocking socket descriptor to [net.Conn].
//
// Each Read and Write runs the readiness/retry discipline of the engine:
// wait for the descriptor with the configured timeout, attempt the syscall,
// and on EAGAIN widen the readiness mask to read+write and retry. With a
// zero timeout the operation never blocks and reports ErrWantRead or
// ErrWantWrite instead.
//
// The descriptor is borrowed: Close releases nothing, so the owning TCP
// connection stays usable after the TLS layer is torn down.
type Conn struct {
	fd int

	mu        sync.Mutex
	timeoutMS int
}

type connAddr struct{}

func (connAddr) Network() string { return "tcp" }
func (connAddr) String() string  { return "fd" }

// NewConn wraps the given non-blocking socket descriptor. The initial
// timeout is -1 (wait indefinitely).
func NewConn(fd int) *Conn {
	return &Conn{fd: fd, timeoutMS: -1}
}

// FD returns the wrapped descriptor.
func (c *Conn) FD() int { return c.fd }

// SetTimeout sets the per-operation timeout in milliseconds for both
// directions. Values below -1 are clamped to -1 (wait indefinitely);
// 0 makes operations non-blocking.
func (c *Conn) SetTimeout(ms int) {
	if ms < -1 {
		ms = -1
	}
	c.mu.Lock()
	c.timeoutMS = ms
	c.mu.Unlock()
}

func (c *Conn) timeout() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timeoutMS
}

// Read reads from the descriptor, honoring the configured timeout.
func (c *Conn) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	ops := Readable
	timeout := c.timeout()

	for {
		if timeout != 0 {
			ready, err := Wait(c.fd, timeout, ops)
			if err != nil {
				return 0, err
			}
			if ready == 0 {
				return 0, ErrTimeout
			}
		}

		n, err := unix.Read(c.fd, p)
		switch err {
		case nil:
			if n == 0 {
				return 0, io.EOF
			}
			return n, nil
		case unix.EAGAIN, unix.EINTR:
			ops = Readable | Writable
			if timeout == 0 {
				return 0, ErrWantRead
			}
		default:
			return 0, errors.Wrap(err, "sockio: read")
		}
	}
}

// Write writes to the descriptor, honoring the configured timeout.
func (c *Conn) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	written := 0
	ops := Writable
	timeout := c.timeout()

	for written < len(p) {
		if timeout != 0 {
			ready, err := Wait(c.fd, timeout, ops)
			if err != nil {
				return written, err
			}
			if ready == 0 {
				return written, ErrTimeout
			}
		}

		n, err := unix.Write(c.fd, p[written:])
		switch err {
		case nil:
			written += n
		case unix.EAGAIN, unix.EINTR:
			ops = Readable | Writable
			if timeout == 0 {
				return written, ErrWantWrite
			}
		default:
			return written, errors.Wrap(err, "sockio: write")
		}
	}

	return written, nil
}

// Close is a no-op; the descriptor belongs to the TCP connection.
func (c *Conn) Close() error { return nil }

// LocalAddr returns a placeholder address.
func (c *Conn) LocalAddr() net.Addr { return connAddr{} }

// RemoteAddr returns a placeholder address.
func (c *Conn) RemoteAddr() net.Addr { return connAddr{} }

// SetDeadline maps an absolute deadline onto the millisecond timeout.
func (c *Conn) SetDeadline(t time.Time) error {
	if t.IsZero() {
		c.SetTimeout(-1)
		return nil
	}
	ms := int(time.Until(t).Milliseconds())
	if ms < 0 {
		ms = 0
	}
	c.SetTimeout(ms)
	return nil
}

// SetReadDeadline maps an absolute deadline onto the millisecond timeout.
// Read and write share a single timeout.
func (c *Conn) SetReadDeadline(t time.Time) error { return c.SetDeadline(t) }

// SetWriteDeadline maps an absolute deadline onto the millisecond timeout.
// Read and write share a single timeout.
func (c *Conn) SetWriteDeadline(t time.Time) error { return c.SetDeadline(t) }
