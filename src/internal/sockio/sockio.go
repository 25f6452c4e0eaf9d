// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package sockio

import (
	"net"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Direction bits for Wait.
const (
	// Readable waits for the descriptor to become readable.
	Readable = 1 << iota
	// Writable waits for the descriptor to become writable.
	Writable
)

type sockErr struct {
	msg       string
	timeout   bool
	temporary bool
}

func (e *sockErr) Error() string   { return e.msg }
func (e *sockErr) Timeout() bool   { return e.timeout }
func (e *sockErr) Temporary() bool { return e.temporary }

var (
	// ErrTimeout is returned when a readiness wait exceeds its timeout.
	// It satisfies [net.Error] with Timeout() == true so that TLS record
	// layers treat it as a recoverable condition.
	ErrTimeout net.Error = &sockErr{msg: "sockio: i/o timeout", timeout: true, temporary: true}

	// ErrWantRead is returned by a zero-timeout operation that would have
	// to wait for the descriptor to become readable.
	ErrWantRead net.Error = &sockErr{msg: "sockio: want read", temporary: true}

	// ErrWantWrite is returned by a zero-timeout operation that would have
	// to wait for the descriptor to become writable.
	ErrWantWrite net.Error = &sockErr{msg: "sockio: want write", temporary: true}
)

// Wait blocks until fd is ready for one of the requested directions or the
// timeout elapses. A timeout of -1 waits indefinitely, 0 polls without
// blocking. It returns a positive readiness mask, 0 on timeout, or an error
// on poll failure.
func Wait(fd, timeoutMS, dirs int) (int, error) {
	var events int16
	if dirs&Readable != 0 {
		events |= unix.POLLIN
	}
	if dirs&Writable != 0 {
		events |= unix.POLLOUT
	}

	deadline := time.Time{}
	if timeoutMS > 0 {
		deadline = time.Now().Add(time.Duration(timeoutMS) * time.Millisecond)
	}

	for {
		fds := []unix.PollFd{{Fd: int32(fd), Events: events}}

		n, err := unix.Poll(fds, timeoutMS)
		if err == unix.EINTR {
			if !deadline.IsZero() {
				if timeoutMS = int(time.Until(deadline).Milliseconds()); timeoutMS <= 0 {
					return 0, nil
				}
			}
			continue
		}
		if err != nil {
			return 0, errors.Wrap(err, "sockio: poll")
		}
		if n == 0 {
			return 0, nil
		}

		var ready int
		re := fds[0].Revents
		if re&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0 {
			ready |= Readable
		}
		if re&(unix.POLLOUT|unix.POLLERR) != 0 {
			ready |= Writable
		}
		if ready == 0 {
			// Spurious wakeup with unrelated revents.
			continue
		}
		return ready, nil
	}
}
