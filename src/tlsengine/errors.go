// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package tlsengine

import "errors"

// Sentinel errors returned by the engine. Success is a nil error.
var (
	// ErrInvalid reports a caller-supplied invariant violation, such as a
	// nil connection, a negative socket descriptor or an unknown priority
	// string.
	ErrInvalid = errors.New("tlsengine: invalid argument")

	// ErrTimeout reports that a readiness wait exceeded its bound.
	ErrTimeout = errors.New("tlsengine: timeout")

	// ErrCertificate reports that peer certificate validation failed:
	// chain building, host-name match, CRL, OCSP or public key pinning.
	ErrCertificate = errors.New("tlsengine: certificate verification failed")

	// ErrHandshake reports any other handshake-level failure.
	ErrHandshake = errors.New("tlsengine: handshake failed")

	// ErrTLSDisabled is returned by the disabled back-end.
	ErrTLSDisabled = errors.New("tlsengine: TLS support is disabled")

	// ErrUnknown reports an unclassified back-end failure.
	ErrUnknown = errors.New("tlsengine: unknown error")
)
