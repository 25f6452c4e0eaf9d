// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package tlsengine drives client-side TLS handshakes over
// already-connected, non-blocking sockets.
//
// An Engine is configured through key-indexed setters, initialized with
// balanced Init/Deinit calls that build a shared, reference-counted TLS
// context, and used through Open, ReadTimeout, WriteTimeout and Close.
// Peer authentication composes several independent subsystems: X.509 path
// validation against a configurable trust store, CRL enforcement, live
// OCSP queries through an HTTP collaborator, OCSP stapling, and HTTP
// public key pinning. Session parameters are persisted in a host-provided
// cache so later connections to the same host can resume.
//
// The cryptographic back-end is a capability interface with a standard
// implementation on crypto/tls and a disabled stub whose Open fails with
// ErrTLSDisabled.
package tlsengine
