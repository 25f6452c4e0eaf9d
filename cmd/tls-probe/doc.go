// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Command tls-probe dials a host and runs the TLS client engine's
// handshake against it, reporting the negotiated parameters and any
// certificate, revocation or pinning failures.
package main
