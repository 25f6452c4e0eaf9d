// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package sockio implements the readiness primitive and the non-blocking
// socket adapter underneath the TLS engine. Wait polls a descriptor for
// readability or writability with a millisecond timeout; Conn presents a
// borrowed non-blocking descriptor as a net.Conn whose operations follow
// the wait/attempt/retry discipline required by the handshake and transfer
// loops.
package sockio
