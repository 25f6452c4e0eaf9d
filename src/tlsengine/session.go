// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package tlsengine

import (
	"crypto/tls"
	"encoding/binary"
	"errors"
	"time"

	"github.com/H0llyW00dzZ/tls-client-engine/src/logger"
)

// sessionTTL is the freshness bound for cached TLS sessions.
const sessionTTL = 18 * time.Hour

var errSessionBlob = errors.New("tlsengine: malformed session blob")

// sessionBridge adapts the host-provided SessionCache to the back-end's
// client session cache. Cached blobs are the back-end's native session
// serialization prefixed with the session ticket; they are opaque to the
// cache itself.
//
// The back-end keys its lookups by the connection's server name, so a
// single bridge serves every connection of the shared context.
type sessionBridge struct {
	cache SessionCache
	log   logger.Logger
}

var _ tls.ClientSessionCache = (*sessionBridge)(nil)

// Get deserializes the blob cached for sessionKey, if any.
func (b *sessionBridge) Get(sessionKey string) (*tls.ClientSessionState, bool) {
	if b.cache == nil {
		return nil, false
	}
	blob, ok := b.cache.Get(sessionKey)
	if !ok {
		return nil, false
	}

	cs, err := decodeSessionBlob(blob)
	if err != nil {
		b.log.Error("could not parse cached session data for host '%s'", sessionKey)
		return nil, false
	}
	return cs, true
}

// Put serializes the negotiated session and stores it with the engine's
// freshness bound.
func (b *sessionBridge) Put(sessionKey string, cs *tls.ClientSessionState) {
	if b.cache == nil || cs == nil {
		return
	}

	blob, err := encodeSessionBlob(cs)
	if err != nil {
		b.log.Debug("session for host '%s' is not serializable: %v", sessionKey, err)
		return
	}
	b.cache.Add(sessionKey, blob, sessionTTL)
}

// resume probes the cache ahead of the handshake. It returns 1 when a
// deserializable session is available, 0 on a miss and -1 on corrupted
// cache data. The actual installation happens through Get when the
// back-end runs the handshake.
func (b *sessionBridge) resume(hostname string) int {
	if b.cache == nil {
		return 0
	}
	blob, ok := b.cache.Get(hostname)
	if !ok {
		return 0
	}

	b.log.Debug("found cached session data for host '%s'", hostname)
	if _, err := decodeSessionBlob(blob); err != nil {
		return -1
	}
	return 1
}

// save reports whether the cache holds a session for hostname after a
// completed handshake. Serialized state arrives through Put as the
// back-end releases it.
func (b *sessionBridge) save(hostname string) int {
	if b.cache == nil {
		return 0
	}
	if _, ok := b.cache.Get(hostname); !ok {
		return 0
	}
	return 1
}

// encodeSessionBlob flattens a client session into ticket-prefixed bytes.
func encodeSessionBlob(cs *tls.ClientSessionState) ([]byte, error) {
	ticket, state, err := cs.ResumptionState()
	if err != nil {
		return nil, err
	}
	if state == nil || len(ticket) > 0xffff {
		return nil, errSessionBlob
	}
	stateBytes, err := state.Bytes()
	if err != nil {
		return nil, err
	}

	blob := make([]byte, 2+len(ticket)+len(stateBytes))
	binary.BigEndian.PutUint16(blob, uint16(len(ticket)))
	copy(blob[2:], ticket)
	copy(blob[2+len(ticket):], stateBytes)
	return blob, nil
}

// decodeSessionBlob is the inverse of encodeSessionBlob.
func decodeSessionBlob(blob []byte) (*tls.ClientSessionState, error) {
	if len(blob) < 2 {
		return nil, errSessionBlob
	}
	ticketLen := int(binary.BigEndian.Uint16(blob))
	if len(blob) < 2+ticketLen {
		return nil, errSessionBlob
	}
	ticket := blob[2 : 2+ticketLen]

	state, err := tls.ParseSessionState(blob[2+ticketLen:])
	if err != nil {
		return nil, err
	}
	return tls.NewResumptionState(ticket, state)
}
