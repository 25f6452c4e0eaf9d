// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package tlsengine

import (
	"crypto/tls"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectPrioritiesTokens(t *testing.T) {
	tests := []struct {
		prio    string
		wantMin uint16
	}{
		{prio: "AUTO", wantMin: tls.VersionTLS12},
		{prio: "auto", wantMin: tls.VersionTLS12},
		{prio: "", wantMin: tls.VersionTLS12},
		{prio: "TLSv1_2", wantMin: tls.VersionTLS12},
		{prio: "tlsv1_2", wantMin: tls.VersionTLS12},
		{prio: "SSL", wantMin: tls.VersionTLS10},
		{prio: "TLSv1", wantMin: tls.VersionTLS10},
		{prio: "TLSv1_1", wantMin: tls.VersionTLS11},
		{prio: "TLSv1_3", wantMin: tls.VersionTLS13},
		{prio: "PFS", wantMin: tls.VersionTLS12},
	}

	for _, tt := range tests {
		t.Run(tt.prio, func(t *testing.T) {
			eng, _ := newLoggedEngine()
			cfg := &tls.Config{}

			require.NoError(t, eng.selectPriorities(cfg, tt.prio))
			assert.Equal(t, tt.wantMin, cfg.MinVersion)
			assert.Equal(t, uint16(tls.VersionTLS13), cfg.MaxVersion)
			assert.NotEmpty(t, cfg.CipherSuites)
		})
	}
}

func TestSelectPrioritiesPFSDropsRSAKex(t *testing.T) {
	eng, _ := newLoggedEngine()
	cfg := &tls.Config{}

	require.NoError(t, eng.selectPriorities(cfg, "PFS"))
	for _, id := range cfg.CipherSuites {
		assert.False(t, isRSAKeyExchange(id), "suite %#04x uses RSA key exchange", id)
	}
}

func TestSelectPrioritiesRawCipherList(t *testing.T) {
	eng, _ := newLoggedEngine()
	cfg := &tls.Config{}

	err := eng.selectPriorities(cfg, "TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256:TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384")
	require.NoError(t, err)
	assert.Equal(t, []uint16{
		tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
		tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
	}, cfg.CipherSuites)
}

func TestSelectPrioritiesInvalid(t *testing.T) {
	eng, buf := newLoggedEngine()
	cfg := &tls.Config{}

	err := eng.selectPriorities(cfg, "this-is-not-a-cipher-spec")
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, buf.String(), "invalid priority string 'this-is-not-a-cipher-spec'")
}

// An invalid priority string fails init and leaves the engine
// uninitialized.
func TestInitRejectsInvalidPriority(t *testing.T) {
	eng, _ := newLoggedEngine()
	eng.SetConfigInt(KeyCheckCertificate, 0)
	eng.SetConfigString(KeySecureProtocol, "this-is-not-a-cipher-spec")

	err := eng.Init()
	assert.ErrorIs(t, err, ErrInvalid)
	assert.False(t, eng.initialized())
	assert.Nil(t, eng.sharedCtx())
}
