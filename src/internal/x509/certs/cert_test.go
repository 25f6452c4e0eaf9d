// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509certs_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"testing"
	"time"

	x509certs "github.com/H0llyW00dzZ/tls-client-engine/src/internal/x509/certs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestCert generates a throwaway self-signed certificate and its key.
func newTestCert(t *testing.T, cn string) (certDER []byte, keyDER []byte) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: cn},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}

	certDER, err = x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)

	keyDER, err = x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)

	return certDER, keyDER
}

func pemEncode(blockType string, der []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der})
}

func TestDecodeFormats(t *testing.T) {
	certDER, _ := newTestCert(t, "decode.test")
	certPEM := pemEncode("CERTIFICATE", certDER)
	decoder := x509certs.New()

	tests := []struct {
		name    string
		data    []byte
		format  x509certs.Format
		wantErr error
	}{
		{name: "PEM certificate", data: certPEM, format: x509certs.FmtPEM},
		{name: "DER certificate", data: certDER, format: x509certs.FmtDER},
		{name: "garbage PEM", data: []byte("not a pem"), format: x509certs.FmtPEM, wantErr: x509certs.ErrInvalidPEMBlock},
		{name: "wrong block type", data: pemEncode("PUBLIC KEY", certDER), format: x509certs.FmtPEM, wantErr: x509certs.ErrInvalidBlockType},
		{name: "garbage DER", data: []byte{0xde, 0xad, 0xbe, 0xef}, format: x509certs.FmtDER, wantErr: x509certs.ErrParsePKCS7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cert, err := decoder.Decode(tt.data, tt.format)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "decode.test", cert.Subject.CommonName)
		})
	}
}

func TestDecodeMultiplePEM(t *testing.T) {
	oneDER, _ := newTestCert(t, "one.test")
	twoDER, _ := newTestCert(t, "two.test")
	bundle := append(pemEncode("CERTIFICATE", oneDER), pemEncode("CERTIFICATE", twoDER)...)

	certs, err := x509certs.New().DecodeMultiple(bundle, x509certs.FmtPEM)
	require.NoError(t, err)
	require.Len(t, certs, 2)
	assert.Equal(t, "one.test", certs[0].Subject.CommonName)
	assert.Equal(t, "two.test", certs[1].Subject.CommonName)
}

func TestDecodeKey(t *testing.T) {
	certDER, keyDER := newTestCert(t, "key.test")
	decoder := x509certs.New()

	tests := []struct {
		name    string
		data    []byte
		format  x509certs.Format
		wantErr error
	}{
		{name: "PKCS8 PEM", data: pemEncode("PRIVATE KEY", keyDER), format: x509certs.FmtPEM},
		{name: "PKCS8 DER", data: keyDER, format: x509certs.FmtDER},
		{
			// Cert and key sharing one file; the cert block is skipped.
			name:   "key behind certificate block",
			data:   append(pemEncode("CERTIFICATE", certDER), pemEncode("PRIVATE KEY", keyDER)...),
			format: x509certs.FmtPEM,
		},
		{name: "cert only", data: pemEncode("CERTIFICATE", certDER), format: x509certs.FmtPEM, wantErr: x509certs.ErrNoKeyInPEM},
		{name: "garbage DER", data: []byte{0x01, 0x02}, format: x509certs.FmtDER, wantErr: x509certs.ErrParseKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := decoder.DecodeKey(tt.data, tt.format)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, &ecdsa.PrivateKey{}, key)
		})
	}
}

func TestKeyPairSharedFile(t *testing.T) {
	certDER, keyDER := newTestCert(t, "pair.test")
	combined := append(pemEncode("CERTIFICATE", certDER), pemEncode("PRIVATE KEY", keyDER)...)

	pair, err := x509certs.New().KeyPair(combined, x509certs.FmtPEM, combined, x509certs.FmtPEM)
	require.NoError(t, err)
	require.Len(t, pair.Certificate, 1)
	assert.Equal(t, "pair.test", pair.Leaf.Subject.CommonName)
	assert.NotNil(t, pair.PrivateKey)
}

func TestEncodeRoundTrip(t *testing.T) {
	certDER, _ := newTestCert(t, "encode.test")
	decoder := x509certs.New()

	cert, err := decoder.Decode(certDER, x509certs.FmtDER)
	require.NoError(t, err)

	again, err := decoder.Decode(decoder.EncodePEM(cert), x509certs.FmtPEM)
	require.NoError(t, err)
	assert.True(t, cert.Equal(again))
	assert.Equal(t, certDER, decoder.EncodeDER(cert))
}
