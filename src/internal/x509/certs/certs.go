// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509certs

import (
	"crypto"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"

	"github.com/cloudflare/cfssl/crypto/pkcs7"
)

var (
	// ErrInvalidPEMBlock indicates that the provided data does not contain a valid PEM block.
	ErrInvalidPEMBlock = errors.New("x509certs: invalid PEM block")

	// ErrInvalidBlockType indicates that the PEM block type is not the expected certificate type.
	ErrInvalidBlockType = errors.New("x509certs: invalid block type")

	// ErrParseCertificate indicates a failure to parse the certificate from the provided data.
	ErrParseCertificate = errors.New("x509certs: failed to parse certificate")

	// ErrParsePKCS7 indicates a failure to parse PKCS7 formatted data.
	ErrParsePKCS7 = errors.New("x509certs: failed to parse PKCS7 data")

	// ErrNoCertificatesInPKCS indicates that no certificates were found in the PKCS7 data.
	ErrNoCertificatesInPKCS = errors.New("x509certs: no certificates found in PKCS7 data")

	// ErrParseKey indicates a failure to parse a private key from the provided data.
	ErrParseKey = errors.New("x509certs: failed to parse private key")

	// ErrNoKeyInPEM indicates that no private key block was found in PEM data.
	ErrNoKeyInPEM = errors.New("x509certs: no private key found in PEM data")
)

// Format selects the on-disk encoding of trust material.
type Format int

const (
	// FmtPEM is the PEM ("BEGIN CERTIFICATE") text encoding.
	FmtPEM Format = iota
	// FmtDER is the raw DER binary encoding.
	FmtDER
)

// Certificate provides methods to decode and encode [X.509] certificates
// and private keys in PEM or DER format.
//
// [X.509]: https://en.wikipedia.org/wiki/X.509
type Certificate struct {
	certBlockType string
}

// New creates a new Certificate with default settings.
func New() *Certificate {
	return &Certificate{
		certBlockType: "CERTIFICATE",
	}
}

// IsPEM checks if the data is in PEM format.
func (c *Certificate) IsPEM(data []byte) bool {
	block, _ := pem.Decode(data)
	return block != nil
}

// decodePEMBlock decodes a PEM block and checks its type.
func (c *Certificate) decodePEMBlock(data []byte) (*pem.Block, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, ErrInvalidPEMBlock
	}
	if block.Type != c.certBlockType {
		return nil, ErrInvalidBlockType
	}
	return block, nil
}

// DecodeMultiple decodes one or more certificates from data in the given format.
func (c *Certificate) DecodeMultiple(data []byte, format Format) ([]*x509.Certificate, error) {
	if format == FmtPEM {
		if !c.IsPEM(data) {
			return nil, ErrInvalidPEMBlock
		}

		var certs []*x509.Certificate
		for len(data) > 0 {
			block, rest := pem.Decode(data)
			if block == nil {
				break
			}
			if block.Type != c.certBlockType {
				return nil, ErrInvalidBlockType
			}

			cert, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				return nil, ErrParseCertificate
			}

			certs = append(certs, cert)
			data = rest
		}

		return certs, nil
	}

	certs, err := x509.ParseCertificates(data)
	if err != nil {
		return nil, ErrParseCertificate
	}

	return certs, nil
}

// Decode decodes a single certificate from data in the given format.
// DER data that is not a plain certificate is additionally tried as PKCS7.
func (c *Certificate) Decode(data []byte, format Format) (*x509.Certificate, error) {
	if format == FmtPEM {
		block, err := c.decodePEMBlock(data)
		if err != nil {
			return nil, err
		}

		data = block.Bytes
	}

	cert, err := x509.ParseCertificate(data)
	if err == nil {
		return cert, nil
	}

	// Attempt to parse as PKCS7 using Cloudflare's library
	p, err := pkcs7.ParsePKCS7(data)
	if err != nil {
		return nil, ErrParsePKCS7
	}
	if len(p.Content.SignedData.Certificates) == 0 {
		return nil, ErrNoCertificatesInPKCS
	}

	return p.Content.SignedData.Certificates[0], nil
}

// DecodeKey decodes a private key from data in the given format.
// PKCS#8, PKCS#1 (RSA) and SEC 1 (EC) encodings are recognized.
func (c *Certificate) DecodeKey(data []byte, format Format) (crypto.PrivateKey, error) {
	if format == FmtPEM {
		for len(data) > 0 {
			block, rest := pem.Decode(data)
			if block == nil {
				return nil, ErrNoKeyInPEM
			}
			data = rest

			// Skip certificate blocks so key and cert may share one file.
			if block.Type == c.certBlockType {
				continue
			}

			return parseKeyDER(block.Bytes)
		}

		return nil, ErrNoKeyInPEM
	}

	return parseKeyDER(data)
}

func parseKeyDER(der []byte) (crypto.PrivateKey, error) {
	if key, err := x509.ParsePKCS8PrivateKey(der); err == nil {
		return key, nil
	}
	if key, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return key, nil
	}
	if key, err := x509.ParseECPrivateKey(der); err == nil {
		return key, nil
	}
	return nil, ErrParseKey
}

// KeyPair assembles a [tls.Certificate] from certificate and key material.
// certData and keyData may point at the same bytes when both live in one file.
func (c *Certificate) KeyPair(certData []byte, certFmt Format, keyData []byte, keyFmt Format) (tls.Certificate, error) {
	if certFmt == FmtPEM {
		// Keep only the certificate blocks so a key in the same file is
		// not mistaken for a malformed certificate.
		var certPEM []byte
		for rest := certData; len(rest) > 0; {
			block, next := pem.Decode(rest)
			if block == nil {
				break
			}
			if block.Type == c.certBlockType {
				certPEM = append(certPEM, pem.EncodeToMemory(block)...)
			}
			rest = next
		}
		certData = certPEM
	}

	certs, err := c.DecodeMultiple(certData, certFmt)
	if err != nil {
		return tls.Certificate{}, err
	}
	if len(certs) == 0 {
		return tls.Certificate{}, ErrParseCertificate
	}

	key, err := c.DecodeKey(keyData, keyFmt)
	if err != nil {
		return tls.Certificate{}, err
	}

	pair := tls.Certificate{
		Leaf:       certs[0],
		PrivateKey: key,
	}
	for _, cert := range certs {
		pair.Certificate = append(pair.Certificate, cert.Raw)
	}

	return pair, nil
}

// EncodePEM encodes a certificate to PEM format.
func (c *Certificate) EncodePEM(cert *x509.Certificate) []byte {
	block := pem.Block{
		Type:  c.certBlockType,
		Bytes: cert.Raw,
	}
	return pem.EncodeToMemory(&block)
}

// EncodeDER encodes a certificate to DER format.
func (c *Certificate) EncodeDER(cert *x509.Certificate) []byte { return cert.Raw }
