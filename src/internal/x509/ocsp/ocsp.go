// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509ocsp

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"errors"
	"math/big"
	"time"
)

var (
	// ErrParseResponse indicates the responder payload is not a DER OCSP response.
	ErrParseResponse = errors.New("x509ocsp: failed to parse OCSP response")

	// ErrMarshalRequest indicates the OCSP request could not be DER-encoded.
	ErrMarshalRequest = errors.New("x509ocsp: failed to marshal OCSP request")
)

// Nonce comparison outcomes, following the convention of OpenSSL's
// OCSP_check_nonce: only a present-but-different nonce is a failure.
const (
	// NonceMismatch means both sides carry a nonce and they differ.
	NonceMismatch = iota
	// NonceEqual means both sides carry the same nonce.
	NonceEqual
	// NonceAbsent means the response carries no nonce.
	NonceAbsent
)

// idPKIXOCSPNonce is the OCSP nonce extension (RFC 6960, id-pkix-ocsp-nonce).
var idPKIXOCSPNonce = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 48, 1, 2}

// oidSHA256 identifies the hash used for CertID fields.
var oidSHA256 = asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 1}

// OCSP request structures for proper ASN.1 encoding (RFC 6960 §4.1.1).
type ocspRequest struct {
	TBSRequest tbsRequest
}

type tbsRequest struct {
	Version     int `asn1:"explicit,tag:0,default:0,optional"`
	RequestList []request
	Extensions  []pkix.Extension `asn1:"explicit,tag:2,optional"`
}

type request struct {
	Cert certID
}

type certID struct {
	HashAlgorithm  pkix.AlgorithmIdentifier
	IssuerNameHash []byte
	IssuerKeyHash  []byte
	SerialNumber   *big.Int
}

// Mirrors of the response layout, just deep enough to reach the
// responseExtensions that carry the nonce.
type responseASN1 struct {
	Status   asn1.Enumerated
	Response responseBytes `asn1:"explicit,tag:0,optional"`
}

type responseBytes struct {
	ResponseType asn1.ObjectIdentifier
	Response     []byte
}

type basicResponse struct {
	TBSResponseData    responseData
	SignatureAlgorithm pkix.AlgorithmIdentifier
	Signature          asn1.BitString
	Certificates       []asn1.RawValue `asn1:"explicit,tag:0,optional"`
}

type responseData struct {
	Raw            asn1.RawContent
	Version        int `asn1:"explicit,tag:0,default:0,optional"`
	RawResponderID asn1.RawValue
	ProducedAt     time.Time `asn1:"generalized"`
	Responses      []asn1.RawValue
	Extensions     []pkix.Extension `asn1:"explicit,tag:1,optional"`
}

type publicKeyInfo struct {
	Algorithm pkix.AlgorithmIdentifier
	PublicKey asn1.BitString
}

// Request is a DER-encoded OCSP request together with the fresh nonce
// embedded in its requestExtensions.
type Request struct {
	Raw   []byte
	Nonce []byte
}

// NewRequest builds an OCSP request for (cert, issuer) with a SHA-256
// CertID and a fresh 16-byte nonce.
func NewRequest(cert, issuer *x509.Certificate) (*Request, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	id, err := newCertID(cert, issuer)
	if err != nil {
		return nil, err
	}

	nonceValue, err := asn1.Marshal(nonce)
	if err != nil {
		return nil, ErrMarshalRequest
	}

	raw, err := asn1.Marshal(ocspRequest{
		TBSRequest: tbsRequest{
			RequestList: []request{{Cert: *id}},
			Extensions: []pkix.Extension{{
				Id:    idPKIXOCSPNonce,
				Value: nonceValue,
			}},
		},
	})
	if err != nil {
		return nil, ErrMarshalRequest
	}

	return &Request{Raw: raw, Nonce: nonce}, nil
}

func newCertID(cert, issuer *x509.Certificate) (*certID, error) {
	// issuerKeyHash covers the BIT STRING content of the issuer's public
	// key, not the whole SubjectPublicKeyInfo.
	var spki publicKeyInfo
	if _, err := asn1.Unmarshal(issuer.RawSubjectPublicKeyInfo, &spki); err != nil {
		return nil, err
	}

	nameHash := sha256.Sum256(cert.RawIssuer)
	keyHash := sha256.Sum256(spki.PublicKey.RightAlign())

	return &certID{
		HashAlgorithm: pkix.AlgorithmIdentifier{
			Algorithm:  oidSHA256,
			Parameters: asn1.RawValue{Tag: asn1.TagNull},
		},
		IssuerNameHash: nameHash[:],
		IssuerKeyHash:  keyHash[:],
		SerialNumber:   cert.SerialNumber,
	}, nil
}

// CheckNonce compares the request's nonce against the one found in the
// DER-encoded response. A response without a nonce is reported as
// NonceAbsent, which callers treat as acceptable.
func (r *Request) CheckNonce(responseDER []byte) (int, error) {
	nonce, err := responseNonce(responseDER)
	if err != nil {
		return NonceMismatch, err
	}
	if nonce == nil {
		return NonceAbsent, nil
	}
	if bytes.Equal(nonce, r.Nonce) {
		return NonceEqual, nil
	}
	return NonceMismatch, nil
}

// responseNonce digs the nonce out of the basic response's
// responseExtensions, or returns nil if no nonce extension is present.
func responseNonce(responseDER []byte) ([]byte, error) {
	var resp responseASN1
	rest, err := asn1.Unmarshal(responseDER, &resp)
	if err != nil || len(rest) > 0 {
		return nil, ErrParseResponse
	}

	var basic basicResponse
	if rest, err = asn1.Unmarshal(resp.Response.Response, &basic); err != nil || len(rest) > 0 {
		return nil, ErrParseResponse
	}

	for _, ext := range basic.TBSResponseData.Extensions {
		if !ext.Id.Equal(idPKIXOCSPNonce) {
			continue
		}

		// The extension value normally wraps the nonce in an OCTET
		// STRING; some responders emit the bare bytes.
		var nonce []byte
		if _, err := asn1.Unmarshal(ext.Value, &nonce); err == nil {
			return nonce, nil
		}
		return ext.Value, nil
	}

	return nil, nil
}

// ReasonString translates an RFC 5280 CRL reason code into a
// human-readable description for the revocation logs.
func ReasonString(reason int) string {
	switch reason {
	case 0:
		return "unspecified"
	case 1:
		return "key compromise"
	case 2:
		return "CA compromise"
	case 3:
		return "affiliation changed"
	case 4:
		return "superseded"
	case 5:
		return "cessation of operation"
	case 6:
		return "certificate hold"
	case 8:
		return "remove from CRL"
	}
	return "unknown reason"
}
