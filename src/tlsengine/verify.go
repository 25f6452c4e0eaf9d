// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package tlsengine

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"time"

	x509ocsp "github.com/H0llyW00dzZ/tls-client-engine/src/internal/x509/ocsp"
	"golang.org/x/crypto/ocsp"
)

// chainVerifier runs the revocation and pinning checks for one
// connection. It is invoked by the back-end once a candidate chain has
// been assembled; the host name travels with the connection instead of
// hiding in thread-local extension data.
type chainVerifier struct {
	eng      *Engine
	ctx      *sharedContext
	hostname string
}

// verifyConnection computes the independent CRL, OCSP and HPKP decisions
// over the candidate chain and fails the handshake when any of them
// fails.
func (v *chainVerifier) verifyConnection(cs tls.ConnectionState) error {
	chain, err := v.candidateChain(cs)
	if err != nil {
		return err
	}

	if len(v.ctx.crls) > 0 {
		if err := v.verifyCRL(chain); err != nil {
			return err
		}
	}

	ocspOK := true
	if v.ctx.conf.OCSP {
		ocspOK = v.verifyOCSP(chain, cs.OCSPResponse)
	}

	hpkpOK := true
	if v.ctx.conf.HPKPCache != nil {
		hpkpOK = v.verifyHPKP(chain)
	}

	if !ocspOK || !hpkpOK {
		return fmt.Errorf("%w: revocation check rejected the chain", ErrCertificate)
	}
	return nil
}

// candidateChain returns the verified chain, leaf first. When host-name
// checking is disabled the back-end skipped path validation, so the chain
// is built here against the engine's trust store without a DNS name.
func (v *chainVerifier) candidateChain(cs tls.ConnectionState) ([]*x509.Certificate, error) {
	if len(cs.VerifiedChains) > 0 {
		return cs.VerifiedChains[0], nil
	}

	if len(cs.PeerCertificates) == 0 {
		return nil, fmt.Errorf("%w: no peer certificates", ErrCertificate)
	}

	intermediates := x509.NewCertPool()
	for _, cert := range cs.PeerCertificates[1:] {
		intermediates.AddCert(cert)
	}

	chains, err := cs.PeerCertificates[0].Verify(x509.VerifyOptions{
		Roots:         v.ctx.roots,
		Intermediates: intermediates,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCertificate, err)
	}
	return chains[0], nil
}

// verifyCRL enforces the loaded revocation lists against the full chain.
// A certificate whose issuer has no matching CRL on file is skipped.
func (v *chainVerifier) verifyCRL(chain []*x509.Certificate) error {
	for i := 0; i+1 < len(chain); i++ {
		cert, issuer := chain[i], chain[i+1]

		for _, crl := range v.ctx.crls {
			if !bytes.Equal(crl.RawIssuer, issuer.RawSubject) {
				continue
			}
			if err := crl.CheckSignatureFrom(issuer); err != nil {
				v.eng.log.Debug("CRL signature check failed for issuer '%s': %v", issuer.Subject.CommonName, err)
				return fmt.Errorf("%w: CRL signature invalid", ErrCertificate)
			}

			for _, entry := range crl.RevokedCertificateEntries {
				if entry.SerialNumber.Cmp(cert.SerialNumber) == 0 {
					v.eng.log.Error("certificate for '%s' is revoked by CRL", cert.Subject.CommonName)
					return fmt.Errorf("%w: certificate revoked by CRL", ErrCertificate)
				}
			}
		}
	}
	return nil
}

// verifyOCSP checks every (certificate, issuer) pair of the chain; the
// root itself is not queried. Any failing pair downgrades the whole
// decision.
func (v *chainVerifier) verifyOCSP(chain []*x509.Certificate, staple []byte) bool {
	ok := true
	for i := 0; i+1 < len(chain); i++ {
		cert, issuer := chain[i], chain[i+1]

		if i == 0 && len(staple) > 0 && v.ctx.conf.OCSPStapling && v.checkStapled(staple, cert, issuer) {
			continue
		}

		if !v.queryOCSP(cert, issuer) {
			ok = false
		}
	}
	return ok
}

// checkStapled reports whether the stapled response can stand in for a
// fresh query on the leaf. Anything but a fresh "good" falls back to the
// network.
func (v *chainVerifier) checkStapled(staple []byte, cert, issuer *x509.Certificate) bool {
	resp, err := ocsp.ParseResponseForCert(staple, cert, issuer)
	if err != nil {
		v.eng.log.Debug("stapled OCSP response unusable: %v", err)
		return false
	}
	if resp.Status != ocsp.Good || !validityContainsNow(resp) {
		return false
	}

	v.eng.log.Debug("using stapled OCSP response for host '%s'", v.hostname)
	return true
}

// queryOCSP submits one request to the responder named by the
// certificate's AIA extension, or the configured fallback responder.
func (v *chainVerifier) queryOCSP(cert, issuer *x509.Certificate) bool {
	uri := v.ctx.conf.OCSPServer
	if len(cert.OCSPServer) > 0 {
		uri = cert.OCSPServer[0]
	}
	if uri == "" {
		v.eng.log.Debug("no OCSP responder known for certificate '%s'", cert.Subject.CommonName)
		return false
	}

	req, err := x509ocsp.NewRequest(cert, issuer)
	if err != nil {
		v.eng.log.Debug("could not build OCSP request: %v", err)
		return false
	}

	body, status, err := v.eng.fetcher.Fetch(context.Background(), uri, map[string]string{
		"Accept-Encoding": "identity",
		"Accept":          "*/*",
		"Content-Type":    "application/ocsp-request",
	}, req.Raw)
	if err != nil || status != http.StatusOK {
		v.eng.log.Debug("OCSP query to '%s' failed (status %d): %v", uri, status, err)
		return false
	}

	resp, err := ocsp.ParseResponseForCert(body, cert, issuer)
	if err != nil {
		v.eng.log.Debug("OCSP verification error: %v", err)
		return false
	}

	nonce, err := req.CheckNonce(body)
	if err != nil || nonce == x509ocsp.NonceMismatch {
		v.eng.log.Debug("OCSP verification error: nonces do not match")
		return false
	}

	switch resp.Status {
	case ocsp.Good:
		v.eng.log.Debug("OCSP cert status: good")
	case ocsp.Revoked:
		v.eng.log.Debug("OCSP cert status: revoked at %s (reason: %s)",
			resp.RevokedAt.Format(time.RFC3339), x509ocsp.ReasonString(resp.RevocationReason))
		return false
	default:
		v.eng.log.Debug("OCSP cert status: unknown")
		return false
	}

	if !validityContainsNow(resp) {
		v.eng.log.Debug("OCSP verification error: response is out of date")
		return false
	}

	return true
}

func validityContainsNow(resp *ocsp.Response) bool {
	now := time.Now()
	if now.Before(resp.ThisUpdate) {
		return false
	}
	if !resp.NextUpdate.IsZero() && now.After(resp.NextUpdate) {
		return false
	}
	return true
}

// verifyHPKP checks every chain certificate against the pinning store.
// A single mismatching pin fails the chain; matches, missing pins and
// lookup errors are acceptable.
func (v *chainVerifier) verifyHPKP(chain []*x509.Certificate) bool {
	mismatch := false
	for _, cert := range chain {
		switch v.ctx.conf.HPKPCache.Check(v.hostname, cert.RawSubjectPublicKeyInfo) {
		case PinMatch:
			v.eng.log.Debug("matching HPKP pinning found for host '%s'", v.hostname)
		case PinNoPin:
			v.eng.log.Debug("no HPKP pinning found for host '%s'", v.hostname)
		case PinError:
			v.eng.log.Debug("could not check HPKP pinning")
		case PinMismatch:
			v.eng.log.Debug("public key for host '%s' does not match", v.hostname)
			mismatch = true
		}
	}

	if mismatch {
		v.eng.log.Error("public key pinning mismatch for host '%s'", v.hostname)
		return false
	}
	return true
}
