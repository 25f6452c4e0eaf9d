// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package tlsengine

import (
	"crypto/tls"
	"strings"
)

// selectPriorities translates the configured protocol name or raw
// cipher-suite string into version bounds and a suite set on cfg.
//
// The fixed tokens are matched ASCII case-insensitively; anything else is
// taken verbatim as a colon-separated cipher-suite list. TLS 1.3 suites
// are not configurable in the back-end and always remain enabled.
func (e *Engine) selectPriorities(cfg *tls.Config, prio string) error {
	// Default baseline: TLS 1.2 up to the highest version the back-end
	// knows, with the non-broken suite set (no NULL, RC4 or MD5).
	cfg.MinVersion = tls.VersionTLS12
	cfg.MaxVersion = tls.VersionTLS13
	suites := defaultCipherSuites()

	switch {
	case strings.EqualFold(prio, "SSL"):
		// SSLv3 was removed from the back-end; TLS 1.0 is the lowest
		// version still spoken.
		e.log.Info("SSLv3 is not supported by the TLS back-end. Will use TLS 1.0 instead.")
		cfg.MinVersion = tls.VersionTLS10
	case strings.EqualFold(prio, "TLSv1"):
		cfg.MinVersion = tls.VersionTLS10
	case strings.EqualFold(prio, "TLSv1_1"):
		cfg.MinVersion = tls.VersionTLS11
	case strings.EqualFold(prio, "TLSv1_3"):
		cfg.MinVersion = tls.VersionTLS13
	case strings.EqualFold(prio, "PFS"):
		// Forward secrecy: additionally drop RSA key exchange.
		suites = withoutRSAKeyExchange(suites)
	case prio == "" || strings.EqualFold(prio, "AUTO") || strings.EqualFold(prio, "TLSv1_2"):
		// Checking for "TLSv1_2" is redundant; it is already the
		// default minimum version.
	default:
		parsed, err := parseCipherList(prio)
		if err != nil {
			e.log.Error("invalid priority string '%s'", prio)
			return ErrInvalid
		}
		suites = parsed
	}

	cfg.CipherSuites = suites
	return nil
}

// defaultCipherSuites returns the back-end's currently recommended suite
// identifiers. The list includes the TLS 1.3 suites, which the back-end
// ignores in cfg.CipherSuites.
func defaultCipherSuites() []uint16 {
	var ids []uint16
	for _, cs := range tls.CipherSuites() {
		ids = append(ids, cs.ID)
	}
	return ids
}

// withoutRSAKeyExchange filters out static-RSA key exchange suites.
func withoutRSAKeyExchange(ids []uint16) []uint16 {
	var kept []uint16
	for _, id := range ids {
		if isRSAKeyExchange(id) {
			continue
		}
		kept = append(kept, id)
	}
	return kept
}

func isRSAKeyExchange(id uint16) bool {
	switch id {
	case tls.TLS_RSA_WITH_AES_128_CBC_SHA,
		tls.TLS_RSA_WITH_AES_256_CBC_SHA,
		tls.TLS_RSA_WITH_AES_128_CBC_SHA256,
		tls.TLS_RSA_WITH_AES_128_GCM_SHA256,
		tls.TLS_RSA_WITH_AES_256_GCM_SHA384,
		tls.TLS_RSA_WITH_RC4_128_SHA,
		tls.TLS_RSA_WITH_3DES_EDE_CBC_SHA:
		return true
	}
	return false
}

// parseCipherList resolves a colon-separated list of suite names against
// the back-end's known suites, including the insecure set, so that any
// valid name can be selected explicitly.
func parseCipherList(list string) ([]uint16, error) {
	known := make(map[string]uint16)
	for _, cs := range tls.CipherSuites() {
		known[strings.ToUpper(cs.Name)] = cs.ID
	}
	for _, cs := range tls.InsecureCipherSuites() {
		known[strings.ToUpper(cs.Name)] = cs.ID
	}

	var ids []uint16
	for _, name := range strings.Split(list, ":") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		id, ok := known[strings.ToUpper(name)]
		if !ok {
			return nil, ErrInvalid
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, ErrInvalid
	}
	return ids, nil
}
