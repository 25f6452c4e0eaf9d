// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509ocsp builds nonce-bearing OCSP requests and inspects
// responder replies at the ASN.1 level. The standard OCSP parser does not
// expose responseExtensions, so the nonce handling required for replay
// protection is implemented here directly against the RFC 6960 DER layout.
package x509ocsp
