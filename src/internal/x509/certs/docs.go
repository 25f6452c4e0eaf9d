// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509certs decodes and encodes X.509 trust material for the TLS
// engine: certificates in PEM, DER or PKCS7 encoding, and private keys in
// PKCS#8, PKCS#1 or SEC 1 encoding. It also assembles client-authentication
// key pairs, allowing certificate and key to share a single file.
package x509certs
