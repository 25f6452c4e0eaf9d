// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package cli implements the tls-probe command line interface. It dials a
// target host, hands the non-blocking socket to the TLS engine and
// reports the handshake outcome. Engine parameters can be supplied
// through flags or a JSON/YAML configuration file.
package cli
