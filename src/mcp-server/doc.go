// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package mcpserver exposes the TLS engine as [MCP] tools over stdio:
// tls_probe runs a handshake against a host and reports the negotiated
// parameters, and tls_check_revocation additionally queries OCSP
// responders for every non-root certificate of the verified chain.
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
package mcpserver
