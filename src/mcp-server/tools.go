// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ToolDefinition pairs an MCP tool with its handler.
type ToolDefinition struct {
	Tool    mcp.Tool
	Handler server.ToolHandlerFunc
}

// createTools creates and returns the MCP tool definitions.
//
// The function defines the following tools:
//   - tls_probe: Runs a TLS handshake against a host and reports the
//     negotiated parameters and certificate chain
//   - tls_check_revocation: Checks a host's certificate chain against
//     OCSP responders
func createTools() []ToolDefinition {
	return []ToolDefinition{
		{
			Tool: mcp.NewTool("tls_probe",
				mcp.WithDescription("Run a TLS handshake against a host and report the negotiated protocol, cipher suite, ALPN and certificate chain"),
				mcp.WithString("host",
					mcp.Required(),
					mcp.Description("Host name to probe"),
				),
				mcp.WithNumber("port",
					mcp.Description("TCP port (default: 443)"),
					mcp.DefaultNumber(443),
				),
				mcp.WithNumber("timeout_ms",
					mcp.Description("Handshake timeout in milliseconds (default: 10000)"),
					mcp.DefaultNumber(10000),
				),
				mcp.WithString("secure_protocol",
					mcp.Description("Protocol selection: SSL, TLSv1, TLSv1_1, TLSv1_2, TLSv1_3, AUTO or PFS (default: AUTO)"),
					mcp.DefaultString("AUTO"),
				),
				mcp.WithBoolean("check_certificate",
					mcp.Description("Verify the peer certificate chain (default: true)"),
					mcp.DefaultBool(true),
				),
				mcp.WithBoolean("check_hostname",
					mcp.Description("Verify the certificate subject against the host (default: true)"),
					mcp.DefaultBool(true),
				),
			),
			Handler: func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleProbe(ctx, request, false)
			},
		},
		{
			Tool: mcp.NewTool("tls_check_revocation",
				mcp.WithDescription("Run a TLS handshake against a host with live OCSP revocation checking enabled and report the result"),
				mcp.WithString("host",
					mcp.Required(),
					mcp.Description("Host name to check"),
				),
				mcp.WithNumber("port",
					mcp.Description("TCP port (default: 443)"),
					mcp.DefaultNumber(443),
				),
				mcp.WithNumber("timeout_ms",
					mcp.Description("Handshake timeout in milliseconds (default: 10000)"),
					mcp.DefaultNumber(10000),
				),
			),
			Handler: func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleProbe(ctx, request, true)
			},
		},
	}
}
