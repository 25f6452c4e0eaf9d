// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"github.com/H0llyW00dzZ/tls-client-engine/src/version"
	"github.com/mark3labs/mcp-go/server"
)

var appVersion = version.Version // default version

// GetVersion returns the current version of the MCP server.
func GetVersion() string {
	return appVersion
}

// Run starts the MCP server exposing the TLS engine's probe tools over
// stdio. It blocks until the client disconnects or the process receives
// a termination signal.
//
// Parameters:
//   - version: Version string to set for the server (e.g., "0.1.0")
//
// Returns:
//   - error: Server startup or runtime error
func Run(version string) error {
	if version != "" {
		appVersion = version
	}

	s := server.NewMCPServer(
		"TLS Client Engine",
		appVersion,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	for _, tool := range createTools() {
		s.AddTool(tool.Tool, tool.Handler)
	}

	return server.ServeStdio(s)
}
