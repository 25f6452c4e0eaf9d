// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/H0llyW00dzZ/tls-client-engine/src/logger"
	"github.com/H0llyW00dzZ/tls-client-engine/src/tlsengine"
	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/sys/unix"
)

// probeResult is the JSON payload returned by the probe tools.
type probeResult struct {
	Host      string   `json:"host"`
	Address   string   `json:"address"`
	Protocol  string   `json:"protocol"`
	Cipher    string   `json:"cipherSuite"`
	ALPN      string   `json:"alpn,omitempty"`
	Resumed   bool     `json:"resumed"`
	PeerChain []string `json:"peerChain"`
	Duration  string   `json:"duration"`
}

// handleProbe runs a TLS handshake against the requested host and
// reports the negotiated parameters. With revocation enabled, OCSP
// responders are queried for every non-root certificate of the verified
// chain.
func handleProbe(ctx context.Context, request mcp.CallToolRequest, revocation bool) (*mcp.CallToolResult, error) {
	host, err := request.RequireString("host")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("host parameter required: %v", err)), nil
	}

	port := request.GetInt("port", 443)
	timeoutMS := request.GetInt("timeout_ms", 10000)

	eng := tlsengine.New()
	eng.SetLogger(logger.Discard{})
	eng.SetConfigString(tlsengine.KeySecureProtocol, request.GetString("secure_protocol", "AUTO"))
	if !request.GetBool("check_certificate", true) {
		eng.SetConfigInt(tlsengine.KeyCheckCertificate, 0)
	}
	if !request.GetBool("check_hostname", true) {
		eng.SetConfigInt(tlsengine.KeyCheckHostname, 0)
	}
	if !revocation {
		eng.SetConfigInt(tlsengine.KeyOCSP, 0)
	}

	if err := eng.Init(); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("engine initialization failed: %v", err)), nil
	}
	defer eng.Deinit()

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	dialer := &net.Dialer{Timeout: time.Duration(timeoutMS) * time.Millisecond}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("could not connect to %s: %v", addr, err)), nil
	}
	defer conn.Close()

	file, err := conn.(*net.TCPConn).File()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("could not access socket: %v", err)), nil
	}
	defer file.Close()
	fd := int(file.Fd())
	if err := unix.SetNonblock(fd, true); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("could not access socket: %v", err)), nil
	}

	tcp := &tlsengine.TCPConn{
		SockFD:         fd,
		Hostname:       host,
		ConnectTimeout: timeoutMS,
	}

	start := time.Now()
	sess, err := eng.Open(tcp)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("handshake with %s failed: %v", addr, err)), nil
	}
	defer eng.Close(&tcp.SSLSession)

	state := sess.ConnectionState()
	result := probeResult{
		Host:     host,
		Address:  addr,
		Protocol: tls.VersionName(state.Version),
		Cipher:   tls.CipherSuiteName(state.CipherSuite),
		ALPN:     state.NegotiatedProtocol,
		Resumed:  sess.Resumed(),
		Duration: time.Since(start).Round(time.Millisecond).String(),
	}
	for _, cert := range state.PeerCertificates {
		result.PeerChain = append(result.PeerChain, cert.Subject.String())
	}

	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("could not encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}
