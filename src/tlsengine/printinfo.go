// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package tlsengine

import (
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// printInfo writes a summary of the established handshake when the
// PRINT_INFO toggle is enabled.
func (e *Engine) printInfo(s *Session) {
	cs := s.bc.ConnectionState()

	var subjects []string
	for _, cert := range cs.PeerCertificates {
		subjects = append(subjects, cert.Subject.CommonName)
	}

	resumed := "no"
	if cs.DidResume {
		resumed = "yes"
	}

	table := tablewriter.NewTable(e.infoOut)
	table.Header([]string{"Field", "Value"})
	table.Bulk([][]string{
		{"Host", s.host},
		{"Protocol", tls.VersionName(cs.Version)},
		{"Cipher suite", tls.CipherSuiteName(cs.CipherSuite)},
		{"ALPN", cs.NegotiatedProtocol},
		{"Resumed", resumed},
		{"Peer chain", strings.Join(subjects, " -> ")},
	})
	table.Render()

	fmt.Fprintln(e.infoOut)
}
