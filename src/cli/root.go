// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/H0llyW00dzZ/tls-client-engine/src/internal/helper/posix"
	"github.com/H0llyW00dzZ/tls-client-engine/src/logger"
	"github.com/H0llyW00dzZ/tls-client-engine/src/tlsengine"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"
)

var (
	configFile     string
	secureProtocol string
	caDirectory    string
	caFile         string
	crlFile        string
	ocspServer     string
	alpn           string
	connectTimeout int
	noVerify       bool
	noCheckHost    bool
	noOCSP         bool
	printInfo      bool
	debugLog       bool
)

// Execute runs the root command, handling any errors that occur during execution.
func Execute(ctx context.Context, version string, log logger.Logger) error {
	rootCmd := &cobra.Command{
		Use:           posix.GetExecutableName() + " HOST[:PORT]",
		Short:         "TLS client engine probe",
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbe(cmd.Context(), args[0], log)
		},
	}

	rootCmd.Flags().StringVarP(&configFile, "config", "c", "", "probe configuration file (.json, .yaml, .yml)")
	rootCmd.Flags().StringVar(&secureProtocol, "secure-protocol", "", "protocol name or raw priority string (default: AUTO)")
	rootCmd.Flags().StringVar(&caDirectory, "ca-directory", "", "root certificate directory, or 'system'")
	rootCmd.Flags().StringVar(&caFile, "ca-file", "", "single-file trust anchor")
	rootCmd.Flags().StringVar(&crlFile, "crl-file", "", "certificate revocation list (PEM)")
	rootCmd.Flags().StringVar(&ocspServer, "ocsp-server", "", "fallback OCSP responder URI")
	rootCmd.Flags().StringVar(&alpn, "alpn", "", "comma-separated ALPN identifiers")
	rootCmd.Flags().IntVarP(&connectTimeout, "timeout", "t", 10000, "handshake timeout in milliseconds (0: no bound)")
	rootCmd.Flags().BoolVar(&noVerify, "no-check-certificate", false, "do not verify the peer certificate")
	rootCmd.Flags().BoolVar(&noCheckHost, "no-check-hostname", false, "do not verify the certificate subject name")
	rootCmd.Flags().BoolVar(&noOCSP, "no-ocsp", false, "disable OCSP revocation queries")
	rootCmd.Flags().BoolVarP(&printInfo, "print-info", "p", false, "print a handshake summary table")
	rootCmd.Flags().BoolVarP(&debugLog, "debug", "d", false, "enable debug logging")

	return rootCmd.ExecuteContext(ctx)
}

// runProbe dials the target, hands the non-blocking socket to the engine
// and reports the handshake outcome.
func runProbe(ctx context.Context, target string, log logger.Logger) error {
	host, addr, err := splitTarget(target)
	if err != nil {
		return err
	}

	eng := tlsengine.New()
	eng.SetLogger(log)
	if lvl, ok := log.(*logger.Leveled); ok && debugLog {
		lvl.SetLevel(logger.LevelDebug)
	}

	if configFile != "" {
		cfg, err := LoadConfig(configFile)
		if err != nil {
			return err
		}
		cfg.Apply(eng)
		if cfg.ConnectTimeoutMS != 0 {
			connectTimeout = cfg.ConnectTimeoutMS
		}
	}
	applyFlags(eng)

	if err := eng.Init(); err != nil {
		return fmt.Errorf("engine initialization failed: %w", err)
	}
	defer eng.Deinit()

	dialer := &net.Dialer{Timeout: time.Duration(connectTimeout) * time.Millisecond}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("could not connect to %s: %w", addr, err)
	}
	defer conn.Close()

	// File duplicates the descriptor and every Fd call switches it to
	// blocking mode; the engine requires non-blocking, so fetch the
	// descriptor once and switch it back.
	file, err := conn.(*net.TCPConn).File()
	if err != nil {
		return err
	}
	defer file.Close()
	fd := int(file.Fd())
	if err := unix.SetNonblock(fd, true); err != nil {
		return err
	}

	tcp := &tlsengine.TCPConn{
		SockFD:         fd,
		Hostname:       host,
		ConnectTimeout: connectTimeout,
	}

	start := time.Now()
	sess, err := eng.Open(tcp)
	if err != nil {
		return fmt.Errorf("handshake with %s failed: %w", addr, err)
	}
	defer eng.Close(&tcp.SSLSession)

	state := sess.ConnectionState()
	log.Info("handshake with %s completed in %s (protocol: %s, cipher: %s, resumed: %t)",
		addr, time.Since(start).Round(time.Millisecond),
		tls.VersionName(state.Version), tls.CipherSuiteName(state.CipherSuite), sess.Resumed())

	return nil
}

func applyFlags(eng *tlsengine.Engine) {
	if secureProtocol != "" {
		eng.SetConfigString(tlsengine.KeySecureProtocol, secureProtocol)
	}
	if caDirectory != "" {
		eng.SetConfigString(tlsengine.KeyCADirectory, caDirectory)
	}
	if caFile != "" {
		eng.SetConfigString(tlsengine.KeyCAFile, caFile)
	}
	if crlFile != "" {
		eng.SetConfigString(tlsengine.KeyCRLFile, crlFile)
	}
	if ocspServer != "" {
		eng.SetConfigString(tlsengine.KeyOCSPServer, ocspServer)
	}
	if alpn != "" {
		eng.SetConfigString(tlsengine.KeyALPN, alpn)
	}
	if noVerify {
		eng.SetConfigInt(tlsengine.KeyCheckCertificate, 0)
	}
	if noCheckHost {
		eng.SetConfigInt(tlsengine.KeyCheckHostname, 0)
	}
	if noOCSP {
		eng.SetConfigInt(tlsengine.KeyOCSP, 0)
	}
	if printInfo {
		eng.SetConfigInt(tlsengine.KeyPrintInfo, 1)
	}
}

// splitTarget normalizes HOST[:PORT] into the bare host name and a
// dialable address, defaulting to port 443.
func splitTarget(target string) (host, addr string, err error) {
	host = target
	port := "443"
	if h, p, splitErr := net.SplitHostPort(target); splitErr == nil {
		host, port = h, p
	}
	if _, err := strconv.Atoi(port); err != nil {
		return "", "", fmt.Errorf("invalid port in target %q", target)
	}
	return host, net.JoinHostPort(host, port), nil
}
