// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package tlsengine

import (
	"crypto/tls"
	"crypto/x509"
	"io"
	"os"
	"strings"
	"sync"

	x509certs "github.com/H0llyW00dzZ/tls-client-engine/src/internal/x509/certs"
	"github.com/H0llyW00dzZ/tls-client-engine/src/logger"
)

// Engine is a client-side TLS engine. Configure it through the setter
// calls, then balance Init and Deinit around the connections opened with
// Open. The shared context built by the first Init is reference-counted
// and frozen until the last Deinit.
type Engine struct {
	mu       sync.Mutex
	refcount int
	ctx      *sharedContext

	conf    Config
	backend Backend
	fetcher Fetcher
	certs   *x509certs.Certificate
	log     logger.Logger
	infoOut io.Writer
}

// sharedContext is the immutable state shared by every connection of an
// initialized engine.
type sharedContext struct {
	conf     Config
	template *tls.Config
	roots    *x509.CertPool
	crls     []*x509.RevocationList
	bridge   *sessionBridge
}

// New creates an engine with default configuration, the standard TLS
// back-end and the default HTTP fetcher.
func New() *Engine {
	return &Engine{
		conf:    defaultConfig(),
		backend: StdBackend(),
		fetcher: NewHTTPFetcher(),
		certs:   x509certs.New(),
		log:     logger.Default,
		infoOut: os.Stdout,
	}
}

// SetLogger installs the logging sinks. A nil logger silences the engine.
// Takes effect immediately, also for initialized engines.
func (e *Engine) SetLogger(l logger.Logger) {
	if l == nil {
		l = logger.Discard{}
	}
	e.log = l
}

// SetBackend selects the cryptographic back-end. Takes effect on the
// next init cycle.
func (e *Engine) SetBackend(b Backend) {
	if b != nil {
		e.backend = b
	}
}

// SetFetcher installs the HTTP collaborator used for OCSP queries.
func (e *Engine) SetFetcher(f Fetcher) {
	if f != nil {
		e.fetcher = f
	}
}

// SetInfoOutput redirects the handshake summary printed when PRINT_INFO
// is enabled.
func (e *Engine) SetInfoOutput(w io.Writer) {
	if w != nil {
		e.infoOut = w
	}
}

// Init initializes the engine as a TLS client. The first balanced call
// builds the shared context: root certificates are loaded from the
// configured CA directory (files that cannot be loaded are skipped with a
// debug message), CRLs and client keys are read, and the protocol
// priorities are applied. Later calls only increment the reference count.
//
// Init may be called several times; only the first call really takes
// action. It is safe for concurrent use.
func (e *Engine) Init() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.refcount > 0 {
		e.refcount++
		return nil
	}

	ctx, err := e.buildContext()
	if err != nil {
		e.log.Error("could not initialize the TLS engine")
		return err
	}

	e.ctx = ctx
	e.refcount = 1
	e.log.Debug("TLS engine initialized (back-end: %s)", e.backend.Name())
	return nil
}

// Deinit releases what Init loaded once the last balanced call arrives.
// Calls must pair with Init; only the last one really takes action.
func (e *Engine) Deinit() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.refcount == 1 {
		e.ctx = nil
	}
	if e.refcount > 0 {
		e.refcount--
	}
}

// initialized reports the refcount without the caller holding the lock.
func (e *Engine) initialized() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.refcount > 0
}

func (e *Engine) sharedCtx() *sharedContext {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctx
}

// buildContext freezes the configuration and assembles the shared TLS
// context from it.
func (e *Engine) buildContext() (*sharedContext, error) {
	conf := e.conf
	template := &tls.Config{}
	ctx := &sharedContext{conf: conf, template: template}

	if !conf.CheckCertificate {
		template.InsecureSkipVerify = true
		e.log.Info("certificate check disabled. Peer's certificate will NOT be checked.")
	} else {
		pool, err := e.loadTrustStore(&conf)
		if err != nil {
			return nil, err
		}
		template.RootCAs = pool
		ctx.roots = pool

		if conf.CRLFile != "" {
			crls, err := e.loadCRLs(conf.CRLFile)
			if err != nil {
				e.log.Error("could not load CRL from '%s'", conf.CRLFile)
				return nil, err
			}
			ctx.crls = crls
		}
	}

	if pair, err := e.loadClientCert(&conf); err != nil {
		e.log.Error("could not load client certificate: %v", err)
	} else if pair != nil {
		template.Certificates = []tls.Certificate{*pair}
	}

	if conf.ALPN != "" {
		template.NextProtos = splitALPN(conf.ALPN)
	}

	bridge := &sessionBridge{cache: conf.SessionCache, log: e.log}
	template.ClientSessionCache = bridge
	ctx.bridge = bridge

	if err := e.selectPriorities(template, conf.SecureProtocol); err != nil {
		return nil, err
	}

	return ctx, nil
}

// clientConfig derives the per-connection TLS configuration from the
// shared context: server name, host-name checking mode and the
// revocation callback carrying this connection's host.
func (e *Engine) clientConfig(ctx *sharedContext, hostname string) *tls.Config {
	cfg := ctx.template.Clone()
	cfg.ServerName = hostname

	if !ctx.conf.CheckCertificate {
		return cfg
	}

	if !ctx.conf.CheckHostname {
		cfg.InsecureSkipVerify = true
		e.log.Info("host name check disabled. Server certificate's subject name will not be checked.")
	}

	v := &chainVerifier{eng: e, ctx: ctx, hostname: hostname}
	cfg.VerifyConnection = v.verifyConnection
	return cfg
}

func splitALPN(alpn string) []string {
	var protos []string
	for _, p := range strings.Split(alpn, ",") {
		if p = strings.TrimSpace(p); p != "" {
			protos = append(protos, p)
		}
	}
	return protos
}
