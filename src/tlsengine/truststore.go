// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package tlsengine

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"strings"

	x509certs "github.com/H0llyW00dzZ/tls-client-engine/src/internal/x509/certs"
)

// fallbackCADirectory is used when the back-end cannot provide its
// default verification paths.
const fallbackCADirectory = "/etc/ssl/certs"

// loadTrustStore assembles the root pool from the configured CA directory
// and optional single CA file.
//
// The sentinel directory "system" asks the back-end for its default
// verification paths first and falls back to fallbackCADirectory when
// that fails. Explicit directories are scanned for files whose name ends
// case-insensitively in ".pem"; zero loadable certificates is reported
// but not fatal, while an unreadable directory aborts initialization.
func (e *Engine) loadTrustStore(conf *Config) (*x509.CertPool, error) {
	dir := conf.CADirectory

	var pool *x509.CertPool
	if dir == "" {
		pool = x509.NewCertPool()
	} else if dir == "system" {
		sys, err := x509.SystemCertPool()
		if err == nil {
			pool = sys
			dir = ""
		} else {
			dir = fallbackCADirectory
			e.log.Info("could not load certificates from default paths. Falling back to '%s'.", dir)
			pool = x509.NewCertPool()
		}
	} else {
		pool = x509.NewCertPool()
	}

	if dir != "" {
		loaded, err := e.loadTrustFilesFromDirectory(pool, dir)
		if err != nil {
			e.log.Error("could not open directory '%s'. No certificates were loaded.", dir)
			return nil, ErrUnknown
		}
		if loaded == 0 {
			e.log.Error("no certificates could be loaded from directory '%s'", dir)
		} else {
			e.log.Debug("loaded %d certificates", loaded)
		}
	}

	// Load individual CA file, if requested
	if conf.CAFile != "" {
		if err := e.loadTrustFile(pool, conf.CAFile, conf.CAType); err != nil {
			e.log.Error("could not load CA certificate from file '%s'", conf.CAFile)
		}
	}

	return pool, nil
}

// loadTrustFilesFromDirectory registers every ".pem" entry of dir with
// the pool and returns how many files contributed at least one
// certificate.
func (e *Engine) loadTrustFilesFromDirectory(pool *x509.CertPool, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}

	loaded := 0
	for _, entry := range entries {
		name := entry.Name()
		if len(name) < 4 || !strings.EqualFold(name[len(name)-4:], ".pem") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			e.log.Debug("skipping trust file '%s': %v", name, err)
			continue
		}
		if pool.AppendCertsFromPEM(data) {
			loaded++
		}
	}

	return loaded, nil
}

func (e *Engine) loadTrustFile(pool *x509.CertPool, path string, format x509certs.Format) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	certs, err := e.certs.DecodeMultiple(data, format)
	if err != nil {
		return err
	}
	for _, cert := range certs {
		pool.AddCert(cert)
	}
	return nil
}

// loadCRLs parses the configured revocation list file. The file must be
// in PEM format; every "X509 CRL" block is loaded, and the resulting
// lists are enforced against the full chain during verification.
func (e *Engine) loadCRLs(path string) ([]*x509.RevocationList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ErrUnknown
	}

	var crls []*x509.RevocationList
	for len(data) > 0 {
		block, rest := pem.Decode(data)
		if block == nil {
			break
		}
		data = rest
		if block.Type != "X509 CRL" {
			continue
		}

		crl, err := x509.ParseRevocationList(block.Bytes)
		if err != nil {
			return nil, ErrUnknown
		}
		crls = append(crls, crl)
	}

	if len(crls) == 0 {
		return nil, ErrUnknown
	}
	return crls, nil
}

// loadClientCert assembles the client-authentication key pair. When only
// one of CertFile/KeyFile is configured, the other is expected to live in
// the same file.
func (e *Engine) loadClientCert(conf *Config) (*tls.Certificate, error) {
	certPath, keyPath := conf.CertFile, conf.KeyFile
	if certPath == "" && keyPath == "" {
		return nil, nil
	}
	if certPath == "" {
		certPath = keyPath
	}
	if keyPath == "" {
		keyPath = certPath
	}

	certData, err := os.ReadFile(certPath)
	if err != nil {
		return nil, err
	}
	keyData := certData
	if keyPath != certPath {
		if keyData, err = os.ReadFile(keyPath); err != nil {
			return nil, err
		}
	}

	pair, err := e.certs.KeyPair(certData, conf.CertType, keyData, conf.KeyType)
	if err != nil {
		return nil, err
	}
	return &pair, nil
}
