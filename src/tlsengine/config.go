// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package tlsengine

import (
	x509certs "github.com/H0llyW00dzZ/tls-client-engine/src/internal/x509/certs"
)

// ConfigKey identifies an engine configuration parameter.
type ConfigKey int

// String-valued configuration keys.
const (
	KeySecureProtocol ConfigKey = iota
	KeyCADirectory
	KeyCAFile
	KeyCertFile
	KeyKeyFile
	KeyCRLFile
	KeyOCSPServer
	KeyALPN

	// Integer-valued configuration keys.
	KeyCheckCertificate
	KeyCheckHostname
	KeyPrintInfo
	KeyCAType
	KeyCertType
	KeyKeyType
	KeyOCSP
	KeyOCSPStapling

	// Object-valued configuration keys.
	KeyOCSPCache
	KeySessionCache
	KeyHPKPCache
)

// Trust material formats accepted by the *_TYPE keys.
const (
	X509FmtPEM = int(x509certs.FmtPEM)
	X509FmtDER = int(x509certs.FmtDER)
)

// Config is the engine parameter block. It is read through a frozen
// snapshot while the engine is initialized; setter calls made afterwards
// only take effect on the next init cycle.
type Config struct {
	SecureProtocol string
	CADirectory    string
	CAFile         string
	CertFile       string
	KeyFile        string
	CRLFile        string
	OCSPServer     string
	ALPN           string

	CAType   x509certs.Format
	CertType x509certs.Format
	KeyType  x509certs.Format

	CheckCertificate bool
	CheckHostname    bool
	PrintInfo        bool
	OCSP             bool
	OCSPStapling     bool

	OCSPCache    OCSPCache
	SessionCache SessionCache
	HPKPCache    HPKPCache
}

func defaultConfig() Config {
	return Config{
		SecureProtocol:   "AUTO",
		CADirectory:      "system",
		ALPN:             "h2,http/1.1",
		CheckCertificate: true,
		CheckHostname:    true,
		OCSP:             true,
		OCSPStapling:     true,
	}
}

// SetConfigString sets a string-valued configuration parameter. Unknown
// keys are reported to the error log and leave the configuration
// untouched. Values are not validated here; a nonsense protocol string is
// only diagnosed at init time.
func (e *Engine) SetConfigString(key ConfigKey, value string) {
	switch key {
	case KeySecureProtocol:
		e.conf.SecureProtocol = value
	case KeyCADirectory:
		e.conf.CADirectory = value
	case KeyCAFile:
		e.conf.CAFile = value
	case KeyCertFile:
		e.conf.CertFile = value
	case KeyKeyFile:
		e.conf.KeyFile = value
	case KeyCRLFile:
		e.conf.CRLFile = value
	case KeyOCSPServer:
		e.conf.OCSPServer = value
	case KeyALPN:
		e.conf.ALPN = value
	default:
		e.log.Error("unknown configuration key %d (maybe this config value should be of another type?)", key)
	}
}

// SetConfigInt sets an integer-valued configuration parameter. Boolean
// toggles treat any non-zero value as true; the *_TYPE keys accept
// X509FmtPEM or X509FmtDER. Unknown keys are reported to the error log.
func (e *Engine) SetConfigInt(key ConfigKey, value int) {
	switch key {
	case KeyCheckCertificate:
		e.conf.CheckCertificate = value != 0
	case KeyCheckHostname:
		e.conf.CheckHostname = value != 0
	case KeyPrintInfo:
		e.conf.PrintInfo = value != 0
	case KeyCAType:
		e.conf.CAType = x509certs.Format(value)
	case KeyCertType:
		e.conf.CertType = x509certs.Format(value)
	case KeyKeyType:
		e.conf.KeyType = x509certs.Format(value)
	case KeyOCSP:
		e.conf.OCSP = value != 0
	case KeyOCSPStapling:
		e.conf.OCSPStapling = value != 0
	default:
		e.log.Error("unknown configuration key %d (maybe this config value should be of another type?)", key)
	}
}

// SetConfigObject sets an opaque-handle configuration parameter: one of
// the cache collaborators. A handle of the wrong type is reported to the
// error log and ignored. Unknown keys are reported to the error log.
func (e *Engine) SetConfigObject(key ConfigKey, value any) {
	switch key {
	case KeyOCSPCache:
		cache, ok := value.(OCSPCache)
		if !ok && value != nil {
			e.log.Error("configuration key %d expects an OCSPCache handle", key)
			return
		}
		e.conf.OCSPCache = cache
	case KeySessionCache:
		cache, ok := value.(SessionCache)
		if !ok && value != nil {
			e.log.Error("configuration key %d expects a SessionCache handle", key)
			return
		}
		e.conf.SessionCache = cache
	case KeyHPKPCache:
		cache, ok := value.(HPKPCache)
		if !ok && value != nil {
			e.log.Error("configuration key %d expects an HPKPCache handle", key)
			return
		}
		e.conf.HPKPCache = cache
	default:
		e.log.Error("unknown configuration key %d (maybe this config value should be of another type?)", key)
	}
}
