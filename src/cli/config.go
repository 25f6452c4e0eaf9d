// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/H0llyW00dzZ/tls-client-engine/src/tlsengine"
	"gopkg.in/yaml.v3"
)

// configFormat represents supported configuration file formats.
type configFormat int

const (
	// configFormatJSON represents JSON configuration format (.json)
	configFormatJSON configFormat = iota
	// configFormatYAML represents YAML configuration format (.yaml, .yml)
	configFormatYAML
)

// Config maps a probe configuration file onto the engine's parameter
// block. Every field is optional; absent values keep the engine
// defaults. Supported file extensions: .json, .yaml, .yml
type Config struct {
	// SecureProtocol: protocol name or raw cipher priority string
	SecureProtocol string `json:"secureProtocol,omitempty" yaml:"secureProtocol,omitempty"`
	// CADirectory: root certificate directory, or "system"
	CADirectory string `json:"caDirectory,omitempty" yaml:"caDirectory,omitempty"`
	// CAFile: single-file trust anchor
	CAFile string `json:"caFile,omitempty" yaml:"caFile,omitempty"`
	// CertFile: client certificate for mutual TLS
	CertFile string `json:"certFile,omitempty" yaml:"certFile,omitempty"`
	// KeyFile: private key for the client certificate
	KeyFile string `json:"keyFile,omitempty" yaml:"keyFile,omitempty"`
	// CRLFile: certificate revocation list in PEM format
	CRLFile string `json:"crlFile,omitempty" yaml:"crlFile,omitempty"`
	// OCSPServer: fallback responder when certificates lack AIA
	OCSPServer string `json:"ocspServer,omitempty" yaml:"ocspServer,omitempty"`
	// ALPN: comma-separated protocol identifiers
	ALPN string `json:"alpn,omitempty" yaml:"alpn,omitempty"`

	// CheckCertificate: verify the peer certificate chain
	CheckCertificate *bool `json:"checkCertificate,omitempty" yaml:"checkCertificate,omitempty"`
	// CheckHostname: verify the certificate subject against the host
	CheckHostname *bool `json:"checkHostname,omitempty" yaml:"checkHostname,omitempty"`
	// OCSP: query responders for revocation status
	OCSP *bool `json:"ocsp,omitempty" yaml:"ocsp,omitempty"`
	// OCSPStapling: accept stapled OCSP responses
	OCSPStapling *bool `json:"ocspStapling,omitempty" yaml:"ocspStapling,omitempty"`
	// PrintInfo: print a handshake summary table
	PrintInfo bool `json:"printInfo,omitempty" yaml:"printInfo,omitempty"`

	// ConnectTimeoutMS: handshake bound in milliseconds
	ConnectTimeoutMS int `json:"connectTimeoutMs,omitempty" yaml:"connectTimeoutMs,omitempty"`
}

// detectConfigFormat determines the configuration file format based on file extension.
func detectConfigFormat(path string) (configFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return configFormatJSON, nil
	case ".yaml", ".yml":
		return configFormatYAML, nil
	}
	return 0, fmt.Errorf("unsupported config file extension: %s", filepath.Ext(path))
}

// LoadConfig reads and parses a probe configuration file.
func LoadConfig(path string) (*Config, error) {
	format, err := detectConfigFormat(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}

	var cfg Config
	switch format {
	case configFormatJSON:
		err = json.Unmarshal(data, &cfg)
	case configFormatYAML:
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("could not parse config file: %w", err)
	}

	return &cfg, nil
}

// Apply pushes the configured values into the engine through its
// key-indexed setter interface.
func (c *Config) Apply(eng *tlsengine.Engine) {
	setString := func(key tlsengine.ConfigKey, value string) {
		if value != "" {
			eng.SetConfigString(key, value)
		}
	}
	setBool := func(key tlsengine.ConfigKey, value *bool) {
		if value != nil {
			v := 0
			if *value {
				v = 1
			}
			eng.SetConfigInt(key, v)
		}
	}

	setString(tlsengine.KeySecureProtocol, c.SecureProtocol)
	setString(tlsengine.KeyCADirectory, c.CADirectory)
	setString(tlsengine.KeyCAFile, c.CAFile)
	setString(tlsengine.KeyCertFile, c.CertFile)
	setString(tlsengine.KeyKeyFile, c.KeyFile)
	setString(tlsengine.KeyCRLFile, c.CRLFile)
	setString(tlsengine.KeyOCSPServer, c.OCSPServer)
	setString(tlsengine.KeyALPN, c.ALPN)

	setBool(tlsengine.KeyCheckCertificate, c.CheckCertificate)
	setBool(tlsengine.KeyCheckHostname, c.CheckHostname)
	setBool(tlsengine.KeyOCSP, c.OCSP)
	setBool(tlsengine.KeyOCSPStapling, c.OCSPStapling)

	if c.PrintInfo {
		eng.SetConfigInt(tlsengine.KeyPrintInfo, 1)
	}
}
