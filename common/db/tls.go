// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package db

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"strings"

	"github.com/textcad/mongo-maint-tools/common/options"
	"github.com/youmark/pkcs8"
)

// newTLSConfig builds the client TLS configuration from the settings of the
// config file.
func newTLSConfig(settings *options.TLS) (*tls.Config, error) {
	tlsConfig := &tls.Config{}
	if settings.Insecure {
		tlsConfig.InsecureSkipVerify = true
	}

	if settings.CertificateKeyFile != "" {
		if _, err := addClientCertFromFile(tlsConfig, settings.CertificateKeyFile, settings.CertificateKeyFilePassword); err != nil {
			return nil, fmt.Errorf("can't load client certificate: %v", err)
		}
	}
	if settings.CAFile != "" {
		if err := addCACertsFromFile(tlsConfig, settings.CAFile); err != nil {
			return nil, fmt.Errorf("can't load CA file: %v", err)
		}
	}

	return tlsConfig, nil
}

// addClientCertFromFile adds a client certificate to the configuration given a path to the
// containing file and returns the certificate's subject name.
func addClientCertFromFile(cfg *tls.Config, clientFile, keyPassword string) (string, error) {
	data, err := os.ReadFile(clientFile)
	if err != nil {
		return "", err
	}

	return addClientCertFromBytes(cfg, data, keyPassword)
}

// addClientCertFromBytes adds a client certificate held in PEM data to the
// configuration and returns the certificate's subject name. PKCS #8
// encrypted keys are decrypted with keyPasswd.
func addClientCertFromBytes(cfg *tls.Config, data []byte, keyPasswd string) (string, error) {
	var currentBlock *pem.Block
	var certBlock, certDecodedBlock, keyBlock []byte

	remaining := data
	start := 0
	for {
		currentBlock, remaining = pem.Decode(remaining)
		if currentBlock == nil {
			break
		}

		if currentBlock.Type == "CERTIFICATE" {
			certBlock = data[start : len(data)-len(remaining)]
			certDecodedBlock = currentBlock.Bytes
			start += len(certBlock)
		} else if strings.HasSuffix(currentBlock.Type, "PRIVATE KEY") {
			if currentBlock.Type == "ENCRYPTED PRIVATE KEY" {
				if keyPasswd == "" {
					return "", fmt.Errorf("no password provided to decrypt private key")
				}

				// The pkcs8 package only handles the PKCS #5 v2.0 scheme.
				decrypted, err := pkcs8.ParsePKCS8PrivateKey(currentBlock.Bytes, []byte(keyPasswd))
				if err != nil {
					return "", err
				}
				keyBytes, err := x509.MarshalPKCS8PrivateKey(decrypted)
				if err != nil {
					return "", err
				}

				var encoded bytes.Buffer
				if err := pem.Encode(&encoded, &pem.Block{Type: "PRIVATE KEY", Bytes: keyBytes}); err != nil {
					return "", err
				}
				keyBlock = encoded.Bytes()
				start = len(data) - len(remaining)
			} else {
				keyBlock = data[start : len(data)-len(remaining)]
				start += len(keyBlock)
			}
		}
	}

	if len(certBlock) == 0 {
		return "", fmt.Errorf("failed to find CERTIFICATE")
	}
	if len(keyBlock) == 0 {
		return "", fmt.Errorf("failed to find PRIVATE KEY")
	}

	cert, err := tls.X509KeyPair(certBlock, keyBlock)
	if err != nil {
		return "", err
	}

	cfg.Certificates = append(cfg.Certificates, cert)

	// The documentation for the tls.X509KeyPair indicates that the Leaf certificate is not
	// retained.
	crt, err := x509.ParseCertificate(certDecodedBlock)
	if err != nil {
		return "", err
	}

	return crt.Subject.String(), nil
}

// addCACertsFromFile adds root CA certificate and all the intermediate certificates in the same file to the configuration given a path
// to the containing file.
func addCACertsFromFile(cfg *tls.Config, file string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	if cfg.RootCAs == nil {
		cfg.RootCAs = x509.NewCertPool()
	}

	if !cfg.RootCAs.AppendCertsFromPEM(data) {
		return fmt.Errorf("SSL trusted server certificates file does not contain any valid certificates. File: `%v`", file)
	}
	return nil
}
