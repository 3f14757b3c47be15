// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package db

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/textcad/mongo-maint-tools/common/options"
	"github.com/textcad/mongo-maint-tools/common/testtype"
	"github.com/youmark/pkcs8"
)

const testKeyPassword = "correct horse"

// generateClientPEM returns a self-signed certificate followed by its key.
// When encrypt is set the key is a PKCS #8 encrypted block.
func generateClientPEM(t *testing.T, encrypt bool) []byte {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "client", Organization: []string{"Tools"}},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, pem.Encode(&out, &pem.Block{Type: "CERTIFICATE", Bytes: der}))

	if encrypt {
		keyDER, err := pkcs8.MarshalPrivateKey(key, []byte(testKeyPassword), nil)
		require.NoError(t, err)
		require.NoError(t, pem.Encode(&out, &pem.Block{Type: "ENCRYPTED PRIVATE KEY", Bytes: keyDER}))
	} else {
		keyDER, err := x509.MarshalPKCS8PrivateKey(key)
		require.NoError(t, err)
		require.NoError(t, pem.Encode(&out, &pem.Block{Type: "PRIVATE KEY", Bytes: keyDER}))
	}
	return out.Bytes()
}

func TestAddClientCertFromBytes(t *testing.T) {
	testtype.SkipUnlessTestType(t, testtype.UnitTestType)

	t.Run("unencrypted key", func(t *testing.T) {
		cfg := &tls.Config{}
		subject, err := addClientCertFromBytes(cfg, generateClientPEM(t, false), "")
		require.NoError(t, err)
		assert.Contains(t, subject, "CN=client")
		assert.Len(t, cfg.Certificates, 1)
	})

	t.Run("encrypted key with its password", func(t *testing.T) {
		cfg := &tls.Config{}
		subject, err := addClientCertFromBytes(cfg, generateClientPEM(t, true), testKeyPassword)
		require.NoError(t, err)
		assert.Contains(t, subject, "O=Tools")
		assert.Len(t, cfg.Certificates, 1)
	})

	t.Run("encrypted key without a password", func(t *testing.T) {
		_, err := addClientCertFromBytes(&tls.Config{}, generateClientPEM(t, true), "")
		assert.ErrorContains(t, err, "no password provided")
	})

	t.Run("encrypted key with the wrong password", func(t *testing.T) {
		_, err := addClientCertFromBytes(&tls.Config{}, generateClientPEM(t, true), "wrong")
		assert.Error(t, err)
	})

	t.Run("no certificate", func(t *testing.T) {
		_, err := addClientCertFromBytes(&tls.Config{}, []byte("not pem"), "")
		assert.ErrorContains(t, err, "failed to find CERTIFICATE")
	})
}

func TestNewTLSConfig(t *testing.T) {
	testtype.SkipUnlessTestType(t, testtype.UnitTestType)

	dir := t.TempDir()
	clientFile := filepath.Join(dir, "client.pem")
	data := generateClientPEM(t, true)
	require.NoError(t, os.WriteFile(clientFile, data, 0o600))

	// The certificate block alone is a valid CA bundle.
	block, _ := pem.Decode(data)
	caFile := filepath.Join(dir, "ca.pem")
	require.NoError(t, os.WriteFile(caFile, pem.EncodeToMemory(block), 0o600))

	cfg, err := newTLSConfig(&options.TLS{
		CertificateKeyFile:         clientFile,
		CertificateKeyFilePassword: testKeyPassword,
		CAFile:                     caFile,
	})
	require.NoError(t, err)
	assert.Len(t, cfg.Certificates, 1)
	assert.NotNil(t, cfg.RootCAs)
	assert.False(t, cfg.InsecureSkipVerify)

	emptyCA := filepath.Join(dir, "empty.pem")
	require.NoError(t, os.WriteFile(emptyCA, []byte("nothing here"), 0o600))
	_, err = newTLSConfig(&options.TLS{CAFile: emptyCA})
	assert.ErrorContains(t, err, "does not contain any valid certificates")
}
