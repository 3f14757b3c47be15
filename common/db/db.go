// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package db implements the connection to MongoDB shared by the maintenance
// tools, along with the few collection-level operations they build on.
package db

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/textcad/mongo-maint-tools/common/log"
	"github.com/textcad/mongo-maint-tools/common/options"
	"github.com/textcad/mongo-maint-tools/common/util"
	"go.mongodb.org/mongo-driver/mongo"
	mopt "go.mongodb.org/mongo-driver/mongo/options"
)

// Default port for integration tests
const (
	DefaultTestPort = "33333"
)

// Used to manage database sessions
type SessionProvider struct {
	sync.Mutex

	// the master client used for operations
	client *mongo.Client
}

// Returns a mongo.Client connected to the database server for which the
// session provider is configured.
func (sp *SessionProvider) GetSession() (*mongo.Client, error) {
	sp.Lock()
	defer sp.Unlock()

	if sp.client == nil {
		return nil, errors.New("SessionProvider already closed")
	}

	return sp.client, nil
}

// Close closes the master session in the connection pool
func (sp *SessionProvider) Close() {
	sp.Lock()
	defer sp.Unlock()
	if sp.client != nil {
		_ = sp.client.Disconnect(context.Background())
		sp.client = nil
	}
}

// DB provides a database with the default read preference
func (sp *SessionProvider) DB(name string) *mongo.Database {
	return sp.client.Database(name)
}

// NewSessionProvider constructs a session provider, including a connected
// client. The server is pinged so that an unreachable host or bad
// credentials are reported here rather than by the first operation.
func NewSessionProvider(ctx context.Context, opts options.ToolOptions) (*SessionProvider, error) {
	clientopt, err := configureClient(opts)
	if err != nil {
		return nil, fmt.Errorf("error configuring the connector: %v", err)
	}

	log.Logvf(log.DebugLow, "connecting to %v", util.SanitizeURI(opts.ConnectionString))
	client, err := mongo.Connect(ctx, clientopt)
	if err != nil {
		return nil, err
	}
	err = client.Ping(ctx, nil)
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("could not connect to server: %v", err)
	}

	// create the provider
	return &SessionProvider{client: client}, nil
}

// configure the client according to the connection string and the provided
// ToolOptions, with ToolOptions having precedence.
func configureClient(opts options.ToolOptions) (*mopt.ClientOptions, error) {
	if opts.URI == nil || opts.URI.ConnectionString == "" {
		return nil, errors.New("no connection string given")
	}

	clientopt := mopt.Client().ApplyURI(opts.URI.ConnectionString)
	if err := clientopt.Validate(); err != nil {
		return nil, err
	}

	if opts.AppName != "" && opts.ConnString.AppName == "" {
		clientopt.SetAppName(opts.AppName)
	}

	if opts.ServerAPIVersion != "" {
		clientopt.SetServerAPIOptions(
			mopt.ServerAPI(mopt.ServerAPIVersion(opts.ServerAPIVersion)),
		)
	}

	// A password from the config file or the terminal prompt fills in the
	// credential the connection string started.
	if clientopt.Auth != nil && opts.Password != "" && !clientopt.Auth.PasswordSet {
		clientopt.Auth.Password = opts.Password
		clientopt.Auth.PasswordSet = true
	}

	if opts.TLS.IsSet() {
		tlsConfig, err := newTLSConfig(opts.TLS)
		if err != nil {
			return nil, fmt.Errorf("error configuring client, %v", err)
		}
		clientopt.SetTLSConfig(tlsConfig)
	}

	return clientopt, nil
}
