// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package testutil implements functions for filtering and configuring tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/textcad/mongo-maint-tools/common/db"
	"github.com/textcad/mongo-maint-tools/common/options"
	"go.mongodb.org/mongo-driver/mongo"
)

const uriEnvVar = "TOOLS_TESTING_MONGOD"

// GetConnectionString returns the connection string for integration tests,
// from the environment or from a default host and port.
func GetConnectionString() string {
	if uri := os.Getenv(uriEnvVar); uri != "" {
		return uri
	}
	return fmt.Sprintf("mongodb://localhost:%v/", db.DefaultTestPort)
}

// GetToolOptions returns options pointing at the integration test server.
func GetToolOptions() (*options.ToolOptions, error) {
	opts := options.New("test", "", "", "", "")
	if err := opts.SetConnectionString(GetConnectionString()); err != nil {
		return nil, fmt.Errorf(
			"%#q from the %#q env var is not a valid connection string: %w",
			GetConnectionString(),
			uriEnvVar,
			err,
		)
	}
	return opts, nil
}

// GetBareSessionProvider returns a session provider from the environment or
// from a default host and port.
func GetBareSessionProvider() (*db.SessionProvider, *options.ToolOptions, error) {
	toolOptions, err := GetToolOptions()
	if err != nil {
		return nil, nil, err
	}

	sessionProvider, err := db.NewSessionProvider(context.Background(), *toolOptions)
	if err != nil {
		return nil, nil, err
	}

	return sessionProvider, toolOptions, nil
}

// GetBareSession returns a connected client, failing the test on error.
// The client is disconnected when the test ends.
func GetBareSession(t *testing.T) *mongo.Client {
	provider, _, err := GetBareSessionProvider()
	require.NoError(t, err, "should connect to the integration test server")
	t.Cleanup(provider.Close)

	session, err := provider.GetSession()
	require.NoError(t, err)
	return session
}

// SeedCollection drops coll and fills it with docs.
func SeedCollection(t *testing.T, coll *mongo.Collection, docs ...interface{}) {
	ctx := context.Background()
	require.NoError(t, coll.Drop(ctx))
	if len(docs) > 0 {
		_, err := coll.InsertMany(ctx, docs)
		require.NoError(t, err)
	}
}

// DropDatabase drops the named database when the test ends.
func DropDatabase(t *testing.T, client *mongo.Client, name string) {
	t.Cleanup(func() {
		_ = client.Database(name).Drop(context.Background())
	})
}
