// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package mongoimport replaces the contents of a collection with the
// documents of a JSON array file.
package mongoimport

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/textcad/mongo-maint-tools/common/bsonutil"
	"github.com/textcad/mongo-maint-tools/common/db"
	"github.com/textcad/mongo-maint-tools/common/log"
	"go.mongodb.org/mongo-driver/bson"
)

// MongoImport is a container for the user-specified options and
// internal state used for running mongoimport.
type MongoImport struct {
	Options

	// SessionProvider is used for connecting to the database
	SessionProvider *db.SessionProvider
}

// ReadDocuments reads and parses the whole input file.
func ReadDocuments(path string) ([]bson.D, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading %v", path)
	}
	docs, err := bsonutil.ParseJSONArray(data)
	if err != nil {
		return nil, errors.WithMessagef(err, "error parsing %v", path)
	}
	return docs, nil
}

// New connects to the server named by opts.
func New(ctx context.Context, opts Options) (*MongoImport, error) {
	provider, err := db.NewSessionProvider(ctx, *opts.ToolOptions)
	if err != nil {
		return nil, errors.Wrap(err, "error connecting to host")
	}
	return &MongoImport{Options: opts, SessionProvider: provider}, nil
}

// Close disconnects the server.
func (imp *MongoImport) Close() {
	imp.SessionProvider.Close()
}

// ImportDocuments replaces the target collection's contents with docs and
// returns the number of documents the collection holds afterwards.
func (imp *MongoImport) ImportDocuments(ctx context.Context, docs []bson.D) (int64, error) {
	log.Logvf(log.Always, "connected; replacing collection '%v' in DB '%v' with %v documents",
		imp.Collection, imp.DB, len(docs))

	coll := imp.SessionProvider.DB(imp.DB).Collection(imp.Collection)
	replaced, err := db.ReplaceCollection(ctx, coll, docs)
	if err != nil {
		return 0, err
	}
	log.Logvf(log.DebugLow, "dropped=%v, inserted %v documents into %v",
		replaced.Dropped, replaced.Inserted, imp.Namespace())

	count, err := (&db.DeferredQuery{Coll: coll}).Count(ctx)
	if err != nil {
		return 0, errors.Wrapf(err, "error counting documents in %v", imp.Namespace())
	}
	log.Logvf(log.Always, "import complete. document count in collection: %v", count)
	return count, nil
}
