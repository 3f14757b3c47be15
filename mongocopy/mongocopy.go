// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package mongocopy copies every document of one collection into another.
package mongocopy

import (
	"context"

	"github.com/ccoveille/go-safecast/v2"
	"github.com/pkg/errors"
	"github.com/textcad/mongo-maint-tools/common/db"
	"github.com/textcad/mongo-maint-tools/common/log"
	"go.mongodb.org/mongo-driver/bson"
)

// MongoCopy is a container for the user-specified options and the
// connection used for running mongocopy.
type MongoCopy struct {
	Options

	// SessionProvider is used for connecting to the database
	SessionProvider *db.SessionProvider
}

// Result summarizes a copy.
type Result struct {
	Fetched     int
	TargetCount int64
}

// New connects to the server named by opts.
func New(ctx context.Context, opts Options) (*MongoCopy, error) {
	provider, err := db.NewSessionProvider(ctx, *opts.ToolOptions)
	if err != nil {
		return nil, errors.Wrap(err, "error connecting to host")
	}
	return &MongoCopy{Options: opts, SessionProvider: provider}, nil
}

// Close disconnects the server.
func (mc *MongoCopy) Close() {
	mc.SessionProvider.Close()
}

// Copy replaces the target collection's contents with the source's. The
// source is read into memory in full before the target is touched.
func (mc *MongoCopy) Copy(ctx context.Context) (Result, error) {
	var result Result

	source := mc.SessionProvider.DB(mc.SourceDB).Collection(mc.SourceCollection)
	docs, err := (&db.DeferredQuery{Coll: source, Filter: bson.D{}}).All(ctx)
	if err != nil {
		return result, errors.Wrapf(err, "error reading from %v", mc.SourceNamespace())
	}
	result.Fetched = len(docs)
	log.Logvf(log.Always, "fetched %v documents from %v", len(docs), mc.SourceNamespace())

	target := mc.SessionProvider.DB(mc.TargetDB).Collection(mc.TargetCollection)
	replaced, err := db.ReplaceCollection(ctx, target, docs)
	if replaced.Dropped {
		log.Logvf(log.Always, "dropped existing %v", mc.TargetNamespace())
	}
	if err != nil {
		return result, err
	}
	if len(docs) == 0 {
		log.Logvf(log.Always, "no documents to insert")
	} else {
		log.Logvf(log.DebugLow, "insert reported %v documents", replaced.Inserted)
	}

	count, err := (&db.DeferredQuery{Coll: target}).Count(ctx)
	if err != nil {
		return result, errors.Wrapf(err, "error counting documents in %v", mc.TargetNamespace())
	}
	result.TargetCount = count
	log.Logvf(log.Always, "inserted %v documents into %v", count, mc.TargetNamespace())

	if fetched := safecast.MustConvert[int64](result.Fetched); fetched != count {
		log.Logvf(log.Info, "target holds %v documents but %v were fetched", count, fetched)
	}
	return result, nil
}
