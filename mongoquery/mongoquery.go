// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package mongoquery prints the first documents of a collection.
package mongoquery

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/textcad/mongo-maint-tools/common/bsonutil"
	"github.com/textcad/mongo-maint-tools/common/db"
	"github.com/textcad/mongo-maint-tools/common/log"
	"go.mongodb.org/mongo-driver/bson"
)

// MongoQuery holds the options and connection of a mongoquery run.
type MongoQuery struct {
	Options

	// SessionProvider is used for connecting to the database
	SessionProvider *db.SessionProvider
}

// New connects to the server named by opts.
func New(ctx context.Context, opts Options) (*MongoQuery, error) {
	provider, err := db.NewSessionProvider(ctx, *opts.ToolOptions)
	if err != nil {
		return nil, errors.Wrap(err, "error connecting to host")
	}
	return &MongoQuery{Options: opts, SessionProvider: provider}, nil
}

// Close disconnects the server.
func (mq *MongoQuery) Close() {
	mq.SessionProvider.Close()
}

// Query fetches up to Limit documents in natural order and writes them to
// out. It returns the number of documents written.
func (mq *MongoQuery) Query(ctx context.Context, out io.Writer) (int, error) {
	coll := mq.SessionProvider.DB(mq.DB).Collection(mq.Collection)
	docs, err := (&db.DeferredQuery{Coll: coll, Limit: mq.Limit}).All(ctx)
	if err != nil {
		return 0, errors.Wrapf(err, "error querying %v", mq.Namespace())
	}

	log.Logvf(log.Always, "fetched %v document(s) from %v (limit=%v)", len(docs), mq.Namespace(), mq.Limit)
	if err := WriteDocuments(out, docs); err != nil {
		return 0, err
	}
	return len(docs), nil
}

// WriteDocuments writes each document as indented relaxed extended JSON
// under a numbered header. A document that cannot be indented is written
// on one line.
func WriteDocuments(out io.Writer, docs []bson.D) error {
	for i, doc := range docs {
		var err error
		if pretty, mErr := bsonutil.MarshalIndentedExtJSON(doc); mErr == nil {
			_, err = fmt.Fprintf(out, "--- Document %v ---\n%s\n\n", i+1, pretty)
		} else {
			log.Logvf(log.DebugLow, "could not indent document %v: %v", i+1, mErr)
			_, err = fmt.Fprintf(out, "--- Document %v (raw) ---\n%v\n\n", i+1, bsonutil.CreateExtJSONString(doc))
		}
		if err != nil {
			return errors.Wrap(err, "error writing output")
		}
	}
	return nil
}
