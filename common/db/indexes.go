// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package db

import (
	"context"

	"github.com/samber/lo"
	"github.com/textcad/mongo-maint-tools/common/bsonutil"
	"github.com/textcad/mongo-maint-tools/common/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IndexDocument holds information about a collection's index.
type IndexDocument struct {
	Key    bson.D `bson:"key"`
	Unique bool   `bson:"unique,omitempty"`
	Sparse bool   `bson:"sparse,omitempty"`
}

// Model converts the index to the driver's model. The server picks the name.
func (idx IndexDocument) Model() mongo.IndexModel {
	opts := options.Index()
	if idx.Unique {
		opts.SetUnique(true)
	}
	if idx.Sparse {
		opts.SetSparse(true)
	}
	return mongo.IndexModel{Keys: idx.Key, Options: opts}
}

// GetIndexes returns the indexes of coll.
func GetIndexes(ctx context.Context, coll *mongo.Collection) ([]IndexDocument, error) {
	cursor, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	var indexes []IndexDocument
	if err := cursor.All(ctx, &indexes); err != nil {
		return nil, err
	}
	return indexes, nil
}

// CreateIndexes creates each index in turn, skipping those whose keys match
// an existing index. A failure is logged and does not stop the remaining
// indexes; the number of failures is returned.
func CreateIndexes(ctx context.Context, coll *mongo.Collection, indexes []IndexDocument) int {
	existing, err := GetIndexes(ctx, coll)
	if err != nil && !IsNsNotFound(err) {
		log.Logvf(log.DebugLow, "could not list indexes of %v: %v", coll.Name(), err)
	}

	failures := 0
	for _, idx := range indexes {
		if lo.ContainsBy(existing, func(e IndexDocument) bool {
			return bsonutil.IsIndexKeysEqual(e.Key, idx.Key)
		}) {
			log.Logvf(log.Info, "index %v already exists on %v", bsonutil.CreateExtJSONString(idx.Key), coll.Name())
			continue
		}

		name, err := coll.Indexes().CreateOne(ctx, idx.Model())
		if err != nil {
			log.Logvf(log.Always, "index creation error: %v", err)
			failures++
			continue
		}
		log.Logvf(log.Info, "created index %v on %v", name, coll.Name())
	}
	return failures
}
