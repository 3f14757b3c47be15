// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package db

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	mopt "go.mongodb.org/mongo-driver/mongo/options"
)

// DeferredQuery represents a deferred query.
type DeferredQuery struct {
	Coll   *mongo.Collection
	Filter interface{}
	// Limit caps the number of documents returned; zero means no limit.
	Limit int64
}

func (q *DeferredQuery) filter() interface{} {
	if q.Filter == nil {
		return bson.D{}
	}
	return q.Filter
}

// Count issues a CountDocuments command. The count is always exact, so it can
// be used to confirm the outcome of a write.
func (q *DeferredQuery) Count(ctx context.Context) (int64, error) {
	return q.Coll.CountDocuments(ctx, q.filter(), mopt.Count())
}

// Iter executes a find query and returns a cursor.
func (q *DeferredQuery) Iter(ctx context.Context) (*mongo.Cursor, error) {
	opts := mopt.Find()
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}
	return q.Coll.Find(ctx, q.filter(), opts)
}

// All executes the query and loads every result into memory, in the order
// the server returns them.
func (q *DeferredQuery) All(ctx context.Context) ([]bson.D, error) {
	cursor, err := q.Iter(ctx)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	docs := []bson.D{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// Exists reports whether the query matches at least one document.
func (q *DeferredQuery) Exists(ctx context.Context) (bool, error) {
	err := q.Coll.FindOne(ctx, q.filter()).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return err == nil, err
}
