// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package db

import (
	"context"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/textcad/mongo-maint-tools/common/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ReplaceResult describes what ReplaceCollection did.
type ReplaceResult struct {
	// Dropped is true if the drop phase succeeded. A collection that did not
	// exist counts as dropped.
	Dropped bool

	// DropErr holds the error absorbed by the drop phase, if any.
	DropErr error

	// Inserted is the number of documents the insert phase reported.
	Inserted int
}

// DropCollection drops coll and absorbs any error. It is the first phase of
// ReplaceCollection. Whatever error the server returned is handed back so
// the caller may log it, but it is never meant to fail the caller.
func DropCollection(ctx context.Context, coll *mongo.Collection) (dropped bool, absorbed error) {
	err := coll.Drop(ctx)
	switch {
	case err == nil:
		return true, nil
	case IsNsNotFound(err):
		return true, nil
	default:
		log.Logvf(log.DebugLow, "ignoring error dropping %v: %v", coll.Database().Name()+"."+coll.Name(), err)
		return false, err
	}
}

// ReplaceCollection replaces the contents of coll with docs in two phases.
//
// Phase one drops the collection and absorbs any failure: the collection may
// legitimately not exist yet. Phase two inserts every document in a single
// InsertMany and its error is returned. An empty docs skips phase two, which
// leaves the collection dropped.
//
// A phase two failure leaves the collection in whatever state the server
// reached; nothing is rolled back.
func ReplaceCollection(ctx context.Context, coll *mongo.Collection, docs []bson.D) (ReplaceResult, error) {
	var result ReplaceResult
	result.Dropped, result.DropErr = DropCollection(ctx, coll)

	if len(docs) == 0 {
		return result, nil
	}

	res, err := coll.InsertMany(ctx, lo.Map(docs, func(doc bson.D, _ int) interface{} { return doc }))
	if res != nil {
		result.Inserted = len(res.InsertedIDs)
	}
	if err != nil {
		return result, errors.Wrapf(err, "error inserting documents into %v.%v", coll.Database().Name(), coll.Name())
	}
	return result, nil
}
