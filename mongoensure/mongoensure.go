// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package mongoensure creates the collections of the add-in database that
// do not exist yet.
package mongoensure

import (
	"context"
	"sort"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"
	"github.com/textcad/mongo-maint-tools/common/db"
	"github.com/textcad/mongo-maint-tools/common/log"
	"github.com/textcad/mongo-maint-tools/common/util"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// DefaultDatabase is the database whose collections are ensured.
const DefaultDatabase = "TaskPaneAddin"

// DesiredCollections lists the collections to ensure, in creation order.
var DesiredCollections = []string{"SW", "good_feedback", "runs", "steps", "run_feedback"}

// MarkerDocument returns the document seeded into a newly created collection.
func MarkerDocument(now time.Time) bson.D {
	return bson.D{
		{Key: "test", Value: "ok"},
		{Key: "createdAt", Value: now.UTC()},
	}
}

// MongoEnsure holds the options and connection of a mongoensure run.
type MongoEnsure struct {
	Options

	// SessionProvider is used for connecting to the database
	SessionProvider *db.SessionProvider

	// now is the clock used for marker documents
	now func() time.Time
}

// Result lists what a run did.
type Result struct {
	Existing []string
	Created  []string
}

// New connects to the server named by opts.
func New(ctx context.Context, opts Options) (*MongoEnsure, error) {
	log.Logvf(log.Always, "connecting to: %v", util.SanitizeURI(opts.ConnectionString))
	provider, err := db.NewSessionProvider(ctx, *opts.ToolOptions)
	if err != nil {
		return nil, errors.Wrap(err, "error connecting to host")
	}
	return &MongoEnsure{Options: opts, SessionProvider: provider, now: time.Now}, nil
}

// Close disconnects the server.
func (me *MongoEnsure) Close() {
	me.SessionProvider.Close()
}

// existingNames returns the lower-cased names of the database's collections.
func existingNames(ctx context.Context, database *mongo.Database) (mapset.Set[string], []string, error) {
	names, err := database.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, nil, errors.Wrapf(err, "error listing collections of %v", database.Name())
	}
	sort.Strings(names)

	set := mapset.NewThreadUnsafeSetWithSize[string](len(names))
	for _, name := range names {
		set.Add(strings.ToLower(name))
	}
	return set, names, nil
}

// createCollection creates name in database. It reports false without an
// error if another client created the collection after it was listed.
func createCollection(ctx context.Context, database *mongo.Database, name string) (bool, error) {
	err := database.CreateCollection(ctx, name)
	switch {
	case err == nil:
		return true, nil
	case db.IsNamespaceExists(err):
		return false, nil
	default:
		return false, errors.Wrapf(err, "error creating collection %v", name)
	}
}

// Ensure creates and seeds every desired collection that does not exist.
// Names are compared without regard to case. A failure stops the run;
// collections created before it remain.
func (me *MongoEnsure) Ensure(ctx context.Context) (Result, error) {
	var result Result

	session, err := me.SessionProvider.GetSession()
	if err != nil {
		return result, err
	}
	database := session.Database(me.DB)
	existing, names, err := existingNames(ctx, database)
	if err != nil {
		return result, err
	}
	log.Logvf(log.Always, "existing collections: %v", strings.Join(names, ", "))

	for _, name := range DesiredCollections {
		if existing.Contains(strings.ToLower(name)) {
			log.Logvf(log.Always, "collection '%v' already exists.", name)
			result.Existing = append(result.Existing, name)
			continue
		}

		log.Logvf(log.Always, "creating collection '%v'...", name)
		created, err := createCollection(ctx, database, name)
		if err != nil {
			return result, err
		}
		if !created {
			log.Logvf(log.Always, "collection '%v' already exists.", name)
			existing.Add(strings.ToLower(name))
			result.Existing = append(result.Existing, name)
			continue
		}
		if _, err := database.Collection(name).InsertOne(ctx, MarkerDocument(me.now())); err != nil {
			return result, errors.Wrapf(err, "error inserting marker document into %v", name)
		}
		existing.Add(strings.ToLower(name))
		result.Created = append(result.Created, name)
		log.Logvf(log.Always, "created and inserted test doc into '%v'.", name)
	}

	log.Logvf(log.Always, "done.")
	return result, nil
}
