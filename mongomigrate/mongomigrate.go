// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package mongomigrate merges legacy feedback collections into run_feedback.
package mongomigrate

import (
	"context"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/textcad/mongo-maint-tools/common/bsonutil"
	"github.com/textcad/mongo-maint-tools/common/db"
	"github.com/textcad/mongo-maint-tools/common/log"
	"github.com/textcad/mongo-maint-tools/common/util"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	// DefaultDatabase is used when no database is named.
	DefaultDatabase = "TaskPaneAddin"

	// TargetCollection receives the merged documents.
	TargetCollection = "run_feedback"

	// SourceField is added to every merged document.
	SourceField = "_source_collection"

	bulkDocLimit = 1000
)

// SourceCandidates are the legacy collections, in merge order. Names match
// exactly.
var SourceCandidates = []string{"Feedback", "feedback2", "feedback", "Feedback2"}

// DedupeFields identify a feedback entry across collections.
var DedupeFields = []string{"run_key", "ts", "thumb", "comment"}

// TargetIndexes are created on the target after a real run.
var TargetIndexes = []db.IndexDocument{
	{Key: bson.D{{Key: "run_key", Value: 1}}},
	{Key: bson.D{{Key: "ts", Value: -1}}},
	{Key: bson.D{{Key: "installation_id", Value: 1}}},
	{Key: bson.D{{Key: "event_id", Value: 1}}, Unique: true, Sparse: true},
}

// DedupeFilter matches documents equal to doc on every dedupe field. A
// field doc lacks matches null, which also matches a missing field.
func DedupeFilter(doc bson.D) bson.D {
	return lo.Map(DedupeFields, func(field string, _ int) bson.E {
		return bson.E{Key: field, Value: bsonutil.ValueOrNull(field, doc)}
	})
}

// MergedDocument returns doc annotated with its source collection. The _id
// is left out: a matched document keeps its own and an upsert gets a new one.
func MergedDocument(doc bson.D, source string) bson.D {
	merged := lo.Filter(doc, func(e bson.E, _ int) bool { return e.Key != "_id" })
	return bsonutil.SetValue(SourceField, source, merged)
}

// SourceStats counts what happened to one source collection.
type SourceStats struct {
	Source    string
	Processed int64
	Upserted  int64
	Modified  int64
	// WouldInsert counts the documents a dry run found no match for.
	WouldInsert int64
}

// MongoMigrate holds the options and connection of a migration.
type MongoMigrate struct {
	Options

	// SessionProvider is used for connecting to the database
	SessionProvider *db.SessionProvider
}

// New connects to the server named by opts.
func New(ctx context.Context, opts Options) (*MongoMigrate, error) {
	log.Logvf(log.Always, "connecting to: %v, DB: %v, dryRun=%v",
		util.SanitizeURI(opts.ConnectionString), opts.DB, opts.DryRun)
	provider, err := db.NewSessionProvider(ctx, *opts.ToolOptions)
	if err != nil {
		return nil, errors.Wrap(err, "error connecting to host")
	}
	return &MongoMigrate{Options: opts, SessionProvider: provider}, nil
}

// Close disconnects the server.
func (mm *MongoMigrate) Close() {
	mm.SessionProvider.Close()
}

// Sources returns the candidate collections present in the database.
func (mm *MongoMigrate) Sources(ctx context.Context) ([]string, error) {
	names, err := mm.SessionProvider.DB(mm.DB).ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, errors.Wrapf(err, "error listing collections of %v", mm.DB)
	}
	existing := mapset.NewThreadUnsafeSet(names...)
	return lo.Filter(SourceCandidates, func(name string, _ int) bool {
		return existing.Contains(name)
	}), nil
}

// Migrate merges every present source into the target and, unless this is
// a dry run, creates the target's indexes.
func (mm *MongoMigrate) Migrate(ctx context.Context) ([]SourceStats, error) {
	sources, err := mm.Sources(ctx)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		log.Logvf(log.Always, "no source feedback collections found (Feedback / feedback2). Nothing to do.")
		return nil, nil
	}

	target := mm.SessionProvider.DB(mm.DB).Collection(TargetCollection)
	allStats := make([]SourceStats, 0, len(sources))
	for _, source := range sources {
		stats, err := mm.mergeSource(ctx, source, target)
		if err != nil {
			return allStats, err
		}
		allStats = append(allStats, stats)
	}

	if !mm.DryRun {
		log.Logvf(log.Always, "creating recommended indexes on %v...", TargetCollection)
		if failures := db.CreateIndexes(ctx, target, TargetIndexes); failures == 0 {
			log.Logvf(log.Always, "indexes created.")
		}
	}

	log.Logvf(log.Always, "migration completed.")
	return allStats, nil
}

func (mm *MongoMigrate) mergeSource(ctx context.Context, source string, target *mongo.Collection) (SourceStats, error) {
	stats := SourceStats{Source: source}
	src := mm.SessionProvider.DB(mm.DB).Collection(source)

	count, err := (&db.DeferredQuery{Coll: src}).Count(ctx)
	if err != nil {
		return stats, errors.Wrapf(err, "error counting documents in %v", source)
	}
	log.Logvf(log.Always, "found %v documents in %v -> will merge into %v", count, source, TargetCollection)

	cursor, err := (&db.DeferredQuery{Coll: src}).Iter(ctx)
	if err != nil {
		return stats, errors.Wrapf(err, "error reading %v", source)
	}
	defer cursor.Close(ctx)

	inserter := db.NewOrderedBufferedBulkInserter(ctx, target, bulkDocLimit).SetUpsert(true)
	addResult := func(result *mongo.BulkWriteResult) {
		if result != nil {
			stats.Upserted += result.UpsertedCount
			stats.Modified += result.ModifiedCount
		}
	}

	for cursor.Next(ctx) {
		var doc bson.D
		if err := cursor.Decode(&doc); err != nil {
			return stats, errors.Wrapf(err, "error decoding document from %v", source)
		}
		filter := DedupeFilter(doc)
		doc = MergedDocument(doc, source)

		if mm.DryRun {
			exists, err := (&db.DeferredQuery{Coll: target, Filter: filter}).Exists(ctx)
			if err != nil {
				return stats, errors.Wrapf(err, "error looking up document in %v", TargetCollection)
			}
			if !exists {
				stats.WouldInsert++
				log.Logvf(log.Always, "[DRY] would insert doc from %v run_key=%v",
					source, formatValue(bsonutil.ValueOrNull("run_key", doc)))
			}
		} else {
			result, err := inserter.Replace(filter, doc)
			addResult(result)
			if err != nil {
				return stats, errors.Wrapf(err, "error merging documents into %v", TargetCollection)
			}
		}
		stats.Processed++
	}
	if err := cursor.Err(); err != nil {
		return stats, errors.Wrapf(err, "error reading %v", source)
	}

	result, err := inserter.Flush()
	addResult(result)
	if err != nil {
		return stats, errors.Wrapf(err, "error merging documents into %v", TargetCollection)
	}

	log.Logvf(log.Always, "processed %v docs from %v", stats.Processed, source)
	log.Logvf(log.Info, "%v: %v upserted, %v replaced", source, stats.Upserted, stats.Modified)
	return stats, nil
}

func formatValue(value interface{}) string {
	if value == nil {
		return "null"
	}
	return fmt.Sprintf("%v", value)
}
