// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package mongoensure

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/textcad/mongo-maint-tools/common/db"
	"github.com/textcad/mongo-maint-tools/common/testtype"
	"github.com/textcad/mongo-maint-tools/common/testutil"
	"github.com/textcad/mongo-maint-tools/common/util"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	testDB         = "mongoensure_test"
	unreachableURI = "mongodb://localhost:1/?serverSelectionTimeoutMS=100"
)

func TestParseOptions(t *testing.T) {
	testtype.SkipUnlessTestType(t, testtype.UnitTestType)

	t.Run("a missing uri is a usage error", func(t *testing.T) {
		_, err := ParseOptions([]string{}, "", "")
		var usageErr util.UsageError
		require.ErrorAs(t, err, &usageErr)
		assert.Equal(t, 2, ExitCodes.For(err))
	})

	t.Run("the uri targets the add-in database without a Stable API", func(t *testing.T) {
		opts, err := ParseOptions([]string{unreachableURI}, "", "")
		require.NoError(t, err)
		assert.Equal(t, DefaultDatabase, opts.DB)
		assert.Empty(t, opts.ServerAPIVersion)
	})

	t.Run("an unreachable server is a failure", func(t *testing.T) {
		opts, err := ParseOptions([]string{unreachableURI}, "", "")
		require.NoError(t, err)
		_, err = New(context.Background(), opts)
		require.Error(t, err)
		assert.Equal(t, 1, ExitCodes.For(err))
	})
}

func TestMarkerDocument(t *testing.T) {
	testtype.SkipUnlessTestType(t, testtype.UnitTestType)

	local := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("east", 3600))
	doc := MarkerDocument(local)
	require.Len(t, doc, 2)
	assert.Equal(t, bson.E{Key: "test", Value: "ok"}, doc[0])
	assert.Equal(t, "createdAt", doc[1].Key)
	assert.Equal(t, time.UTC, doc[1].Value.(time.Time).Location())
	assert.True(t, local.Equal(doc[1].Value.(time.Time)))
}

func TestEnsure(t *testing.T) {
	testtype.SkipUnlessTestType(t, testtype.IntegrationTestType)

	ctx := context.Background()
	client := testutil.GetBareSession(t)
	database := client.Database(testDB)

	newEnsurer := func() *MongoEnsure {
		opts, err := ParseOptions([]string{testutil.GetConnectionString()}, "", "")
		require.NoError(t, err)
		opts.DB = testDB
		ensurer, err := New(ctx, opts)
		require.NoError(t, err)
		t.Cleanup(ensurer.Close)
		return ensurer
	}

	Convey("With a database holding some of the collections", t, func() {
		So(database.Drop(ctx), ShouldBeNil)
		So(database.CreateCollection(ctx, "runs"), ShouldBeNil)
		// a different case counts as present
		So(database.CreateCollection(ctx, "sw"), ShouldBeNil)

		Convey("only the missing ones are created and seeded", func() {
			fixed := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
			ensurer := newEnsurer()
			ensurer.now = func() time.Time { return fixed }

			result, err := ensurer.Ensure(ctx)
			So(err, ShouldBeNil)
			So(result.Existing, ShouldResemble, []string{"SW", "runs"})
			So(result.Created, ShouldResemble, []string{"good_feedback", "steps", "run_feedback"})

			for _, name := range result.Created {
				docs, err := (&db.DeferredQuery{Coll: database.Collection(name)}).All(ctx)
				So(err, ShouldBeNil)
				So(len(docs), ShouldEqual, 1)
				So(docs[0][1].Value, ShouldEqual, "ok")
				So(docs[0][2].Value, ShouldEqual, primitive.NewDateTimeFromTime(fixed))
			}

			for _, name := range []string{"runs", "sw"} {
				n, err := (&db.DeferredQuery{Coll: database.Collection(name)}).Count(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 0)
			}

			Convey("and a second run creates nothing", func() {
				result, err := newEnsurer().Ensure(ctx)
				So(err, ShouldBeNil)
				So(result.Created, ShouldBeEmpty)
				So(len(result.Existing), ShouldEqual, len(DesiredCollections))

				n, err := (&db.DeferredQuery{Coll: database.Collection("steps")}).Count(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 1)
			})
		})

		Convey("a collection created after listing is reported as existing", func() {
			created, err := createCollection(ctx, database, "runs")
			So(err, ShouldBeNil)
			So(created, ShouldBeFalse)

			created, err = createCollection(ctx, database, "steps")
			So(err, ShouldBeNil)
			So(created, ShouldBeTrue)
		})

		Convey("a closed connection is a failure", func() {
			ensurer := newEnsurer()
			ensurer.Close()
			_, err := ensurer.Ensure(ctx)
			So(err, ShouldNotBeNil)
			So(ExitCodes.For(err), ShouldEqual, 1)
		})

		Reset(func() {
			So(database.Drop(ctx), ShouldBeNil)
		})
	})
}
