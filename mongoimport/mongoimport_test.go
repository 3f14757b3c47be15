// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package mongoimport

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/textcad/mongo-maint-tools/common/db"
	"github.com/textcad/mongo-maint-tools/common/testtype"
	"github.com/textcad/mongo-maint-tools/common/testutil"
	"github.com/textcad/mongo-maint-tools/common/util"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	testDB         = "mongoimport_test"
	testCollection = "imported"
	unreachableURI = "mongodb://localhost:1/?serverSelectionTimeoutMS=100"
)

func writeFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "input.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseOptions(t *testing.T) {
	testtype.SkipUnlessTestType(t, testtype.UnitTestType)

	path := writeFile(t, "[]")

	t.Run("too few arguments is a usage error", func(t *testing.T) {
		_, err := ParseOptions([]string{unreachableURI, "db", "coll"}, "", "")
		var usageErr util.UsageError
		require.ErrorAs(t, err, &usageErr)
		assert.Equal(t, 1, ExitCodes.For(err))
	})

	t.Run("a missing file is reported before connecting", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "missing.json")
		_, err := ParseOptions([]string{unreachableURI, "db", "coll", missing}, "", "")
		require.Error(t, err)
		assert.Equal(t, "file not found: "+missing, err.Error())
		assert.Equal(t, 2, ExitCodes.For(err))
	})

	t.Run("a directory is not a file", func(t *testing.T) {
		_, err := ParseOptions([]string{unreachableURI, "db", "coll", t.TempDir()}, "", "")
		assert.Equal(t, 2, ExitCodes.For(err))
	})

	t.Run("four arguments bind in order", func(t *testing.T) {
		opts, err := ParseOptions([]string{unreachableURI, "db", "coll", path}, "", "")
		require.NoError(t, err)
		assert.Equal(t, "db.coll", opts.Namespace())
		assert.Equal(t, path, opts.File)
		assert.Equal(t, "1", opts.ServerAPIVersion)
	})

	t.Run("an unreachable server is a generic failure", func(t *testing.T) {
		opts, err := ParseOptions([]string{unreachableURI, "db", "coll", path}, "", "")
		require.NoError(t, err)
		_, err = New(context.Background(), opts)
		require.Error(t, err)
		assert.Equal(t, 3, ExitCodes.For(err))
	})
}

func TestReadDocuments(t *testing.T) {
	testtype.SkipUnlessTestType(t, testtype.UnitTestType)

	t.Run("an array of objects", func(t *testing.T) {
		docs, err := ReadDocuments(writeFile(t, `[{"a": 1}, {"b": "two"}]`))
		require.NoError(t, err)
		assert.Equal(t, []bson.D{{{Key: "a", Value: int32(1)}}, {{Key: "b", Value: "two"}}}, docs)
	})

	t.Run("a malformed file is a generic failure", func(t *testing.T) {
		path := writeFile(t, `[{"a": 1}`)
		_, err := ReadDocuments(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), path)
		assert.Equal(t, 3, ExitCodes.For(err))
	})

	t.Run("invalid UTF-8 is a generic failure", func(t *testing.T) {
		_, err := ReadDocuments(writeFile(t, "[{\"s\": \"\xff\"}]"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not valid UTF-8")
		assert.Equal(t, 3, ExitCodes.For(err))
	})

	t.Run("a duplicate field name is a generic failure", func(t *testing.T) {
		_, err := ReadDocuments(writeFile(t, `[{"a": 1, "a": 2}]`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate field name")
		assert.Equal(t, 3, ExitCodes.For(err))
	})

	t.Run("a top-level object is a generic failure", func(t *testing.T) {
		_, err := ReadDocuments(writeFile(t, `{"a": 1}`))
		assert.Equal(t, 3, ExitCodes.For(err))
	})
}

func TestImportDocuments(t *testing.T) {
	testtype.SkipUnlessTestType(t, testtype.IntegrationTestType)

	ctx := context.Background()
	client := testutil.GetBareSession(t)
	testutil.DropDatabase(t, client, testDB)
	coll := client.Database(testDB).Collection(testCollection)

	runImport := func(content string) (int64, error) {
		path := writeFile(t, content)
		opts, err := ParseOptions([]string{testutil.GetConnectionString(), testDB, testCollection, path}, "", "")
		require.NoError(t, err)
		docs, err := ReadDocuments(opts.File)
		require.NoError(t, err)
		imp, err := New(ctx, opts)
		require.NoError(t, err)
		defer imp.Close()
		return imp.ImportDocuments(ctx, docs)
	}

	Convey("With a collection holding an old document", t, func() {
		testutil.SeedCollection(t, coll, bson.D{{Key: "old", Value: true}})

		Convey("importing two documents replaces the contents", func() {
			count, err := runImport(`[{"a": 1}, {"b": "two"}]`)
			So(err, ShouldBeNil)
			So(count, ShouldEqual, 2)

			found, err := (&db.DeferredQuery{Coll: coll, Filter: bson.D{{Key: "old", Value: true}}}).Exists(ctx)
			So(err, ShouldBeNil)
			So(found, ShouldBeFalse)

			var doc bson.M
			So(coll.FindOne(ctx, bson.D{{Key: "a", Value: 1}}).Decode(&doc), ShouldBeNil)
			So(doc["a"], ShouldEqual, int32(1))
		})

		Convey("importing an empty array leaves the collection empty", func() {
			count, err := runImport(`[]`)
			So(err, ShouldBeNil)
			So(count, ShouldEqual, 0)
		})

		Convey("numbers keep their types", func() {
			_, err := runImport(`[{"i": 3, "l": 8589934592, "d": 2.5}]`)
			So(err, ShouldBeNil)

			var doc bson.M
			So(coll.FindOne(ctx, bson.D{}).Decode(&doc), ShouldBeNil)
			So(doc["i"], ShouldEqual, int32(3))
			So(doc["l"], ShouldEqual, int64(8589934592))
			So(doc["d"], ShouldEqual, 2.5)
		})

		Convey("importing the same file twice leaves the same contents", func() {
			input := `[{"_id": 1, "a": 1}, {"_id": 2, "b": "two", "when": {"$date": "2024-05-01T12:00:00Z"}}]`
			first, err := runImport(input)
			So(err, ShouldBeNil)
			So(first, ShouldEqual, 2)
			before, err := (&db.DeferredQuery{Coll: coll}).All(ctx)
			So(err, ShouldBeNil)

			second, err := runImport(input)
			So(err, ShouldBeNil)
			So(second, ShouldEqual, first)
			after, err := (&db.DeferredQuery{Coll: coll}).All(ctx)
			So(err, ShouldBeNil)
			So(after, ShouldResemble, before)
			So(len(after), ShouldEqual, 2)
			So(after[0], ShouldResemble, bson.D{{Key: "_id", Value: int32(1)}, {Key: "a", Value: int32(1)}})
		})

		Convey("a duplicate _id fails the insert phase", func() {
			_, err := runImport(`[{"_id": 1}, {"_id": 1}]`)
			So(err, ShouldNotBeNil)
			So(ExitCodes.For(err), ShouldEqual, 3)
		})
	})
}
