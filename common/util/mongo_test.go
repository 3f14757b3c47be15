// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package util

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/textcad/mongo-maint-tools/common/testtype"
)

func TestInvalidNames(t *testing.T) {
	testtype.SkipUnlessTestType(t, testtype.UnitTestType)

	t.Run("test.col$ is invalid", func(t *testing.T) {
		require.NoError(t, ValidateDBName("test"))
		require.Error(t, ValidateCollectionName("col$"))
		require.Error(t, ValidateFullNamespace("test.col$"))
	})

	t.Run("db/aaa.col is invalid", func(t *testing.T) {
		require.Error(t, ValidateDBName("db/aaa"))
		require.NoError(t, ValidateCollectionName("col"))
		require.Error(t, ValidateFullNamespace("db/aaa.col"))
	})
	t.Run("db. is invalid", func(t *testing.T) {
		require.NoError(t, ValidateDBName("db"))
		require.Error(t, ValidateCollectionName(""))
		require.Error(t, ValidateFullNamespace("db."))
	})
	t.Run("system. prefix is invalid", func(t *testing.T) {
		require.Error(t, ValidateCollectionName("system.users"))
	})
	t.Run("[empty] is invalid", func(t *testing.T) {
		require.Error(t, ValidateFullNamespace(""))
	})
	t.Run("TaskPaneAddin.run_feedback is valid", func(t *testing.T) {
		require.NoError(t, ValidateDBName("TaskPaneAddin"))
		require.NoError(t, ValidateCollectionName("run_feedback"))
		require.NoError(t, ValidateFullNamespace("TaskPaneAddin.run_feedback"))
	})
}

func TestRequireRegularFile(t *testing.T) {
	testtype.SkipUnlessTestType(t, testtype.UnitTestType)

	dir := t.TempDir()
	path := filepath.Join(dir, "docs.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))

	t.Run("existing file", func(t *testing.T) {
		assert.NoError(t, RequireRegularFile(path))
	})

	t.Run("missing file", func(t *testing.T) {
		err := RequireRegularFile(filepath.Join(dir, "nope.json"))
		var fnf FileNotFoundError
		require.True(t, errors.As(err, &fnf))
		assert.Equal(t, filepath.Join(dir, "nope.json"), fnf.Path)
	})

	t.Run("directory", func(t *testing.T) {
		assert.Error(t, RequireRegularFile(dir))
	})
}

func TestUsageError(t *testing.T) {
	testtype.SkipUnlessTestType(t, testtype.UnitTestType)

	err := UsageError{Usage: "mongocopy <uri> <srcDb>", Message: "too few arguments"}
	assert.Equal(t, "too few arguments\nusage: mongocopy <uri> <srcDb>", err.Error())
	assert.Equal(t, "usage: x", UsageError{Usage: "x"}.Error())
}
