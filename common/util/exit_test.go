// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package util

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/textcad/mongo-maint-tools/common/testtype"
)

func TestExitCodes(t *testing.T) {
	testtype.SkipUnlessTestType(t, testtype.UnitTestType)

	importer := ExitCodes{BadOptions: 1, FileNotFound: 2, Failure: 3}
	ensurer := ExitCodes{BadOptions: 2, Failure: 1}

	usage := UsageError{Usage: "<uri>", Message: "missing uri"}
	missing := FileNotFoundError{Path: "/nope.json"}

	assert.Equal(t, ExitClean, importer.For(nil))
	assert.Equal(t, 1, importer.For(usage))
	assert.Equal(t, 1, importer.For(errors.WithMessage(usage, "parsing")))
	assert.Equal(t, 2, importer.For(missing))
	assert.Equal(t, 3, importer.For(errors.New("boom")))

	assert.Equal(t, 2, ensurer.For(usage))
	assert.Equal(t, 1, ensurer.For(missing))
	assert.Equal(t, 1, ensurer.For(errors.New("boom")))
}
