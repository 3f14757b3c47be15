// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package testtype gates tests on environment variables so that unit and
// integration suites can be selected independently.
package testtype

import (
	"os"
	"testing"
)

const (
	// Integration tests require a mongod running on localhost:33333. If your
	// mongod uses SSL you need to specify SSLTestType to ensure that your
	// integration tests use SSL.
	IntegrationTestType = "TOOLS_TESTING_INTEGRATION"

	// Unit tests don't require a real mongod. They may still do file I/O.
	UnitTestType = "TOOLS_TESTING_UNIT"

	// Auth tests require a mongod with auth enabled and the credentials
	// given in TOOLS_TESTING_AUTH_USERNAME/TOOLS_TESTING_AUTH_PASSWORD.
	AuthTestType = "TOOLS_TESTING_AUTH"
)

// HasTestType reports whether the given test type is enabled.
func HasTestType(testType string) bool {
	envVal := os.Getenv(testType)
	return envVal == "true"
}

// SkipUnlessTestType skips the test unless the given test type is enabled.
func SkipUnlessTestType(t *testing.T, testType string) {
	if !HasTestType(testType) {
		t.SkipNow()
	}
}
