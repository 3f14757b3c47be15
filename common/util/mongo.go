// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package util

import (
	"fmt"
	"strings"
)

const (
	InvalidDBChars         = "/\\. \"\x00$"
	InvalidCollectionChars = "$\x00"
)

// ValidateDBName validates that a string is a valid name for a mongodb
// database. An error is returned if it is not valid.
func ValidateDBName(database string) error {
	// must be < 64 characters
	if len([]byte(database)) > 63 {
		return fmt.Errorf("db name '%v' is longer than 63 characters", database)
	}

	// check for illegal characters
	if strings.ContainsAny(database, InvalidDBChars) {
		return fmt.Errorf("illegal character in db name '%v'", database)
	}

	// db name of 'test' is allowed
	if database == "" {
		return fmt.Errorf("db name cannot be empty")
	}

	return nil
}

// ValidateCollectionName validates that a string is a valid name for a mongodb
// collection. An error is returned if it is not valid.
func ValidateCollectionName(collection string) error {
	// collection names cannot begin with 'system.'
	if strings.HasPrefix(collection, "system.") {
		return fmt.Errorf("collection name '%v' is not allowed to begin with 'system.'", collection)
	}

	// check for illegal characters
	if strings.ContainsAny(collection, InvalidCollectionChars) {
		return fmt.Errorf("illegal character in collection name '%v'", collection)
	}

	// collection name cannot be empty
	if collection == "" {
		return fmt.Errorf("collection name cannot be empty")
	}

	return nil
}

// ValidateFullNamespace validates a "db.collection" string.
func ValidateFullNamespace(namespace string) error {
	db, coll, found := strings.Cut(namespace, ".")
	if !found {
		return fmt.Errorf("namespace '%v' has no collection part", namespace)
	}
	if err := ValidateDBName(db); err != nil {
		return err
	}
	return ValidateCollectionName(coll)
}
