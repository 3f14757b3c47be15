// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package db

import (
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	ErrNsNotFound = "ns not found"

	ErrNamespaceNotFoundCode = 26
	ErrNamespaceExistsCode   = 48
)

// IsNsNotFound reports whether err is the server's reply to an operation on
// a collection that does not exist.
func IsNsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code == ErrNamespaceNotFoundCode || cmdErr.Name == "NamespaceNotFound"
	}
	return strings.Contains(err.Error(), ErrNsNotFound)
}

// IsNamespaceExists reports whether err is the server's reply to creating a
// collection that already exists.
func IsNamespaceExists(err error) bool {
	var cmdErr mongo.CommandError
	return errors.As(err, &cmdErr) && cmdErr.Code == ErrNamespaceExistsCode
}
