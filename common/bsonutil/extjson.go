// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bsonutil

import (
	"go.mongodb.org/mongo-driver/bson"
)

// MarshalIndentedExtJSON renders doc as relaxed extended JSON, indented with
// one tab per level.
func MarshalIndentedExtJSON(doc interface{}) ([]byte, error) {
	return bson.MarshalExtJSONIndent(doc, false, false, "", "\t")
}

// CreateExtJSONString stringifies doc as Extended JSON. It does not error
// if it's unable to marshal the doc to JSON.
func CreateExtJSONString(doc interface{}) string {
	// by default return "<unable to format document>" since we don't
	// want to throw an error when formatting informational messages.
	JSONString := "<unable to format document>"
	JSONBytes, err := bson.MarshalExtJSON(doc, false, false)
	if err == nil {
		JSONString = string(JSONBytes)
	}
	return JSONString
}
