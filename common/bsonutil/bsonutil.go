// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package bsonutil provides utilities for converting between JSON files and
// BSON documents.
package bsonutil

import (
	"strconv"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Bson2Float64 converts a BSON numeric value to float64. The second return
// value is false if the value is not numeric.
func Bson2Float64(data interface{}) (float64, bool) {
	switch v := data.(type) {
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	case primitive.Decimal128:
		if f, err := strconv.ParseFloat(v.String(), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// FindValueByKey returns the value of keyName in document. The second return
// value is false if the key is absent.
func FindValueByKey(keyName string, document bson.D) (interface{}, bool) {
	elem, found := lo.Find(document, func(e bson.E) bool { return e.Key == keyName })
	return elem.Value, found
}

// ValueOrNull returns the value of keyName in document, or nil when the key
// is absent. A nil value in a filter matches both a null and a missing field.
func ValueOrNull(keyName string, document bson.D) interface{} {
	value, _ := FindValueByKey(keyName, document)
	return value
}

// SetValue sets keyName to value, appending the field if it is absent.
func SetValue(keyName string, value interface{}, document bson.D) bson.D {
	_, idx, found := lo.FindIndexOf(document, func(e bson.E) bool { return e.Key == keyName })
	if found {
		document[idx].Value = value
		return document
	}
	return append(document, bson.E{Key: keyName, Value: value})
}
