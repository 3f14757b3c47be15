// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bsonutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
)

// ParseJSONArray parses data as a top-level JSON array of objects and
// converts every element to a document. Elements are read as relaxed
// extended JSON, so integers that fit in 32 bits become int32, larger ones
// int64, and fractional numbers float64. Wrappers such as {"$date": ...} and
// {"$oid": ...} become their BSON types. data must be valid UTF-8.
func ParseJSONArray(data []byte) ([]bson.D, error) {
	if !utf8.Valid(data) {
		return nil, errors.New("error parsing JSON: input is not valid UTF-8")
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errors.New("error parsing JSON: top-level value is not an array")
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil, errors.Wrap(err, "error parsing JSON array")
	}

	docs := make([]bson.D, 0, len(elems))
	for i, elem := range elems {
		doc, err := ParseJSONDocument(elem)
		if err != nil {
			return nil, errors.WithMessagef(err, "array element %v", i)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// ParseJSONDocument converts a single JSON object to a document. An object
// that names the same field twice, at any depth, is rejected.
func ParseJSONDocument(data []byte) (bson.D, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errors.Errorf("expected a JSON object, got %.20q", string(trimmed))
	}

	var doc bson.D
	if err := bson.UnmarshalExtJSON(trimmed, false, &doc); err != nil {
		return nil, errors.Wrap(err, "error converting JSON object to a document")
	}
	if err := checkDuplicateKeys(doc, ""); err != nil {
		return nil, err
	}
	return doc, nil
}

func checkDuplicateKeys(value interface{}, path string) error {
	switch v := value.(type) {
	case bson.D:
		seen := mapset.NewThreadUnsafeSetWithSize[string](len(v))
		for _, elem := range v {
			name := elem.Key
			if path != "" {
				name = path + "." + elem.Key
			}
			if !seen.Add(elem.Key) {
				return errors.Errorf("duplicate field name '%v'", name)
			}
			if err := checkDuplicateKeys(elem.Value, name); err != nil {
				return err
			}
		}
	case bson.A:
		for i, item := range v {
			if err := checkDuplicateKeys(item, fmt.Sprintf("%v.%v", path, i)); err != nil {
				return err
			}
		}
	}
	return nil
}
