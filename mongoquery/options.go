// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package mongoquery

import (
	"fmt"
	"strings"

	"github.com/ccoveille/go-safecast/v2"
	"github.com/pkg/errors"
	"github.com/textcad/mongo-maint-tools/common/log"
	"github.com/textcad/mongo-maint-tools/common/options"
	"github.com/textcad/mongo-maint-tools/common/util"
)

// Usage describes the positional arguments of mongoquery.
const Usage = "<uri> <db> <collection> [limit]"

const longDescription = "Print the first documents of a collection as indented " +
	"extended JSON."

// DefaultLimit is the number of documents printed when no valid limit is given.
const DefaultLimit = 5

// ExitCodes are the process exit codes of mongoquery.
var ExitCodes = util.ExitCodes{BadOptions: 1, Failure: 2}

// Options holds the parsed invocation of mongoquery.
type Options struct {
	*options.ToolOptions

	DB         string
	Collection string
	Limit      int64
}

// Namespace returns "db.collection".
func (o Options) Namespace() string {
	return o.DB + "." + o.Collection
}

// ParseLimit reads the optional limit argument. Anything that is not a
// non-negative whole number falls back to DefaultLimit. Zero means no limit.
func ParseLimit(arg string) int64 {
	limit, err := safecast.Parse[int64](arg)
	if err != nil || limit < 0 || strings.Contains(arg, ".") {
		if arg != "" {
			log.Logvf(log.Info, "invalid limit %q, using %v", arg, DefaultLimit)
		}
		return DefaultLimit
	}
	return limit
}

// ParseOptions reads the command line. Nothing here contacts the server.
func ParseOptions(rawArgs []string, versionStr, gitCommit string) (Options, error) {
	opts := options.New("mongoquery", versionStr, gitCommit, Usage, longDescription)
	opts.ServerAPIVersion = options.ServerAPIVersion1

	args, err := opts.ParseArgs(rawArgs)
	if err != nil {
		return Options{}, util.UsageError{Usage: Usage, Message: err.Error()}
	}
	log.SetVerbosity(opts.Verbosity)

	if opts.Help || opts.Version {
		return Options{ToolOptions: opts}, nil
	}

	if len(args) < 3 {
		return Options{}, util.UsageError{
			Usage:   Usage,
			Message: fmt.Sprintf("expected at least 3 positional arguments, got %v", len(args)),
		}
	}

	parsed := Options{
		ToolOptions: opts,
		DB:          args[1],
		Collection:  args[2],
		Limit:       DefaultLimit,
	}
	if len(args) >= 4 {
		parsed.Limit = ParseLimit(args[3])
	}
	if len(args) > 4 {
		log.Logvf(log.Always, "ignoring extra positional arguments: %v", args[4:])
	}

	if err := opts.SetConnectionString(args[0]); err != nil {
		return Options{}, errors.Wrap(err, "error parsing connection string")
	}
	if err := util.ValidateFullNamespace(parsed.Namespace()); err != nil {
		return Options{}, errors.Wrapf(err, "invalid namespace %v", parsed.Namespace())
	}
	return parsed, nil
}
