// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package mongocopy

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/textcad/mongo-maint-tools/common/log"
	"github.com/textcad/mongo-maint-tools/common/options"
	"github.com/textcad/mongo-maint-tools/common/util"
)

// Usage describes the positional arguments of mongocopy.
const Usage = "<uri> <srcDb> <srcColl> <tgtDb> <tgtColl>"

const longDescription = "Copy every document of the source collection into the " +
	"target collection. The target is dropped first, so afterwards it holds " +
	"exactly the documents read from the source."

// ExitCodes are the process exit codes of mongocopy.
var ExitCodes = util.ExitCodes{BadOptions: 1, Failure: 2}

// Options holds the parsed invocation of mongocopy.
type Options struct {
	*options.ToolOptions

	SourceDB         string
	SourceCollection string
	TargetDB         string
	TargetCollection string
}

// SourceNamespace returns "db.collection" for the source.
func (o Options) SourceNamespace() string {
	return o.SourceDB + "." + o.SourceCollection
}

// TargetNamespace returns "db.collection" for the target.
func (o Options) TargetNamespace() string {
	return o.TargetDB + "." + o.TargetCollection
}

// ParseOptions reads the command line. Usage errors are returned as
// util.UsageError; nothing here contacts the server.
func ParseOptions(rawArgs []string, versionStr, gitCommit string) (Options, error) {
	opts := options.New("mongocopy", versionStr, gitCommit, Usage, longDescription)
	opts.ServerAPIVersion = options.ServerAPIVersion1

	args, err := opts.ParseArgs(rawArgs)
	if err != nil {
		return Options{}, util.UsageError{Usage: Usage, Message: err.Error()}
	}
	log.SetVerbosity(opts.Verbosity)

	if opts.Help || opts.Version {
		return Options{ToolOptions: opts}, nil
	}

	if len(args) < 5 {
		return Options{}, util.UsageError{
			Usage:   Usage,
			Message: fmt.Sprintf("expected 5 positional arguments, got %v", len(args)),
		}
	}
	if len(args) > 5 {
		log.Logvf(log.Always, "ignoring extra positional arguments: %v", args[5:])
	}

	if err := opts.SetConnectionString(args[0]); err != nil {
		return Options{}, errors.Wrap(err, "error parsing connection string")
	}

	parsed := Options{
		ToolOptions:      opts,
		SourceDB:         args[1],
		SourceCollection: args[2],
		TargetDB:         args[3],
		TargetCollection: args[4],
	}
	for _, ns := range []string{parsed.SourceNamespace(), parsed.TargetNamespace()} {
		if err := util.ValidateFullNamespace(ns); err != nil {
			return Options{}, errors.Wrapf(err, "invalid namespace %v", ns)
		}
	}
	return parsed, nil
}
