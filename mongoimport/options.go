// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package mongoimport

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/textcad/mongo-maint-tools/common/log"
	"github.com/textcad/mongo-maint-tools/common/options"
	"github.com/textcad/mongo-maint-tools/common/util"
)

// Usage describes the positional arguments of mongoimport.
const Usage = "<uri> <dbName> <collName> <filePath>"

const longDescription = "Import a file holding a JSON array of objects into a " +
	"collection. The collection is dropped first, so afterwards it holds exactly " +
	"the documents of the file."

// ExitCodes are the process exit codes of mongoimport.
var ExitCodes = util.ExitCodes{BadOptions: 1, FileNotFound: 2, Failure: 3}

// Options holds the parsed invocation of mongoimport.
type Options struct {
	*options.ToolOptions

	DB         string
	Collection string
	File       string
}

// Namespace returns "db.collection" for the target.
func (o Options) Namespace() string {
	return o.DB + "." + o.Collection
}

// ParseOptions reads the command line and checks that the input file exists.
// Nothing here contacts the server.
func ParseOptions(rawArgs []string, versionStr, gitCommit string) (Options, error) {
	opts := options.New("mongoimport", versionStr, gitCommit, Usage, longDescription)
	opts.ServerAPIVersion = options.ServerAPIVersion1

	args, err := opts.ParseArgs(rawArgs)
	if err != nil {
		return Options{}, util.UsageError{Usage: Usage, Message: err.Error()}
	}
	log.SetVerbosity(opts.Verbosity)

	if opts.Help || opts.Version {
		return Options{ToolOptions: opts}, nil
	}

	if len(args) < 4 {
		return Options{}, util.UsageError{
			Usage:   Usage,
			Message: fmt.Sprintf("expected 4 positional arguments, got %v", len(args)),
		}
	}
	if len(args) > 4 {
		log.Logvf(log.Always, "ignoring extra positional arguments: %v", args[4:])
	}

	parsed := Options{
		ToolOptions: opts,
		DB:          args[1],
		Collection:  args[2],
		File:        args[3],
	}
	if err := util.RequireRegularFile(parsed.File); err != nil {
		return Options{}, err
	}

	if err := opts.SetConnectionString(args[0]); err != nil {
		return Options{}, errors.Wrap(err, "error parsing connection string")
	}
	if err := util.ValidateFullNamespace(parsed.Namespace()); err != nil {
		return Options{}, errors.Wrapf(err, "invalid namespace %v", parsed.Namespace())
	}
	return parsed, nil
}
