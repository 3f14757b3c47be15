// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package mongoensure

import (
	"github.com/pkg/errors"
	"github.com/textcad/mongo-maint-tools/common/log"
	"github.com/textcad/mongo-maint-tools/common/options"
	"github.com/textcad/mongo-maint-tools/common/util"
)

// Usage describes the positional arguments of mongoensure.
const Usage = "<uri>"

const longDescription = "Make sure the collections the add-in relies on exist in " +
	"the TaskPaneAddin database. Each missing collection is created and seeded " +
	"with one marker document; existing collections are left untouched."

// ExitCodes are the process exit codes of mongoensure.
var ExitCodes = util.ExitCodes{BadOptions: 2, Failure: 1}

// Options holds the parsed invocation of mongoensure.
type Options struct {
	*options.ToolOptions

	// DB is always DefaultDatabase on the command line; tests point it
	// elsewhere.
	DB string
}

// ParseOptions reads the command line. Nothing here contacts the server.
func ParseOptions(rawArgs []string, versionStr, gitCommit string) (Options, error) {
	// No Stable API version is pinned for this tool.
	opts := options.New("mongoensure", versionStr, gitCommit, Usage, longDescription)

	args, err := opts.ParseArgs(rawArgs)
	if err != nil {
		return Options{}, util.UsageError{Usage: Usage, Message: err.Error()}
	}
	log.SetVerbosity(opts.Verbosity)

	if opts.Help || opts.Version {
		return Options{ToolOptions: opts}, nil
	}

	if len(args) < 1 {
		return Options{}, util.UsageError{Usage: Usage, Message: "missing connection string"}
	}
	if len(args) > 1 {
		log.Logvf(log.Always, "ignoring extra positional arguments: %v", args[1:])
	}

	if err := opts.SetConnectionString(args[0]); err != nil {
		return Options{}, errors.Wrap(err, "error parsing connection string")
	}
	return Options{ToolOptions: opts, DB: DefaultDatabase}, nil
}
