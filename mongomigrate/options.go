// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package mongomigrate

import (
	"github.com/pkg/errors"
	"github.com/textcad/mongo-maint-tools/common/log"
	"github.com/textcad/mongo-maint-tools/common/options"
	"github.com/textcad/mongo-maint-tools/common/util"
)

// Usage describes the positional arguments of mongomigrate.
const Usage = "<uri> [dbName] [--dry-run]"

const longDescription = "Merge the legacy feedback collections (Feedback, feedback2, " +
	"feedback, Feedback2) into run_feedback. Documents are matched on run_key, ts, " +
	"thumb and comment so running the migration again does not duplicate them."

// ExitCodes are the process exit codes of mongomigrate.
var ExitCodes = util.ExitCodes{BadOptions: 2, Failure: 1}

// MigrationOptions defines the set of options for the migration itself.
type MigrationOptions struct {
	DryRun bool `long:"dry-run" description:"report the documents that would be inserted without writing anything"`
}

// Name returns a human-readable group name for migration options.
func (*MigrationOptions) Name() string {
	return "migration"
}

// Options holds the parsed invocation of mongomigrate.
type Options struct {
	*options.ToolOptions
	*MigrationOptions

	DB string
}

// ParseOptions reads the command line. Nothing here contacts the server.
func ParseOptions(rawArgs []string, versionStr, gitCommit string) (Options, error) {
	// No Stable API version is pinned for this tool.
	opts := options.New("mongomigrate", versionStr, gitCommit, Usage, longDescription)
	migrationOpts := &MigrationOptions{}
	opts.AddOptions(migrationOpts)

	args, err := opts.ParseArgs(rawArgs)
	if err != nil {
		return Options{}, util.UsageError{Usage: Usage, Message: err.Error()}
	}
	log.SetVerbosity(opts.Verbosity)

	if opts.Help || opts.Version {
		return Options{ToolOptions: opts, MigrationOptions: migrationOpts}, nil
	}

	if len(args) < 1 {
		return Options{}, util.UsageError{Usage: Usage, Message: "missing connection string"}
	}

	parsed := Options{
		ToolOptions:      opts,
		MigrationOptions: migrationOpts,
		DB:               DefaultDatabase,
	}
	if len(args) >= 2 {
		parsed.DB = args[1]
	}
	if len(args) > 2 {
		log.Logvf(log.Always, "ignoring extra positional arguments: %v", args[2:])
	}

	if err := opts.SetConnectionString(args[0]); err != nil {
		return Options{}, errors.Wrap(err, "error parsing connection string")
	}
	if err := util.ValidateDBName(parsed.DB); err != nil {
		return Options{}, errors.Wrap(err, "invalid database name")
	}
	return parsed, nil
}
