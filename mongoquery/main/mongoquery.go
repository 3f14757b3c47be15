// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Main package for the mongoquery tool.
package main

import (
	"context"
	"os"

	"github.com/textcad/mongo-maint-tools/common/log"
	"github.com/textcad/mongo-maint-tools/mongoquery"
)

var (
	VersionStr = "built-without-version-string"
	GitCommit  = "build-without-git-commit"
)

func main() {
	log.SetWriter(os.Stdout)

	opts, err := mongoquery.ParseOptions(os.Args[1:], VersionStr, GitCommit)
	if err != nil {
		log.Logvf(log.Always, "%v", err)
		os.Exit(mongoquery.ExitCodes.For(err))
	}

	// print help, if specified
	if opts.PrintHelp(false) {
		return
	}

	// print version, if specified
	if opts.PrintVersion() {
		return
	}

	os.Exit(mongoquery.ExitCodes.For(run(opts)))
}

func run(opts mongoquery.Options) error {
	ctx := context.Background()

	query, err := mongoquery.New(ctx, opts)
	if err != nil {
		log.Logvf(log.Always, "query failed: %v", err)
		return err
	}
	defer query.Close()

	if _, err := query.Query(ctx, os.Stdout); err != nil {
		log.Logvf(log.Always, "query failed: %v", err)
		log.Logvf(log.DebugLow, "%+v", err)
		return err
	}
	return nil
}
