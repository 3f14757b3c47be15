// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Main package for the mongomigrate tool.
package main

import (
	"context"
	"os"

	"github.com/textcad/mongo-maint-tools/common/log"
	"github.com/textcad/mongo-maint-tools/mongomigrate"
)

var (
	VersionStr = "built-without-version-string"
	GitCommit  = "build-without-git-commit"
)

func main() {
	log.SetWriter(os.Stdout)

	opts, err := mongomigrate.ParseOptions(os.Args[1:], VersionStr, GitCommit)
	if err != nil {
		log.Logvf(log.Always, "%v", err)
		os.Exit(mongomigrate.ExitCodes.For(err))
	}

	// print help, if specified
	if opts.PrintHelp(false) {
		return
	}

	// print version, if specified
	if opts.PrintVersion() {
		return
	}

	os.Exit(mongomigrate.ExitCodes.For(run(opts)))
}

func run(opts mongomigrate.Options) error {
	ctx := context.Background()

	migrator, err := mongomigrate.New(ctx, opts)
	if err != nil {
		log.Logvf(log.Always, "Failed: %v", err)
		return err
	}
	defer migrator.Close()

	if _, err := migrator.Migrate(ctx); err != nil {
		log.Logvf(log.Always, "Failed: %v", err)
		log.Logvf(log.DebugLow, "%+v", err)
		return err
	}
	return nil
}
