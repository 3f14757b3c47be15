// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Main package for the mongoensure tool.
package main

import (
	"context"
	"os"

	"github.com/textcad/mongo-maint-tools/common/log"
	"github.com/textcad/mongo-maint-tools/mongoensure"
)

var (
	VersionStr = "built-without-version-string"
	GitCommit  = "build-without-git-commit"
)

func main() {
	log.SetWriter(os.Stdout)

	opts, err := mongoensure.ParseOptions(os.Args[1:], VersionStr, GitCommit)
	if err != nil {
		log.Logvf(log.Always, "%v", err)
		os.Exit(mongoensure.ExitCodes.For(err))
	}

	// print help, if specified
	if opts.PrintHelp(false) {
		return
	}

	// print version, if specified
	if opts.PrintVersion() {
		return
	}

	os.Exit(mongoensure.ExitCodes.For(run(opts)))
}

func run(opts mongoensure.Options) error {
	ctx := context.Background()

	ensurer, err := mongoensure.New(ctx, opts)
	if err != nil {
		log.Logvf(log.Always, "error: %v", err)
		return err
	}
	defer ensurer.Close()

	if _, err := ensurer.Ensure(ctx); err != nil {
		log.Logvf(log.Always, "error: %+v", err)
		return err
	}
	return nil
}
