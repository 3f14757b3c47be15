// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Main package for the mongocopy tool.
package main

import (
	"context"
	"os"

	"github.com/textcad/mongo-maint-tools/common/log"
	"github.com/textcad/mongo-maint-tools/mongocopy"
)

var (
	VersionStr = "built-without-version-string"
	GitCommit  = "build-without-git-commit"
)

func main() {
	log.SetWriter(os.Stdout)

	opts, err := mongocopy.ParseOptions(os.Args[1:], VersionStr, GitCommit)
	if err != nil {
		log.Logvf(log.Always, "%v", err)
		log.Logvf(log.Always, "try 'mongocopy --help' for more information")
		os.Exit(mongocopy.ExitCodes.For(err))
	}

	// print help, if specified
	if opts.PrintHelp(false) {
		return
	}

	// print version, if specified
	if opts.PrintVersion() {
		return
	}

	os.Exit(mongocopy.ExitCodes.For(run(opts)))
}

func run(opts mongocopy.Options) error {
	ctx := context.Background()

	copier, err := mongocopy.New(ctx, opts)
	if err != nil {
		log.Logvf(log.Always, "Failed: %v", err)
		return err
	}
	defer copier.Close()

	if _, err := copier.Copy(ctx); err != nil {
		log.Logvf(log.Always, "Failed: %v", err)
		log.Logvf(log.DebugLow, "%+v", err)
		return err
	}
	return nil
}
