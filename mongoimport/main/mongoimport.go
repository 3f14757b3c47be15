// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Main package for the mongoimport tool.
package main

import (
	"context"
	"os"

	"github.com/textcad/mongo-maint-tools/common/log"
	"github.com/textcad/mongo-maint-tools/mongoimport"
)

var (
	VersionStr = "built-without-version-string"
	GitCommit  = "build-without-git-commit"
)

func main() {
	log.SetWriter(os.Stdout)

	opts, err := mongoimport.ParseOptions(os.Args[1:], VersionStr, GitCommit)
	if err != nil {
		log.Logvf(log.Always, "%v", err)
		if mongoimport.ExitCodes.For(err) == mongoimport.ExitCodes.BadOptions {
			log.Logvf(log.Always, "try 'mongoimport --help' for more information")
		}
		os.Exit(mongoimport.ExitCodes.For(err))
	}

	// print help, if specified
	if opts.PrintHelp(false) {
		return
	}

	// print version, if specified
	if opts.PrintVersion() {
		return
	}

	os.Exit(mongoimport.ExitCodes.For(run(opts)))
}

func run(opts mongoimport.Options) error {
	ctx := context.Background()

	// The file is parsed before connecting so a malformed file leaves the
	// collection untouched.
	docs, err := mongoimport.ReadDocuments(opts.File)
	if err != nil {
		log.Logvf(log.Always, "Failed: %v", err)
		return err
	}

	importer, err := mongoimport.New(ctx, opts)
	if err != nil {
		log.Logvf(log.Always, "Failed: %v", err)
		return err
	}
	defer importer.Close()

	if _, err := importer.ImportDocuments(ctx, docs); err != nil {
		log.Logvf(log.Always, "Failed: %v", err)
		log.Logvf(log.DebugLow, "%+v", err)
		return err
	}
	return nil
}
