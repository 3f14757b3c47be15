// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package util

import (
	"fmt"

	"github.com/pkg/errors"
)

// ExitClean is the exit code every tool uses on success. Failure codes differ
// per tool and are declared next to each tool's options.
const ExitClean = 0

// UsageError reports that a tool was invoked with too few positional
// arguments or with flags it could not parse. It is always detected before
// any connection to the server is attempted.
type UsageError struct {
	Usage   string
	Message string
}

func (e UsageError) Error() string {
	if e.Message == "" {
		return "usage: " + e.Usage
	}
	return fmt.Sprintf("%v\nusage: %v", e.Message, e.Usage)
}

// FileNotFoundError reports that an input file does not exist.
type FileNotFoundError struct {
	Path string
}

func (e FileNotFoundError) Error() string {
	return fmt.Sprintf("file not found: %v", e.Path)
}

// ExitCodes holds the exit codes a tool reports for each class of error.
// A zero FileNotFound folds missing files into Failure.
type ExitCodes struct {
	BadOptions   int
	FileNotFound int
	Failure      int
}

// For returns the exit code for err.
func (c ExitCodes) For(err error) int {
	var usageErr UsageError
	var fileErr FileNotFoundError
	switch {
	case err == nil:
		return ExitClean
	case errors.As(err, &usageErr):
		return c.BadOptions
	case errors.As(err, &fileErr) && c.FileNotFound != 0:
		return c.FileNotFound
	default:
		return c.Failure
	}
}
