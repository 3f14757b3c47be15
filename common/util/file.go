// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package util

import (
	"os"
)

// RequireRegularFile returns a FileNotFoundError unless path names an
// existing file that is not a directory.
func RequireRegularFile(path string) error {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return FileNotFoundError{Path: path}
	}
	return nil
}
