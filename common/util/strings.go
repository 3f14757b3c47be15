// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package util

import (
	"strings"
)

const redactedCredentials = "[**REDACTED**]"

// SanitizeURI redacts the user info portion of a connection string so that
// it can be written to the log.
func SanitizeURI(uri string) string {
	scheme := ""
	rest := uri
	for _, prefix := range []string{"mongodb+srv://", "mongodb://"} {
		if strings.HasPrefix(uri, prefix) {
			scheme = prefix
			rest = uri[len(prefix):]
			break
		}
	}

	// user info can only appear before the first '/' or '?'
	hostEnd := strings.IndexAny(rest, "/?")
	if hostEnd == -1 {
		hostEnd = len(rest)
	}
	at := strings.LastIndex(rest[:hostEnd], "@")
	if at == -1 {
		return uri
	}

	return scheme + redactedCredentials + rest[at:]
}
