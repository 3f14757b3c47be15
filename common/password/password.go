// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package password reads a password for a connection string that names a
// user but carries no password.
package password

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/textcad/mongo-maint-tools/common/log"
	"golang.org/x/term"
)

// Prompt displays a prompt on stderr asking for the password for what and
// returns the password the user enters. Input is read without echo when
// stdin is a terminal, otherwise the first line of stdin is used.
func Prompt(what string) (string, error) {
	fd := int(os.Stdin.Fd())
	fmt.Fprintf(os.Stderr, "Enter password for %s:", what)
	defer fmt.Fprintln(os.Stderr)

	if term.IsTerminal(fd) {
		log.Logv(log.DebugLow, "standard input is a terminal; reading password from terminal")
		pass, err := term.ReadPassword(fd)
		if err != nil {
			return "", err
		}
		return string(pass), nil
	}

	log.Logv(log.Always, "reading password from standard input")
	return readPassNonInteractively(os.Stdin)
}

// readPassNonInteractively reads a single line from r, which is used when
// the password is piped in.
func readPassNonInteractively(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
