// Copyright (C) MongoDB, Inc. 2014-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package options implements command-line options that are used by all of
// the maintenance tools.
package options

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	flags "github.com/jessevdk/go-flags"
	"github.com/mitchellh/go-wordwrap"
	"github.com/pkg/errors"
	"github.com/textcad/mongo-maint-tools/common/log"
	"github.com/textcad/mongo-maint-tools/common/password"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
	"gopkg.in/yaml.v2"
)

// ServerAPIVersion1 is the only Stable API version servers currently accept.
const ServerAPIVersion1 = "1"

const helpWrapWidth = 80

// Struct encompassing all of the options that are reused across tools: "help",
// "version", verbosity settings, the connection string and TLS settings.
type ToolOptions struct {

	// The name of the tool
	AppName string

	// The version of the tool
	VersionStr string

	// The git commit reference of the tool
	GitCommit string

	// Sub-option types
	*URI
	*General
	*Verbosity
	*TLS

	// ServerAPIVersion, if non-empty, pins the Stable API version the client
	// negotiates with the server.
	ServerAPIVersion string

	// Password overrides the password of the connection string. It is set
	// from the config file or from the terminal prompt.
	Password string

	// for caching the parser
	parser *flags.Parser
}

// Struct holding generic options
type General struct {
	Help       bool   `long:"help" description:"print usage"`
	Version    bool   `long:"version" description:"print the tool version and exit"`
	ConfigPath string `long:"config" value-name:"<filename>" description:"path to a YAML configuration file (keys: password, tlsCertificateKeyFile, tlsCertificateKeyFilePassword, tlsCAFile, tlsInsecure)"`
}

// Struct holding verbosity-related options
type Verbosity struct {
	SetVerbosity    func(string) `short:"v" long:"verbose" value-name:"<level>" description:"more detailed log output (include multiple times for more verbosity, e.g. -vvvvv, or specify a numeric value, e.g. --verbose=N)" optional:"true" optional-value:""`
	Quiet           bool         `long:"quiet" description:"hide all log output"`
	VLevel          int          `no-flag:"true"`
	VerbosityParsed bool         `no-flag:"true"`
}

func (v Verbosity) Level() int {
	return v.VLevel
}

func (v Verbosity) IsQuiet() bool {
	return v.Quiet
}

// URI holds the connection string. It is always given as the first
// positional argument, never as a flag or in the config file.
type URI struct {
	ConnectionString string `no-flag:"true"`
	ConnString       connstring.ConnString
}

// TLS holds client certificate settings. They can only be set from the
// config file; settings in the connection string are applied by the driver.
type TLS struct {
	CertificateKeyFile         string `no-flag:"true"`
	CertificateKeyFilePassword string `no-flag:"true"`
	CAFile                     string `no-flag:"true"`
	Insecure                   bool   `no-flag:"true"`
}

// IsSet reports whether any TLS setting came from the config file.
func (t *TLS) IsSet() bool {
	return t != nil && *t != TLS{}
}

// Interface for extra options that need to be used by specific tools
type ExtraOptions interface {
	// Name specifying what type of options these are
	Name() string
}

func parseVal(val string) int {
	idx := strings.Index(val, "=")
	ret, err := strconv.Atoi(val[idx+1:])
	if err != nil {
		panic(fmt.Errorf("value was not a valid integer: %v", err))
	}
	return ret
}

// New asks for a new instance of tool options. usageStr is printed after the
// tool name in the help output; description is word-wrapped below it.
func New(appName, versionStr, gitCommit, usageStr, description string) *ToolOptions {
	opts := &ToolOptions{
		AppName:    appName,
		VersionStr: versionStr,
		GitCommit:  gitCommit,

		General:   &General{},
		Verbosity: &Verbosity{},
		URI:       &URI{},
		TLS:       &TLS{},
		parser: flags.NewNamedParser(
			fmt.Sprintf("%v %v", appName, usageStr), flags.None),
	}
	opts.parser.LongDescription = wordwrap.WrapString(description, helpWrapWidth)

	// Called when -v or --verbose is parsed
	opts.SetVerbosity = func(val string) {
		// Reset verbosity level when we call ParseArgs again and see the verbosity flag
		if opts.VLevel != 0 && opts.VerbosityParsed {
			opts.VerbosityParsed = false
			opts.VLevel = 0
		}

		if i, err := strconv.Atoi(val); err == nil {
			opts.VLevel = opts.VLevel + i // -v=N or --verbose=N
		} else if matched, _ := regexp.MatchString(`^v+$`, val); matched {
			opts.VLevel = opts.VLevel + len(val) + 1 // Handles the -vvv cases
		} else if matched, _ := regexp.MatchString(`^v+=[0-9]$`, val); matched {
			opts.VLevel = parseVal(val) // I.e. -vv=3
		} else if val == "" {
			opts.VLevel = opts.VLevel + 1 // Increment for every occurrence of flag
		} else {
			log.Logvf(log.Always, "Invalid verbosity value given")
			os.Exit(-1)
		}
	}

	opts.parser.UnknownOptionHandler = opts.handleUnknownOption

	if _, err := opts.parser.AddGroup("general options", "", opts.General); err != nil {
		panic(fmt.Errorf("couldn't register general options: %v", err))
	}
	if _, err := opts.parser.AddGroup("verbosity options", "", opts.Verbosity); err != nil {
		panic(fmt.Errorf("couldn't register verbosity options: %v", err))
	}

	return opts
}

// Print the usage message for the tool to stdout.  Returns whether or not the
// help flag is specified.
func (opts *ToolOptions) PrintHelp(force bool) bool {
	if opts.Help || force {
		opts.WriteHelp(os.Stdout)
	}
	return opts.Help
}

// WriteHelp writes the usage message to w.
func (opts *ToolOptions) WriteHelp(w io.Writer) {
	opts.parser.WriteHelp(w)
}

// Print the tool version to stdout.  Returns whether or not the version flag
// is specified.
func (opts *ToolOptions) PrintVersion() bool {
	if opts.Version {
		fmt.Printf("%v version: %v\n", opts.AppName, opts.VersionStr)
		fmt.Printf("git version: %v\n", opts.GitCommit)
		fmt.Printf("Go version: %v\n", runtime.Version())
		fmt.Printf("   os: %v\n", runtime.GOOS)
		fmt.Printf("   arch: %v\n", runtime.GOARCH)
		fmt.Printf("   compiler: %v\n", runtime.Compiler)
	}
	return opts.Version
}

// AddOptions registers an additional options group to this instance
func (opts *ToolOptions) AddOptions(extraOpts ExtraOptions) {
	_, err := opts.parser.AddGroup(extraOpts.Name()+" options", "", extraOpts)
	if err != nil {
		panic(fmt.Sprintf("error setting command line options for  %v: %v",
			extraOpts.Name(), err))
	}
}

func (opts *ToolOptions) CallArgParser(args []string) ([]string, error) {
	args, err := opts.parser.ParseArgs(args)
	if err != nil {
		return []string{}, err
	}

	// Set VerbosityParsed flag to make sure we reset verbosity level when we call ParseArgs again
	if opts.VLevel != 0 && !opts.VerbosityParsed {
		opts.VerbosityParsed = true
	}

	return args, nil
}

// ParseArgs parses a potential config file followed by the command line args.
// It returns the positional arguments left over after flag parsing. The
// connection string is not set here; tools call SetConnectionString once
// they have bound their positional arguments.
func (opts *ToolOptions) ParseArgs(args []string) ([]string, error) {
	if err := opts.ParseConfigFile(args); err != nil {
		return []string{}, err
	}

	return opts.CallArgParser(args)
}

// ParseConfigFile iterates over args to find a --config option. If not found, we return.
// If found, we read the contents of the specified config file in YAML format and store
// the password and TLS settings it holds in the opts.
func (opts *ToolOptions) ParseConfigFile(args []string) error {
	// Get config file path from the arguments, if specified.
	_, err := opts.CallArgParser(args)
	if err != nil {
		return err
	}

	// No --config option was specified.
	if opts.General.ConfigPath == "" {
		return nil
	}

	// --config option specifies a file path.
	configBytes, err := os.ReadFile(opts.General.ConfigPath)
	if err != nil {
		return errors.Wrapf(err, "error opening file with --config")
	}

	// Unmarshal the config file as a top-level YAML file.
	var config struct {
		Password                   string `yaml:"password"`
		CertificateKeyFile         string `yaml:"tlsCertificateKeyFile"`
		CertificateKeyFilePassword string `yaml:"tlsCertificateKeyFilePassword"`
		CAFile                     string `yaml:"tlsCAFile"`
		Insecure                   bool   `yaml:"tlsInsecure"`
	}
	err = yaml.UnmarshalStrict(configBytes, &config)
	if err != nil {
		return errors.Wrapf(err, "error parsing config file %s", opts.General.ConfigPath)
	}

	// Assign each parsed value to its respective ToolOptions field.
	opts.Password = config.Password
	opts.TLS.CertificateKeyFile = config.CertificateKeyFile
	opts.TLS.CertificateKeyFilePassword = config.CertificateKeyFilePassword
	opts.TLS.CAFile = config.CAFile
	opts.TLS.Insecure = config.Insecure

	return nil
}

// SetConnectionString sets the connection string from a positional argument
// and validates it.
func (opts *ToolOptions) SetConnectionString(uri string) error {
	opts.URI.ConnectionString = uri
	return opts.NormalizeOptionsAndURI()
}

// NormalizeOptionsAndURI parses and validates the connection string and
// fills in a missing password, prompting for it if the connection string
// names a user without one.
func (opts *ToolOptions) NormalizeOptionsAndURI() error {
	if opts.URI == nil || opts.URI.ConnectionString == "" {
		return fmt.Errorf("no connection string given")
	}

	cs, err := connstring.Parse(opts.URI.ConnectionString)
	if err != nil {
		return err
	}
	opts.URI.ConnString = *cs

	if opts.Password != "" && cs.Username != "" {
		opts.ConnString.Password = opts.Password
		opts.ConnString.PasswordSet = true
	}

	// finalize auth options, filling in missing passwords
	if opts.ShouldAskForPassword() {
		pass, err := password.Prompt("mongo user")
		if err != nil {
			return fmt.Errorf("error reading password: %v", err)
		}
		opts.Password = pass
		opts.ConnString.Password = pass
		opts.ConnString.PasswordSet = true
	}

	err = opts.ConnString.Validate()
	if err != nil {
		return errors.Wrap(err, "connection string failed validation")
	}

	return nil
}

// ShouldAskForPassword returns true if the connection string names a user
// but no password, and the authentication mechanism requires a password.
func (opts *ToolOptions) ShouldAskForPassword() bool {
	cs := opts.ConnString
	mechanism := strings.ToUpper(cs.AuthMechanism)
	return cs.Username != "" && !cs.PasswordSet &&
		!(mechanism == "MONGODB-X509" || mechanism == "GSSAPI" || mechanism == "MONGODB-AWS")
}

func (opts *ToolOptions) handleUnknownOption(option string, arg flags.SplitArgument, args []string) ([]string, error) {
	return args, fmt.Errorf(`unknown option "%v"`, option)
}
