// Package hcl provides the concrete HCL implementation of the config.Loader
// interface. It parses the application settings file and workflow definition
// files, evaluating expressions against an `env` object that exposes the
// process environment.
package hcl
