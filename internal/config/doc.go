// Package config defines the format-agnostic configuration model for the
// application, along with the Loader interface for reading it from a
// concrete source.
//
// Two kinds of documents are modeled here: the application settings
// (Model: logging, storage backend, workflow id) and workflow definitions
// (Definition: the steps and dependencies to import into a graph). The
// concrete HCL implementation lives in the hcl package.
package config
