// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the wiring of store, metrics and sessions,
// decoupled from any specific entrypoint like a CLI or server.
package app
