// Package codegen generates short numeric one-time codes from a
// cryptographically secure source.
package codegen
