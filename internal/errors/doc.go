// Package errors defines error types for the provider bridge.
//
// This package provides structured error types that wrap the different
// failure scenarios when spawning and talking to the bridge service
// process. All error types support error unwrapping and can be checked
// using errors.Is, errors.As, and errors.AsType.
package errors
