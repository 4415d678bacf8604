// Package term launches native provider login flows in a terminal.
package term
