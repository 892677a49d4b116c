// Package tools provides runtime helpers shared by the correction tooling.
//
// Ownership boundary:
// - command execution helpers
package tools
