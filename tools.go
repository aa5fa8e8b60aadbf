//go:build tools

// Package quicktalk pins the code generators run by `go generate ./...`
// (mockgen for the mocks package) so they resolve from go.mod.
package quicktalk

import (
	_ "go.uber.org/mock/mockgen"
)
