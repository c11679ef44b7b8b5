//go:build tools
// +build tools

// Package talky pins tool dependencies (mockgen) so `go generate` works on a fresh checkout.
package talky

import (
	_ "go.uber.org/mock/mockgen"
)
