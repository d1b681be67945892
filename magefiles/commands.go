//go:build mage

package main

import (
	"os/exec"
	"strings"
)

// Binary names.
const (
	binGit  = "git"
	binGo   = "go"
	binLint = "golangci-lint"
)

const modulePath = "github.com/mesh-intelligence/satchel"

// gitVersion returns the nearest release tag without its leading "v", or ""
// outside a tagged git checkout.
func gitVersion() string {
	out, err := exec.Command(binGit, "describe", "--tags", "--always", "--dirty").Output()
	if err != nil {
		return ""
	}
	v := strings.TrimSpace(string(out))
	if !strings.HasPrefix(v, "v") {
		return ""
	}
	return strings.TrimPrefix(v, "v")
}
