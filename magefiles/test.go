//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// dsnEnv names the database the Postgres backend tests run against.
const dsnEnv = "SATCHEL_TEST_POSTGRES_DSN"

// Test groups test targets (all, unit, postgres).
type Test mg.Namespace

// All runs all tests. Postgres tests run only when SATCHEL_TEST_POSTGRES_DSN
// is set.
func (Test) All() error {
	return sh.RunV(binGo, "test", "./...")
}

// Unit runs the tests that need no database server.
func (Test) Unit() error {
	return sh.RunWithV(map[string]string{dsnEnv: ""}, binGo, "test", "./...")
}

// Postgres starts the test container and runs the Postgres backend and
// store tests against it.
func (Test) Postgres() error {
	mg.Deps(Postgres.Up)
	dsn := os.Getenv(dsnEnv)
	if dsn == "" {
		dsn = containerDSN()
	}
	fmt.Fprintln(os.Stderr, "Running Postgres tests against", dsn)
	return sh.RunWithV(map[string]string{dsnEnv: dsn},
		binGo, "test", "-count=1", "./internal/postgres/...", "./pkg/store/...")
}
