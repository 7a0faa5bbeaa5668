//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Test groups test targets (all, unit, integration, race).
type Test mg.Namespace

// All runs unit and integration tests.
func (Test) All() error {
	mg.SerialDeps(Test.Unit, Test.Integration)
	return nil
}

// Unit runs the tests that need nothing beyond a temp directory.
func (Test) Unit() error {
	return sh.RunV(binGo, "test", "./...")
}

// Integration runs the tests behind the integration build tag. They start
// a PostgreSQL container, so Docker must be available.
func (Test) Integration() error {
	return sh.RunV(binGo, "test", "-tags", integrationTag, "-count=1", "-run", "Postgres", "./internal/store/...")
}

// Race runs unit tests with the race detector.
func (Test) Race() error {
	return sh.RunV(binGo, "test", "-race", "./...")
}
