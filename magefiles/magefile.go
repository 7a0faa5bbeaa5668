//go:build mage

// Package main provides build targets for the shopledger project using Mage.
//
// Usage:
//
//	mage build             Compile the shopledger binary to bin/
//	mage test:all          Run all tests (unit + integration)
//	mage test:unit         Run unit tests
//	mage test:integration  Run the PostgreSQL integration tests (needs Docker)
//	mage test:race         Run unit tests with the race detector
//	mage lint              Run golangci-lint
//	mage clean             Remove build artifacts
//	mage install           Install shopledger to GOPATH/bin
//	mage stats             Print per-package Go LOC, seed records and doc words
package main

const (
	binGo      = "go"
	binaryName = "shopledger"
	binaryDir  = "bin"
	cmdDir     = "./cmd/shopledger"

	// integrationTag guards tests that start containers.
	integrationTag = "integration"

	versionVar = "github.com/mesh-intelligence/shopledger/internal/cli.Version"
)
