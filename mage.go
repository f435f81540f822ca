//go:build mage

package main

import (
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	jetOutput          = "internal/storage/sqlite/gen"
	sqliteFileLocation = "rating.sqlite"
	serverBin          = "./bin/server"
	serverConfigPath   = "configs/server.toml"
)

const (
	jetTool  = "github.com/go-jet/jet/v2/cmd/jet@v2.9.0"
	lintTool = "github.com/golangci/golangci-lint/cmd/golangci-lint@v1.59.1"
)

func goModDownload() error {
	return sh.Run("go", "mod", "download")
}

// Build builds server binary
func Build() error {
	mg.Deps(goModDownload)
	return sh.RunWith(map[string]string{
		"CGO_ENABLED": "1",
	}, "go", "build", "-o", serverBin, "./cmd")
}

// Run starts server with the sample config
func Run() error {
	mg.Deps(Build)
	return sh.Run(serverBin, "-server-config", serverConfigPath)
}

// GenJet regenerates the sqlite models from a migrated database
func GenJet() error {
	if _, err := os.Stat(sqliteFileLocation); err != nil {
		return err
	}
	return sh.RunWith(map[string]string{
		"CGO_ENABLED": "1",
	}, "go", "run", jetTool, "-source", "sqlite", "-dsn", sqliteFileLocation, "-path", jetOutput)
}

func Lint() error {
	return sh.Run("go", "run", lintTool, "run", "./...")
}

// Test runs unit tests; set RATING_TEST_REDIS_ADDR to include the redis backend
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}
