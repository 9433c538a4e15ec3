// Package main is the entry point of the schemadoc CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/schemadoc/internal/cli"

	// Register metadata adapters.
	_ "github.com/leapstack-labs/schemadoc/pkg/adapters/duckdb"
	_ "github.com/leapstack-labs/schemadoc/pkg/adapters/postgres"
	_ "github.com/leapstack-labs/schemadoc/pkg/adapters/snapshot"
	_ "github.com/leapstack-labs/schemadoc/pkg/adapters/sqlite"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
