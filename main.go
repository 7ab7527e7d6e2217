// Package main is the entry point for bbdl.
package main

import (
	"github.com/bbdl-cli/bbdl/cmd"
	"github.com/bbdl-cli/bbdl/config"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	cmd.Execute()
}
