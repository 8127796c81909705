package main

import (
	"github.com/alecthomas/kong"

	"github.com/brewhouse/tapkeeper/cmd"
)

func main() {
	ctx := kong.Parse(&cmd.CLI, kong.Name("tapkeeper"), kong.Description("tapkeeper tracks a taproom's keg inventory and tap assignments."))
	err := ctx.Run(&cmd.Context{Debug: cmd.CLI.Debug})
	ctx.FatalIfErrorf(err)
}
