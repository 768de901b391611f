// Command shots runs capture plans against the local web UI and manages the
// resulting screenshots.
package main

import (
	"os"

	"skillshots/cmd/shots/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
