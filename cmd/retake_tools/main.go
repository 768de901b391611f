// Command retake_tools captures the Tools Sync tab on /tools.
package main

import (
	"os"

	"skillshots/internal/app"
)

func main() {
	os.Exit(app.Main("tools"))
}
