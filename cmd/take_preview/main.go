// Command take_preview captures the skill preview modal on /tools, or the
// expanded tools view when no preview button is found.
package main

import (
	"os"

	"skillshots/internal/app"
)

func main() {
	os.Exit(app.Main("preview"))
}
