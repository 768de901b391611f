// Command take_screenshots captures the dashboard, skills, tools and settings pages.
package main

import (
	"os"

	"skillshots/internal/app"
)

func main() {
	os.Exit(app.Main("pages"))
}
