package plan

import (
	"fmt"
	"sort"
)

// Selectors used by the built-in plans.
const (
	SelectorToolsSyncTab = `button:has-text("Tools Sync")`
	SelectorToolCard     = `.card.cursor-pointer`
	SelectorPreview      = `button[title="Preview"]`
)

// DefaultOrder is the order `shots run` uses with no plan arguments.
var DefaultOrder = []string{"pages", "tools", "preview"}

var builtins = map[string]Plan{
	"pages": {
		Name:  "pages",
		Title: "Main pages",
		Steps: []Step{
			{Action: ActionGoto, Path: "/", WaitMS: 1000},
			{Action: ActionScreenshot, File: "dashboard.png", Title: "Dashboard"},
			{Action: ActionGoto, Path: "/skills", WaitMS: 1000},
			{Action: ActionScreenshot, File: "skills.png", Title: "Skills Repository"},
			{Action: ActionGoto, Path: "/tools", WaitMS: 1000},
			{Action: ActionScreenshot, File: "tools.png", Title: "Tools Sync"},
			{Action: ActionGoto, Path: "/settings", WaitMS: 1000},
			{Action: ActionScreenshot, File: "settings.png", Title: "Settings"},
		},
	},
	"tools": {
		Name:  "tools",
		Title: "Tools Sync tab",
		Steps: []Step{
			{Action: ActionGoto, Path: "/tools", WaitMS: 1000},
			{Action: ActionClick, Name: "tools-sync-tab", Selector: SelectorToolsSyncTab, WaitMS: 1000},
			{Action: ActionScreenshot, File: "tools.png", Title: "Tools Sync"},
		},
	},
	"preview": {
		Name:  "preview",
		Title: "Skill preview modal",
		Steps: []Step{
			{Action: ActionGoto, Path: "/tools", WaitMS: 2000},
			{Action: ActionClick, Name: "tool-card", Title: "tool cards", Selector: SelectorToolCard, WaitMS: 1500},
			{Action: ActionClick, Name: "preview", Title: "preview buttons", Selector: SelectorPreview, WaitMS: 1000},
			{Action: ActionScreenshot, File: "skill-preview.png", Title: "Skill Preview", If: "preview", Else: "tools-expanded.png"},
		},
	},
}

// Lookup returns a copy of the built-in plan called name.
func Lookup(name string) (Plan, error) {
	p, ok := builtins[name]
	if !ok {
		return Plan{}, fmt.Errorf("%w %q (known: %v)", ErrUnknownPlan, name, Names())
	}
	p.Steps = append([]Step(nil), p.Steps...)
	return p, nil
}

// MustLookup is Lookup for the fixed names used by the cmd/ programs.
func MustLookup(name string) Plan {
	p, err := Lookup(name)
	if err != nil {
		panic(err)
	}
	return p
}

// Names lists built-in plan names, sorted.
func Names() []string {
	out := make([]string, 0, len(builtins))
	for n := range builtins {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
