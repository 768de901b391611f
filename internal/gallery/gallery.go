// Package gallery renders a README.md next to the screenshots that embeds the
// latest capture of every file.
package gallery

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/nao1215/markdown"

	"skillshots/internal/runner"
)

const FileName = "README.md"

// Entry is the newest capture written to one file.
type Entry struct {
	File     string
	Title    string
	URL      string
	Plan     string
	RunID    string
	Fallback bool
	TakenAt  time.Time
}

// Collect folds manifests (oldest first) into one entry per file. Files keep
// the position of their first appearance; content comes from the newest run.
func Collect(manifests []runner.Manifest) []Entry {
	var (
		order []string
		byKey = map[string]Entry{}
	)
	for _, m := range manifests {
		for _, c := range m.Captures {
			if _, ok := byKey[c.File]; !ok {
				order = append(order, c.File)
			}
			byKey[c.File] = Entry{
				File:     c.File,
				Title:    c.Title,
				URL:      c.URL,
				Plan:     m.Plan,
				RunID:    m.RunID,
				Fallback: c.Fallback,
				TakenAt:  c.TakenAt,
			}
		}
	}
	out := make([]Entry, 0, len(order))
	for _, f := range order {
		out = append(out, byKey[f])
	}
	return out
}

// Failures returns the newest manifest of each plan when that run failed.
func Failures(manifests []runner.Manifest) []runner.Manifest {
	latest := map[string]runner.Manifest{}
	var order []string
	for _, m := range manifests {
		if _, ok := latest[m.Plan]; !ok {
			order = append(order, m.Plan)
		}
		latest[m.Plan] = m
	}
	var out []runner.Manifest
	for _, p := range order {
		if m := latest[p]; !m.OK() {
			out = append(out, m)
		}
	}
	return out
}

// Write renders the gallery markdown.
func Write(w io.Writer, entries []Entry, failures []runner.Manifest) error {
	md := markdown.NewMarkdown(w)
	md.H1("Screenshots")
	md.PlainText("")

	if len(entries) == 0 {
		md.Note("No captures yet. Run `shots run` with the dev server up.")
		return md.Build()
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			markdown.Link(e.Title, e.File),
			"`" + e.Plan + "`",
			e.URL,
			e.TakenAt.Format("2006-01-02 15:04:05 MST"),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Screenshot", "Plan", "URL", "Taken"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, m := range failures {
		md.Warningf("Latest `%s` run (%s) failed: %s", m.Plan, m.RunID, m.Error)
		md.PlainText("")
	}

	for _, e := range entries {
		md.H2(e.Title)
		md.PlainText("")
		if e.Fallback {
			md.Note("Fallback capture: the element the plan wanted to open was not on the page.")
			md.PlainText("")
		}
		md.PlainText(markdown.Image(e.Title, e.File))
		md.PlainText("")
	}
	return md.Build()
}

// WriteFile collects every run under outputDir and writes outputDir/README.md.
// Entries whose image has since been deleted are left out.
func WriteFile(outputDir string) (string, int, error) {
	manifests, err := runner.LoadAll(outputDir)
	if err != nil {
		return "", 0, err
	}

	var entries []Entry
	for _, e := range Collect(manifests) {
		if _, err := os.Stat(filepath.Join(outputDir, e.File)); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return "", 0, err
		}
		entries = append(entries, e)
	}

	var buf bytes.Buffer
	if err := Write(&buf, entries, Failures(manifests)); err != nil {
		return "", 0, fmt.Errorf("render gallery: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", 0, err
	}
	path := filepath.Join(outputDir, FileName)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", 0, err
	}
	return path, len(entries), nil
}
