package runner

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"skillshots/internal/browser"
	"skillshots/internal/plan"
)

var (
	ErrNavigate   = errors.New("navigate")
	ErrClick      = errors.New("click")
	ErrScreenshot = errors.New("screenshot")
)

// Target says where a plan runs and where its files go.
type Target struct {
	BaseURL   string
	OutputDir string
}

// Outcome is what a plan produced, possibly partially.
type Outcome struct {
	Captures []Capture
	Clicks   []Click
}

type Capture struct {
	Title    string    `json:"title"`
	File     string    `json:"file"`
	Path     string    `json:"path"`
	URL      string    `json:"url"`
	Bytes    int       `json:"bytes"`
	Fallback bool      `json:"fallback,omitempty"`
	TakenAt  time.Time `json:"taken_at"`
}

type Click struct {
	Name     string `json:"name"`
	Selector string `json:"selector"`
	Matches  int    `json:"matches"`
	Clicked  bool   `json:"clicked"`
}

// Execute runs the plan's steps in order on page. A click whose selector
// matches nothing is skipped; navigation, click and screenshot failures stop
// the plan. The outcome gathered so far is returned alongside any error.
func Execute(ctx context.Context, page browser.Page, p plan.Plan, target Target, logger *zap.Logger) (Outcome, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		out     Outcome
		current string
		clicked = map[string]bool{}
	)

	for i, step := range p.Steps {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		log := logger.With(zap.Int("step", i), zap.String("action", string(step.Action)))

		switch step.Action {
		case plan.ActionGoto:
			url := target.BaseURL + step.Path
			log.Info("navigating", zap.String("url", url))
			if err := page.Goto(url); err != nil {
				return out, fmt.Errorf("%w %s: %w", ErrNavigate, url, err)
			}
			current = url
			page.Wait(step.Wait())

		case plan.ActionWait:
			page.Wait(step.Wait())

		case plan.ActionClick:
			elems, err := page.Query(step.Selector)
			if err != nil {
				return out, fmt.Errorf("%w %s: query %q: %w", ErrClick, step.Name, step.Selector, err)
			}
			c := Click{Name: step.Name, Selector: step.Selector, Matches: len(elems)}
			log.Info("found elements", zap.String("name", step.Label()), zap.String("selector", step.Selector), zap.Int("count", len(elems)))

			if len(elems) > 0 {
				if err := elems[0].Click(); err != nil {
					out.Clicks = append(out.Clicks, c)
					return out, fmt.Errorf("%w %s: %w", ErrClick, step.Name, err)
				}
				c.Clicked = true
				clicked[step.Name] = true
				log.Info("clicked", zap.String("name", step.Name))
				page.Wait(step.Wait())
			} else {
				log.Warn("no matching element; skipping click", zap.String("selector", step.Selector))
			}
			out.Clicks = append(out.Clicks, c)

		case plan.ActionScreenshot:
			file, title, fallback := step.File, step.Label(), false
			if step.If != "" && !clicked[step.If] {
				if step.Else == "" {
					log.Info("skipping screenshot", zap.String("file", step.File), zap.String("if", step.If))
					continue
				}
				file = step.Else
				title = plan.Step{File: step.Else}.Label()
				fallback = true
			}

			path := filepath.Join(target.OutputDir, file)
			img, err := page.Screenshot(path)
			if err != nil {
				return out, fmt.Errorf("%w %s: %w", ErrScreenshot, path, err)
			}
			if len(img) == 0 {
				return out, fmt.Errorf("%w %s: empty image", ErrScreenshot, path)
			}
			out.Captures = append(out.Captures, Capture{
				Title:    title,
				File:     file,
				Path:     path,
				URL:      current,
				Bytes:    len(img),
				Fallback: fallback,
				TakenAt:  time.Now().UTC(),
			})
			log.Info("saved", zap.String("path", path), zap.Int("bytes", len(img)), zap.Bool("fallback", fallback))
		}
	}
	return out, nil
}
