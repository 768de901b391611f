// Package plan describes capture plans: ordered navigate, wait, click and
// screenshot steps run against one page.
package plan

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Action string

const (
	ActionGoto       Action = "goto"
	ActionWait       Action = "wait"
	ActionClick      Action = "click"
	ActionScreenshot Action = "screenshot"
)

var (
	ErrUnknownPlan = errors.New("unknown plan")
	ErrInvalidPlan = errors.New("invalid plan")
)

// Plan is a named, ordered list of steps.
type Plan struct {
	Name  string `yaml:"name" json:"name" validate:"required,plan_name"`
	Title string `yaml:"title,omitempty" json:"title,omitempty"`
	Steps []Step `yaml:"steps" json:"steps" validate:"required,min=1,dive"`
}

// Step is one action. Which fields apply depends on Action:
//
//	goto:       Path, WaitMS (settle delay after network idle)
//	wait:       WaitMS
//	click:      Name, Selector, WaitMS (delay after a successful click)
//	screenshot: File, Title, If, Else
//
// A screenshot with If names an earlier click step. It is saved as File when
// that click happened and as Else otherwise; with no Else it is skipped.
type Step struct {
	Action   Action `yaml:"action" json:"action" validate:"required,oneof=goto wait click screenshot"`
	Name     string `yaml:"name,omitempty" json:"name,omitempty" validate:"required_if=Action click"`
	Title    string `yaml:"title,omitempty" json:"title,omitempty"`
	Path     string `yaml:"path,omitempty" json:"path,omitempty" validate:"required_if=Action goto"`
	Selector string `yaml:"selector,omitempty" json:"selector,omitempty" validate:"required_if=Action click"`
	WaitMS   int    `yaml:"wait_ms,omitempty" json:"wait_ms,omitempty" validate:"required_if=Action wait,min=0"`
	File     string `yaml:"file,omitempty" json:"file,omitempty" validate:"required_if=Action screenshot"`
	If       string `yaml:"if,omitempty" json:"if,omitempty"`
	Else     string `yaml:"else,omitempty" json:"else,omitempty" validate:"omitempty,png_file"`
}

// Wait is the step's delay as a duration.
func (s Step) Wait() time.Duration {
	return time.Duration(s.WaitMS) * time.Millisecond
}

// Label is what logs and manifests call the step.
func (s Step) Label() string {
	switch {
	case s.Title != "":
		return s.Title
	case s.Name != "":
		return s.Name
	case s.File != "":
		return strings.TrimSuffix(s.File, filepath.Ext(s.File))
	case s.Path != "":
		return s.Path
	default:
		return string(s.Action)
	}
}

// Files lists every output file the plan may write, fallbacks included.
func (p Plan) Files() []string {
	var out []string
	for _, s := range p.Steps {
		if s.Action != ActionScreenshot {
			continue
		}
		out = append(out, s.File)
		if s.Else != "" {
			out = append(out, s.Else)
		}
	}
	return out
}

// Validate checks field rules and the cross-step rules the tags can't
// express: unique click names, and If pointing at an earlier click.
func (p Plan) Validate() error {
	v := validator.New()
	if err := v.RegisterValidation("png_file", validatePNGFile); err != nil {
		return err
	}
	if err := v.RegisterValidation("plan_name", validatePlanName); err != nil {
		return err
	}

	if err := v.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w %q: %s failed %q", ErrInvalidPlan, p.Name, fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("%w %q: %v", ErrInvalidPlan, p.Name, err)
	}

	clicks := map[string]bool{}
	for i, s := range p.Steps {
		switch s.Action {
		case ActionGoto:
			if !strings.HasPrefix(s.Path, "/") {
				return fmt.Errorf("%w %q: step %d: path %q must start with /", ErrInvalidPlan, p.Name, i, s.Path)
			}
		case ActionClick:
			if clicks[s.Name] {
				return fmt.Errorf("%w %q: step %d: duplicate click name %q", ErrInvalidPlan, p.Name, i, s.Name)
			}
			clicks[s.Name] = true
		case ActionScreenshot:
			if !isPNGFile(s.File) {
				return fmt.Errorf("%w %q: step %d: file %q must be a bare .png name", ErrInvalidPlan, p.Name, i, s.File)
			}
			if s.If != "" && !clicks[s.If] {
				return fmt.Errorf("%w %q: step %d: if %q does not name an earlier click step", ErrInvalidPlan, p.Name, i, s.If)
			}
			if s.If == "" && s.Else != "" {
				return fmt.Errorf("%w %q: step %d: else without if", ErrInvalidPlan, p.Name, i)
			}
		}
	}
	return nil
}

func validatePNGFile(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	return ok && isPNGFile(s)
}

func isPNGFile(s string) bool {
	if s != filepath.Base(s) || strings.ContainsAny(s, `/\`) || strings.HasPrefix(s, ".") {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.', r == '_', r == '-':
		default:
			return false
		}
	}
	return strings.EqualFold(filepath.Ext(s), ".png") && len(s) > len(".png")
}

func validatePlanName(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	if !ok || s == "" {
		return false
	}
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-' || r == '_') {
			return false
		}
	}
	return true
}
