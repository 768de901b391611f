// Package browser owns the playwright session used for captures: driver,
// chromium process, one context with a fixed viewport and color scheme, and
// one page.
package browser

import (
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

// Page is the subset of a browser page the capture steps use.
type Page interface {
	// Goto navigates and waits for network idle.
	Goto(url string) error
	Wait(d time.Duration)
	// Query returns every element matching selector; none is not an error.
	Query(selector string) ([]Element, error)
	// Screenshot writes a PNG to path and returns its bytes.
	Screenshot(path string) ([]byte, error)
}

type Element interface {
	Click() error
}

// Instance is a launched browser with a single page.
type Instance interface {
	Page() Page
	Close() error
}

// Launcher starts an Instance. Launch is the production implementation.
type Launcher func(opts Options, logger *zap.Logger) (Instance, error)

type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type Options struct {
	Headless          bool
	InstallBrowsers   bool
	Viewport          Size
	ColorScheme       string
	NavigationTimeout time.Duration
	FullPage          bool
}

// Session implements Instance on top of playwright-go.
type Session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    *pwPage
}

// Launch installs chromium when asked, starts the driver, launches the
// browser and opens one page. On failure everything started so far is
// torn down.
func Launch(opts Options, logger *zap.Logger) (Instance, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	scheme, err := colorScheme(opts.ColorScheme)
	if err != nil {
		return nil, err
	}

	if opts.InstallBrowsers {
		logger.Info("installing playwright browsers")
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
			return nil, fmt.Errorf("install playwright: %w", err)
		}
	}

	s := &Session{}
	s.pw, err = playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	s.browser, err = s.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	})
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	s.context, err = s.browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport:    &playwright.Size{Width: opts.Viewport.Width, Height: opts.Viewport.Height},
		ColorScheme: scheme,
	})
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("new context: %w", err)
	}

	page, err := s.context.NewPage()
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("new page: %w", err)
	}
	s.page = &pwPage{
		page:     page,
		timeout:  opts.NavigationTimeout,
		fullPage: opts.FullPage,
	}

	logger.Debug("browser ready",
		zap.Bool("headless", opts.Headless),
		zap.Int("width", opts.Viewport.Width),
		zap.Int("height", opts.Viewport.Height),
		zap.String("color_scheme", opts.ColorScheme),
	)
	return s, nil
}

func (s *Session) Page() Page {
	return s.page
}

// Close shuts down context, browser and driver in that order and reports
// every failure.
func (s *Session) Close() error {
	var errs []error
	if s.context != nil {
		if err := s.context.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close context: %w", err))
		}
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close browser: %w", err))
		}
	}
	if s.pw != nil {
		if err := s.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop playwright: %w", err))
		}
	}
	return errors.Join(errs...)
}

func colorScheme(name string) (*playwright.ColorScheme, error) {
	switch name {
	case "", "dark":
		return playwright.ColorSchemeDark, nil
	case "light":
		return playwright.ColorSchemeLight, nil
	case "no-preference":
		return playwright.ColorSchemeNoPreference, nil
	default:
		return nil, fmt.Errorf("unsupported color scheme %q", name)
	}
}

type pwPage struct {
	page     playwright.Page
	timeout  time.Duration
	fullPage bool
}

func (p *pwPage) Goto(url string) error {
	opts := playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
	}
	if p.timeout > 0 {
		opts.Timeout = playwright.Float(float64(p.timeout.Milliseconds()))
	}
	_, err := p.page.Goto(url, opts)
	return err
}

func (p *pwPage) Wait(d time.Duration) {
	if d <= 0 {
		return
	}
	p.page.WaitForTimeout(float64(d.Milliseconds()))
}

func (p *pwPage) Query(selector string) ([]Element, error) {
	handles, err := p.page.QuerySelectorAll(selector)
	if err != nil {
		return nil, err
	}
	out := make([]Element, 0, len(handles))
	for _, h := range handles {
		out = append(out, pwElement{h: h})
	}
	return out, nil
}

func (p *pwPage) Screenshot(path string) ([]byte, error) {
	return p.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(p.fullPage),
	})
}

type pwElement struct {
	h playwright.ElementHandle
}

func (e pwElement) Click() error {
	return e.h.Click()
}
