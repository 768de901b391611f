package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"skillshots/internal/browser"
	"skillshots/internal/logs"
	"skillshots/internal/plan"
	"skillshots/internal/probe"
)

const (
	runsDirName  = "runs"
	manifestName = "run.json"
	logName      = "runner.ndjson"
)

// Options configure a run.
type Options struct {
	Plan      plan.Plan
	BaseURL   string
	OutputDir string // screenshots land here; run records under OutputDir/runs
	Browser   browser.Options

	Probe        bool
	ProbeTimeout time.Duration

	Launch browser.Launcher // defaults to browser.Launch
	Logger *zap.Logger
}

// Result contains the run directory and manifest.
type Result struct {
	RunID    string
	RunDir   string
	Manifest Manifest
	LogPath  string
}

// Manifest is persisted to run.json.
type Manifest struct {
	RunID       string       `json:"run_id"`
	Plan        string       `json:"plan"`
	Title       string       `json:"title,omitempty"`
	BaseURL     string       `json:"base_url"`
	Viewport    browser.Size `json:"viewport"`
	ColorScheme string       `json:"color_scheme"`
	StartedAt   time.Time    `json:"started_at"`
	FinishedAt  time.Time    `json:"finished_at"`
	Captures    []Capture    `json:"captures"`
	Clicks      []Click      `json:"clicks,omitempty"`
	Error       string       `json:"error,omitempty"`
	LogPath     string       `json:"log_path"`
}

// OK reports whether the run finished without error.
func (m Manifest) OK() bool { return m.Error == "" }

// Run executes one plan in a fresh browser session and records it. The
// manifest is written even when the run fails part way.
func Run(ctx context.Context, opts Options) (Result, error) {
	if err := opts.Plan.Validate(); err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(opts.BaseURL) == "" {
		return Result{}, errors.New("BaseURL is required")
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "screenshots"
	}
	if opts.Launch == nil {
		opts.Launch = browser.Launch
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	runID := newRunID()
	runDir := filepath.Join(opts.OutputDir, runsDirName, runID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return Result{}, err
	}

	logPath := filepath.Join(runDir, logName)
	logger, closeLog, err := logs.WithFile(opts.Logger, logPath)
	if err != nil {
		return Result{}, err
	}
	defer closeLog()
	logger = logger.With(zap.String("run_id", runID), zap.String("plan", opts.Plan.Name))

	manifest := Manifest{
		RunID:       runID,
		Plan:        opts.Plan.Name,
		Title:       opts.Plan.Title,
		BaseURL:     opts.BaseURL,
		Viewport:    opts.Browser.Viewport,
		ColorScheme: opts.Browser.ColorScheme,
		StartedAt:   time.Now().UTC(),
		LogPath:     logPath,
	}

	out, runErr := capture(ctx, opts, logger)
	manifest.Captures = out.Captures
	manifest.Clicks = out.Clicks
	manifest.FinishedAt = time.Now().UTC()
	if runErr != nil {
		manifest.Error = runErr.Error()
		logger.Error("run failed", zap.Error(runErr))
	}

	if err := writeManifest(filepath.Join(runDir, manifestName), manifest); err != nil {
		logger.Warn("write manifest failed", zap.Error(err))
		runErr = errors.Join(runErr, err)
	}
	if runErr == nil {
		logger.Info("run finished", zap.Int("captures", len(manifest.Captures)))
	}

	return Result{
		RunID:    runID,
		RunDir:   runDir,
		Manifest: manifest,
		LogPath:  logPath,
	}, runErr
}

func capture(ctx context.Context, opts Options, logger *zap.Logger) (Outcome, error) {
	if opts.Probe {
		status, err := probe.CheckReachable(ctx, opts.BaseURL, opts.ProbeTimeout)
		if err != nil {
			return Outcome{}, err
		}
		logger.Debug("dev server reachable", zap.String("url", opts.BaseURL), zap.Int("status", status))
	}

	inst, err := opts.Launch(opts.Browser, logger)
	if err != nil {
		return Outcome{}, err
	}
	defer func() {
		if err := inst.Close(); err != nil {
			logger.Warn("close browser", zap.Error(err))
		}
	}()

	return Execute(ctx, inst.Page(), opts.Plan, Target{
		BaseURL:   opts.BaseURL,
		OutputDir: opts.OutputDir,
	}, logger)
}

func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// --- manifests ---

func writeManifest(path string, manifest Manifest) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(manifest)
}

// LoadManifest reads a manifest from disk.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return m, nil
}

// ManifestPath is where the manifest for runID lives under outputDir.
func ManifestPath(outputDir, runID string) string {
	return filepath.Join(outputDir, runsDirName, runID, manifestName)
}

// LogPath is where the NDJSON log for runID lives under outputDir.
func LogPath(outputDir, runID string) string {
	return filepath.Join(outputDir, runsDirName, runID, logName)
}

// FindRuns returns run IDs under outputDir/runs, oldest first. A missing
// runs directory yields no runs.
func FindRuns(outputDir string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(outputDir, runsDirName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, e.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// LoadAll loads every readable manifest under outputDir, oldest first.
// Run directories without a manifest (an interrupted run) are skipped.
func LoadAll(outputDir string) ([]Manifest, error) {
	ids, err := FindRuns(outputDir)
	if err != nil {
		return nil, err
	}
	out := make([]Manifest, 0, len(ids))
	for _, id := range ids {
		m, err := LoadManifest(ManifestPath(outputDir, id))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, err
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out, nil
}
