package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/diagnose"
	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/fix"
	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/geom"
	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/report"
	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/store"
	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/wkt"
)

// Engine is the facade over one dataset.
type Engine struct {
	store  *store.Store
	fixer  *fix.Dispatcher
	diag   diagnose.Options
	clock  Clock
	logger *slog.Logger

	// mu guards the parse errors and the cached findings. Load holds it
	// across the store reload so both always describe the same dataset.
	mu          sync.Mutex
	parseErrors []*wkt.ParseError
	findings    map[string]diagnose.Finding
	findingsGen uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithDiagnoseOptions sets the diagnostics thresholds.
func WithDiagnoseOptions(opts diagnose.Options) Option {
	return func(e *Engine) {
		e.diag = opts
	}
}

// WithFixSettings sets the fix parameter defaults.
func WithFixSettings(settings fix.Settings) Option {
	return func(e *Engine) {
		e.fixer.Settings = settings
	}
}

// WithClock sets the clock that stamps fix records.
func WithClock(c Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an Engine holding an empty dataset.
func New(opts ...Option) *Engine {
	e := &Engine{
		store:  store.New(),
		fixer:  fix.NewDispatcher(fix.DefaultSettings(), nil),
		diag:   diagnose.DefaultOptions(),
		clock:  SystemClock{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.fixer.Now = e.clock.Now
	return e
}

// Load parses text and replaces the whole dataset. It returns the number of
// records, tombstones for unparsable statements included.
func (e *Engine) Load(text string) int {
	res := wkt.Parse(text)
	records := make([]store.Record, len(res.Statements))
	for i, st := range res.Statements {
		records[i] = store.Record{Index: st.Index, SourceLine: st.SourceLine, Geom: st.Geom}
	}

	e.mu.Lock()
	n := e.store.Load(records)
	e.parseErrors = res.Errors
	e.findings = nil
	e.mu.Unlock()

	for _, pe := range res.Errors {
		e.logger.Warn("statement tombstoned", "line", pe.Line, "index", pe.Index, "error", pe.Err)
	}
	e.logger.Info("dataset loaded", "records", n, "live", res.Live(), "parse_errors", len(res.Errors))
	return n
}

// Diagnose runs every check over the working geometries.
//
// A failure inside the pass is reported as a single ProcessingError finding
// and any partial results are discarded. When nothing live is loaded the
// result is a single InsufficientData finding.
func (e *Engine) Diagnose(ctx context.Context) []diagnose.Finding {
	var (
		findings []diagnose.Finding
		gen      uint64
		live     int
	)
	err := e.guard(func() error {
		var runErr error
		e.store.View(func(snap store.Snapshot) {
			gen = snap.Generation
			for _, r := range snap.Working {
				if r.Geom.IsLive() {
					live++
				}
			}
			if live == 0 {
				return
			}
			findings, runErr = diagnose.Run(ctx, snap.Working, e.diag)
		})
		return runErr
	})
	if err != nil {
		e.logger.Error("diagnostics failed", "error", err)
		return []diagnose.Finding{diagnose.ProcessingError(err)}
	}
	if live == 0 {
		e.logger.Info("nothing to diagnose")
		return []diagnose.Finding{diagnose.InsufficientData()}
	}

	e.remember(gen, findings)
	e.logger.Info("diagnostics complete", "records", live, "findings", len(findings))
	return findings
}

// guard runs fn and turns a panic into an error.
func (e *Engine) guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

func (e *Engine) remember(gen uint64, findings []diagnose.Finding) {
	byID := make(map[string]diagnose.Finding, len(findings))
	for _, f := range findings {
		byID[f.ID] = f
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.findings = byID
	e.findingsGen = gen
}

// lookup returns the cached finding for id if it belongs to the current
// dataset.
func (e *Engine) lookup(id string) (diagnose.Finding, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.findings == nil || e.findingsGen != e.store.Generation() {
		return diagnose.Finding{}, false
	}
	f, ok := e.findings[id]
	if !ok || f.GeometryIndex < 0 {
		return diagnose.Finding{}, false
	}
	return f, true
}

// ApplyFix applies fixType to the geometry a finding identifier refers to.
func (e *Engine) ApplyFix(id, fixType string, params fix.Params) fix.Outcome {
	req := fix.RequestForID(id, fixType, params)
	if f, ok := e.lookup(id); ok {
		req.Index = f.GeometryIndex
		e.logger.Debug("finding resolved", "finding", id, "via", "diagnostics", "index", req.Index)
	} else {
		e.logger.Debug("finding resolved", "finding", id, "via", "numeric_token", "index", req.Index)
	}
	return e.apply(req)
}

// ApplyRef applies fixType to the geometry ref addresses.
func (e *Engine) ApplyRef(ref diagnose.Ref, fixType string, params fix.Params) fix.Outcome {
	return e.apply(fix.Request{FindingID: ref.ID(), Index: ref.Index, FixType: fixType, Params: params})
}

// ApplyIndex applies fixType to the geometry at index, with no finding
// behind it.
func (e *Engine) ApplyIndex(index int, fixType string, params fix.Params) fix.Outcome {
	return e.apply(fix.Request{FindingID: fmt.Sprintf("geometry-%d", index), Index: index, FixType: fixType, Params: params})
}

func (e *Engine) apply(req fix.Request) fix.Outcome {
	out := e.fixer.Apply(e.store, req)
	if !out.Success {
		e.logger.Warn("fix failed",
			"finding", req.FindingID, "fix_type", req.FixType, "index", req.Index,
			"reason", out.Reason, "message", out.Message)
		return out
	}
	e.logger.Info("fix applied",
		"finding", req.FindingID, "fix_type", out.Record.FixType, "index", req.Index, "result", out.Message)
	return out
}

// ExportGeometry returns the live working geometries as WKT.
func (e *Engine) ExportGeometry() (string, error) {
	var (
		out string
		err error
	)
	e.store.View(func(snap store.Snapshot) {
		out, err = report.Export(snap.Working)
	})
	if err != nil {
		return "", fmt.Errorf("export geometry: %w", err)
	}
	return out, nil
}

// ExportReport renders the plain-text fix report.
func (e *Engine) ExportReport() string {
	var out string
	e.store.View(func(snap store.Snapshot) {
		out = report.Render(len(snap.Original), snap.FixLog)
	})
	return out
}

// ExportReportJSON renders the fix report as JSON.
func (e *Engine) ExportReportJSON() ([]byte, error) {
	var (
		out []byte
		err error
	)
	e.store.View(func(snap store.Snapshot) {
		out, err = report.RenderJSON(len(snap.Original), snap.FixLog)
	})
	return out, err
}

// Get returns the working geometry at index, a tombstone for deleted slots.
func (e *Engine) Get(index int) (geom.Geometry, error) {
	return e.store.Get(index)
}

// Len returns the number of records in the dataset.
func (e *Engine) Len() int {
	return e.store.Len()
}

// ParseErrors returns the statements tombstoned by the latest Load.
func (e *Engine) ParseErrors() []*wkt.ParseError {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*wkt.ParseError(nil), e.parseErrors...)
}

// FixLog returns the fixes applied since the latest Load.
func (e *Engine) FixLog() []store.FixRecord {
	return e.store.FixLog()
}

// Original returns the records as loaded.
func (e *Engine) Original() []store.Record {
	return e.store.Original()
}
