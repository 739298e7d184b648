package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
)

// ErrMalformedRecord is the kind of every record-level ingestion error.
var ErrMalformedRecord = errors.New("malformed record")

// MalformedRecordError describes one input record rejected in strict mode.
type MalformedRecordError struct {
	Line   int // 1-based line or array position
	Text   string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("record %d: %s: %q", e.Line, e.Reason, e.Text)
}

func (e *MalformedRecordError) Unwrap() error { return ErrMalformedRecord }

// Input is the ingested item list plus anything the input itself configures.
type Input struct {
	Items   []RawItem
	Budget  *int // set when a JSON envelope carries one
	Skipped int
}

// recordFilter applies the shared record policy: first name wins, empty
// names and empty resources are malformed. Lenient runs skip bad records;
// strict runs collect them as errors.
type recordFilter struct {
	strict bool
	log    logr.Logger
	seen   map[string]bool
	errs   []error
	in     Input
}

func newRecordFilter(strict bool, log logr.Logger) *recordFilter {
	return &recordFilter{strict: strict, log: log, seen: make(map[string]bool)}
}

func (f *recordFilter) reject(line int, text, reason string) {
	f.in.Skipped++
	err := &MalformedRecordError{Line: line, Text: text, Reason: reason}
	if f.strict {
		f.errs = append(f.errs, err)
		return
	}
	f.log.V(1).Info("Skipping input record", "line", line, "reason", reason)
}

func (f *recordFilter) add(line int, text, name string, requires []string) {
	if name == "" {
		f.reject(line, text, "empty item name")
		return
	}
	for _, r := range requires {
		if r == "" {
			f.reject(line, text, "empty resource")
			return
		}
	}
	if f.seen[name] {
		f.reject(line, text, "duplicate item "+name)
		return
	}
	f.seen[name] = true
	f.in.Items = append(f.in.Items, RawItem{Name: name, Requires: requires})
}

func (f *recordFilter) result() (*Input, error) {
	if len(f.errs) > 0 {
		return nil, errors.Join(f.errs...)
	}
	return &f.in, nil
}

// maxRecordBytes bounds a single CSV line. Longer lines are malformed.
const maxRecordBytes = 1 << 20

// ParseCSV reads `name,r1,...,rk` lines. Blank lines are ignored.
func ParseCSV(r io.Reader, strict bool, log logr.Logger) (*Input, error) {
	f := newRecordFilter(strict, log)
	br := bufio.NewReaderSize(r, 64*1024)
	line := 0
	for {
		raw, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read input: %w", err)
		}
		if raw != "" {
			line++
			if len(raw) > maxRecordBytes {
				f.reject(line, raw[:64]+"...", "line too long")
			} else if text := strings.TrimSpace(raw); text != "" {
				fields := strings.Split(text, ",")
				for i := range fields {
					fields[i] = strings.TrimSpace(fields[i])
				}
				f.add(line, text, fields[0], fields[1:])
			}
		}
		if err != nil {
			break
		}
	}
	return f.result()
}

// ParseInput decodes data in the given input format. "auto" treats input
// starting with '[' or '{' as JSON and everything else as CSV.
func ParseInput(data []byte, format string, strict bool, log logr.Logger) (*Input, error) {
	if format == InputAuto {
		format = InputCSV
		if t := bytes.TrimSpace(data); len(t) > 0 && (t[0] == '[' || t[0] == '{') {
			format = InputJSON
		}
	}
	switch format {
	case InputCSV:
		return ParseCSV(bytes.NewReader(data), strict, log)
	case InputJSON:
		return ParseJSON(string(data), strict, log)
	}
	return nil, fmt.Errorf("unknown input format %q", format)
}

// ── Run ─────────────────────────────────────────────────────────────

// runSolve builds the candidates for in, runs the search configured by cfg
// and returns the report. Improvements are logged at V(1). The only error is
// an unknown backend; the search itself cannot fail.
func runSolve(ctx context.Context, in *Input, cfg Config, log logr.Logger, m *Metrics) (RunReport, error) {
	backend, err := ParseBackend(cfg.Backend)
	if err != nil {
		return RunReport{}, err
	}
	runID := uuid.NewString()
	log = log.WithValues("run", runID)

	cs := BuildCandidates(in.Items, cfg.Budget, backend)
	m.ObserveSkipped(in.Skipped)

	log.Info("Starting search",
		"items", len(in.Items),
		"skipped", in.Skipped,
		"eligible", len(cs.Items),
		"filtered", cs.Filtered,
		"resources", cs.Universe.Len(),
		"backend", cs.Backend,
		"workers", cfg.Workers,
		"budget", cfg.Budget)

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	opt := NewOptimizer(cs, cfg.Budget,
		WithWorkers(cfg.Workers),
		WithMetrics(m),
		WithObserver(func(imp Improvement) {
			log.V(1).Info("New best selection",
				"size", imp.Score,
				"budget", imp.Budget,
				"resources", imp.LoadSize,
				"popped", imp.Popped)
		}),
	)
	res := opt.Optimize(ctx)

	log.Info("Search finished",
		"size", res.Size,
		"complete", res.Complete,
		"popped", res.Stats.Popped,
		"elapsed", res.Stats.Elapsed)
	return NewRunReport(runID, res, cs.Universe), nil
}
