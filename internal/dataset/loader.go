package dataset

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Status is the lifecycle state of the loader.
type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// Load outcomes reported to the Recorder.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Recorder receives load telemetry. The metrics collector implements it.
type Recorder interface {
	ObserveLoad(outcome string, elapsed time.Duration)
	AddExcludedRows(reason string, n int)
}

// State describes the loader for health checks and API responses.
type State struct {
	Status   Status `json:"status"`
	Error    string `json:"error,omitempty"`
	Attempts int    `json:"attempts"`
	Dataset  *Meta  `json:"dataset,omitempty"`
}

// Loader owns the single-shot dataset fetch. It never retries on its own;
// Load may be called again (for example by an operator) to re-attempt.
type Loader struct {
	source   Source
	schema   *Schema
	timeout  time.Duration
	recorder Recorder
	now      func() time.Time

	group singleflight.Group

	mu       sync.RWMutex
	status   Status
	current  *Dataset
	lastErr  error
	attempts int
}

// NewLoader creates a loader in the loading state. rec may be nil.
func NewLoader(src Source, s *Schema, timeout time.Duration, rec Recorder) *Loader {
	if s == nil {
		s = DefaultSchema()
	}
	return &Loader{
		source:   src,
		schema:   s,
		timeout:  timeout,
		recorder: rec,
		now:      time.Now,
		status:   StatusLoading,
	}
}

// Load fetches and parses the dataset once. Concurrent callers share the
// same attempt. A failed reload keeps serving the previous dataset.
func (l *Loader) Load(ctx context.Context) (*Dataset, error) {
	v, err, _ := l.group.Do("load", func() (interface{}, error) {
		return l.load(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Dataset), nil
}

func (l *Loader) load(ctx context.Context) (*Dataset, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	l.mu.Lock()
	l.attempts++
	if l.current == nil {
		l.status = StatusLoading
	}
	l.mu.Unlock()

	start := l.now()
	ds, err := l.fetch(ctx)
	elapsed := l.now().Sub(start)

	l.mu.Lock()
	defer l.mu.Unlock()

	if err != nil {
		err = fmt.Errorf("%w: %s: %w", ErrLoadFailed, l.source, err)
		l.lastErr = err
		if l.current == nil {
			l.status = StatusFailed
		}
		l.observe(OutcomeFailure, elapsed, nil)
		slog.Error("Failed to load dataset", "source", l.source.String(), "error", err, "elapsed", elapsed)
		return nil, err
	}

	l.current = ds
	l.lastErr = nil
	l.status = StatusReady
	l.observe(OutcomeSuccess, elapsed, ds)
	slog.Info("Loaded dataset",
		"source", ds.Source,
		"records", len(ds.Records),
		"rows_read", ds.Read,
		"rows_excluded", ds.Excluded,
		"elapsed", elapsed,
	)
	return ds, nil
}

func (l *Loader) fetch(ctx context.Context) (*Dataset, error) {
	data, err := l.source.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	res, err := Parse(bytes.NewReader(data), l.schema)
	if err != nil {
		return nil, err
	}
	return &Dataset{
		Records:           res.Records,
		Source:            l.source.String(),
		LoadedAt:          l.now().UTC(),
		Read:              res.Read,
		Excluded:          res.Excluded,
		ExcludedBy:        res.ExcludedBy,
		SchemaFingerprint: l.schema.Fingerprint,
		Checksum:          fmt.Sprintf("%x", sha256.Sum256(data)),
	}, nil
}

func (l *Loader) observe(outcome string, elapsed time.Duration, ds *Dataset) {
	if l.recorder == nil {
		return
	}
	l.recorder.ObserveLoad(outcome, elapsed)
	if ds == nil {
		return
	}
	for reason, n := range ds.ExcludedBy {
		l.recorder.AddExcludedRows(reason, n)
	}
}

// Current returns the loaded dataset, ErrNotReady while the first load is in
// flight, or the load error (wrapping ErrLoadFailed) if it failed.
func (l *Loader) Current() (*Dataset, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.current != nil {
		return l.current, nil
	}
	if l.status == StatusFailed && l.lastErr != nil {
		return nil, l.lastErr
	}
	return nil, ErrNotReady
}

// State reports the loader's status.
func (l *Loader) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	st := State{Status: l.status, Attempts: l.attempts}
	if l.lastErr != nil {
		st.Error = l.lastErr.Error()
	}
	if l.current != nil {
		m := l.current.Meta()
		st.Dataset = &m
	}
	return st
}

// Ping reports whether a dataset is available.
func (l *Loader) Ping(_ context.Context) error {
	_, err := l.Current()
	return err
}
