package adapter

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// TracePhase identifies one of the four observable phases emitted around
// every operation (spec.md §4.4).
type TracePhase string

const (
	PhaseUnsafeInput  TracePhase = "unsafe_input"
	PhaseParsedInput  TracePhase = "parsed_input"
	PhaseDBResult     TracePhase = "db_result"
	PhaseParsedResult TracePhase = "parsed_result"
)

// TraceEntry is one emitted trace record.
type TraceEntry struct {
	Instance      string
	TransactionID int64
	Method        string
	Model         string
	Phase         TracePhase
	Payload       any
}

// traceBuffer is the process-global, per-factory-instance ring buffer
// described in spec.md §5 ("the composed schema is read-only...the
// debug-log ring buffer is process-global; writes are appended and
// tagged with a per-factory instance identifier so concurrent tests
// remain separable").
type traceBuffer struct {
	mu      sync.Mutex
	entries []TraceEntry
	cap     int
}

var globalTrace = &traceBuffer{cap: 4096}

func (b *traceBuffer) append(e TraceEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, e)
	if len(b.entries) > b.cap {
		b.entries = b.entries[len(b.entries)-b.cap:]
	}
}

// entriesForInstance returns a copy of the entries tagged with instance,
// in emission order.
func (b *traceBuffer) entriesForInstance(instance string) []TraceEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []TraceEntry
	for _, e := range b.entries {
		if e.Instance == instance {
			out = append(out, e)
		}
	}
	return out
}

var instanceCounter atomic.Int64

// newInstanceID returns a short, process-unique identifier for a new
// Factory so its trace entries can be separated from other concurrently
// constructed factories (used heavily by adapter-conformance tests that
// spin up one factory per test case).
func newInstanceID(adapterID string) string {
	return fmt.Sprintf("%s-%d", adapterID, instanceCounter.Add(1))
}

// tracer emits the four-phase trace for one Factory. In streaming mode
// (the default) every phase is also logged via slog; in test mode
// entries are buffered only, for the caller to flush on failure (spec.md
// §7: "In adapter-conformance test mode, debug logs are buffered and
// printed on test failure; otherwise streamed through the logger").
type tracer struct {
	instance string
	logger   *slog.Logger
	testMode bool
	enabled  bool
	txSeq    atomic.Int64
}

func newTracer(adapterID string, logger *slog.Logger, testMode bool) *tracer {
	if logger == nil {
		logger = slog.Default()
	}
	return &tracer{instance: newInstanceID(adapterID), logger: logger, testMode: testMode}
}

// nextTransactionID returns a new counter value unique to this tracer,
// used to correlate the four phases of one operation (spec.md §4.4
// "under a unique transaction counter").
func (t *tracer) nextTransactionID() int64 { return t.txSeq.Add(1) }

func (t *tracer) emit(txID int64, method, model string, phase TracePhase, payload any) {
	if !t.enabled {
		return
	}
	entry := TraceEntry{Instance: t.instance, TransactionID: txID, Method: method, Model: model, Phase: phase, Payload: payload}
	globalTrace.append(entry)
	if !t.testMode {
		t.logger.Debug("adapter trace", "instance", entry.Instance, "tx", txID, "method", method, "model", model, "phase", phase)
	}
}

// flush returns every buffered trace entry for this tracer's instance,
// in emission order, without clearing the global buffer. Factory.FlushTrace
// exposes it so a failed test can print the four-phase history of every
// operation that ran against that Factory.
func (t *tracer) flush() []TraceEntry {
	return globalTrace.entriesForInstance(t.instance)
}
