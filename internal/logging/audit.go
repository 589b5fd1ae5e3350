package logging

import (
	"time"

	"go.uber.org/zap"
)

// AuditEventType names one step of a generation run.
type AuditEventType string

const (
	AuditRunStart    AuditEventType = "run_start"
	AuditFileRead    AuditEventType = "file_read"
	AuditLLMResponse AuditEventType = "llm_response"
	AuditLLMError    AuditEventType = "llm_error"
	AuditFileWrite   AuditEventType = "file_write"
	AuditRunEnd      AuditEventType = "run_end"
)

// AuditEvent is a structured audit log entry.
type AuditEvent struct {
	EventType AuditEventType
	Target    string
	Success   bool
	Duration  time.Duration
	Error     string
	Fields    map[string]interface{}
}

// AuditLogger writes audit events for a single run. Every event carries the
// run id so one invocation can be pulled out of a shared log file.
type AuditLogger struct {
	runID string
	start time.Time
}

// NewAuditLogger starts an audit trail for runID.
func NewAuditLogger(runID string) *AuditLogger {
	return &AuditLogger{runID: runID, start: time.Now()}
}

// RunID returns the correlation id.
func (a *AuditLogger) RunID() string { return a.runID }

// Log writes one event to the "audit" logger.
func (a *AuditLogger) Log(event AuditEvent) {
	fields := make([]zap.Field, 0, 6+len(event.Fields))
	fields = append(fields,
		zap.String("event", string(event.EventType)),
		zap.String("run_id", a.runID),
		zap.Bool("success", event.Success),
	)
	if event.Target != "" {
		fields = append(fields, zap.String("target", event.Target))
	}
	if event.Duration > 0 {
		fields = append(fields, zap.Int64("dur_ms", event.Duration.Milliseconds()))
	}
	if event.Error != "" {
		fields = append(fields, zap.String("error", event.Error))
	}
	for k, v := range event.Fields {
		fields = append(fields, zap.Any(k, v))
	}

	logger := L().Named("audit")
	if event.Success {
		logger.Info("audit", fields...)
	} else {
		logger.Warn("audit", fields...)
	}
}

// RunStart records the start of a run.
func (a *AuditLogger) RunStart(input, engine, model string) {
	a.Log(AuditEvent{
		EventType: AuditRunStart,
		Target:    input,
		Success:   true,
		Fields:    map[string]interface{}{"engine": engine, "model": model},
	})
}

// FileRead records document extraction.
func (a *AuditLogger) FileRead(path string, chars int, err error) {
	e := AuditEvent{EventType: AuditFileRead, Target: path, Success: err == nil}
	if err != nil {
		e.Error = err.Error()
	} else {
		e.Fields = map[string]interface{}{"chars": chars}
	}
	a.Log(e)
}

// LLMCall records an engine round-trip.
func (a *AuditLogger) LLMCall(engine string, cases int, duration time.Duration, err error) {
	if err != nil {
		a.Log(AuditEvent{EventType: AuditLLMError, Target: engine, Duration: duration, Error: err.Error()})
		return
	}
	a.Log(AuditEvent{
		EventType: AuditLLMResponse,
		Target:    engine,
		Success:   true,
		Duration:  duration,
		Fields:    map[string]interface{}{"cases": cases},
	})
}

// FileWrite records the workbook write.
func (a *AuditLogger) FileWrite(path string, rows int, err error) {
	e := AuditEvent{EventType: AuditFileWrite, Target: path, Success: err == nil}
	if err != nil {
		e.Error = err.Error()
	} else {
		e.Fields = map[string]interface{}{"rows": rows}
	}
	a.Log(e)
}

// RunEnd records the outcome of the run with its total duration.
func (a *AuditLogger) RunEnd(err error) {
	e := AuditEvent{EventType: AuditRunEnd, Success: err == nil, Duration: time.Since(a.start)}
	if err != nil {
		e.Error = err.Error()
	}
	a.Log(e)
}
