package logging

import "time"

// Canonical field keys shared by the pipeline, batch runner and servers.
const (
	FieldDocID      = "doc_id"
	FieldFileName   = "file_name"
	FieldStage      = "stage"
	FieldRequestID  = "request_id"
	FieldDurationMS = "duration_ms"
)

// slowOperationThreshold promotes LogOperationDuration entries to Warn.
const slowOperationThreshold = 5 * time.Second

// LogOperationDuration logs the elapsed time since start for op. Operations
// slower than five seconds are logged at Warn.
func LogOperationDuration(l Logger, op string, start time.Time, fields ...Field) {
	elapsed := time.Since(start)
	fields = append(fields,
		String("operation", op),
		Int64(FieldDurationMS, elapsed.Milliseconds()),
	)
	if elapsed > slowOperationThreshold {
		l.Warn("slow operation", fields...)
		return
	}
	l.Info("operation completed", fields...)
}

//Personal.AI order the ending
