// Package observability provides a relay extension that records
// lifecycle counters through OpenTelemetry. It complements the
// per-job duration middleware: the middleware only sees the
// processing call, while this extension also counts admissions,
// format rejections, access denials, and delivery failures.
package observability
