// Package errors provides the typed failures raised by iterkit pipelines.
//
// Every failure carries a machine-readable ErrorCode. The three codes the
// library itself produces are INVALID_INPUT (a malformed construction
// argument), NOT_FOUND (a terminal search found nothing and its default
// action fired) and EXHAUSTED (a guarded iterator was pulled past its end).
// Failures raised by user callbacks are never wrapped.
package errors
