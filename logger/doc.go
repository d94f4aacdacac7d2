// Package logger provides structured logging for iterkit using zerolog.
//
// Pipelines never log on their own. Logging is opt-in through
// pipeline.Log, which traces every pull of a stage at debug level using
// a Logger from this package.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.New(&logger.Config{Level: "debug", Format: "json"}, "ingest")
//	traced := pipeline.Log(src, log, "parse")
package logger
