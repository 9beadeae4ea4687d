// Package logger provides structured logging on top of zerolog.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"   # or "console"
//	  output: "stderr"
//
// # Usage
//
//	log := logger.New(&cfg, "modelgate").WithComponent("dispatch")
//	log.Info("generation finished", logger.Fields("model", name, "duration_ms", ms))
package logger
