// Package logging builds the zap logger used by the dbscan command.
package logging

import (
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Verbosity levels for the -v flag count.
const (
	VerbosityQuiet = 0 // warnings and errors only
	VerbosityInfo  = 1 // -v: + run summary
	VerbosityDebug = 2 // -vv: + one line per discovered cluster
)

// VerbosityToLevel maps a -v count to a zap level:
//
//	0 (none) -> WarnLevel
//	1 (-v)   -> InfoLevel
//	2+ (-vv) -> DebugLevel
func VerbosityToLevel(verbosity int) zapcore.Level {
	switch {
	case verbosity <= VerbosityQuiet:
		return zapcore.WarnLevel
	case verbosity == VerbosityInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// Options controls New.
type Options struct {
	Verbosity int
	JSON      bool      // JSON lines instead of the console encoder
	Output    io.Writer // required
}

// New returns a logger writing to opts.Output and a fresh run ID, which
// is attached to every entry as the run_id field.
func New(opts Options) (*zap.Logger, string) {
	var enc zapcore.Encoder
	if opts.JSON {
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(cfg)
	} else {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.TimeKey = ""
		enc = zapcore.NewConsoleEncoder(cfg)
	}

	runID := uuid.NewString()
	core := zapcore.NewCore(enc, zapcore.AddSync(opts.Output), VerbosityToLevel(opts.Verbosity))
	return zap.New(core).With(zap.String("run_id", runID)), runID
}
