package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pasres/internal/trace"
)

type traceFlags struct {
	output    string
	level     string
	mode      string
	ringSize  int
	heartbeat time.Duration
}

func readTraceFlags(cmd *cobra.Command) (traceFlags, error) {
	var f traceFlags
	flags := cmd.Root().PersistentFlags()
	var err error
	if f.output, err = flags.GetString("trace"); err != nil {
		return f, err
	}
	if f.level, err = flags.GetString("trace-level"); err != nil {
		return f, err
	}
	if f.mode, err = flags.GetString("trace-mode"); err != nil {
		return f, err
	}
	if f.ringSize, err = flags.GetInt("trace-ring-size"); err != nil {
		return f, err
	}
	f.heartbeat, err = flags.GetDuration("trace-heartbeat")
	return f, err
}

// traceLevel prefers --trace-level; otherwise pasres.toml decides and a
// configured level without --trace goes to stderr.
func (f *traceFlags) traceLevel() (trace.Level, error) {
	if f.level != "" {
		return trace.ParseLevel(f.level)
	}
	cfg, err := loadProjectConfig()
	if err != nil {
		return trace.LevelOff, err
	}
	level, err := cfg.TraceLevel()
	if err == nil && level != trace.LevelOff && f.output == "" {
		f.output = "-"
	}
	return level, err
}

// setupTracing attaches a tracer to the command context and returns the
// function that stops and closes it.
func setupTracing(cmd *cobra.Command) (func(), error) {
	f, err := readTraceFlags(cmd)
	if err != nil {
		return nil, fmt.Errorf("trace flags: %w", err)
	}
	level, err := f.traceLevel()
	if err != nil {
		return nil, err
	}
	if level == trace.LevelOff && f.output == "" {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}
	mode, err := trace.ParseMode(f.mode)
	if err != nil {
		return nil, err
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		OutputPath: f.output,
		RingSize:   f.ringSize,
		Heartbeat:  f.heartbeat,
	})
	if err != nil {
		return nil, err
	}
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))
	heartbeat := trace.StartHeartbeat(tracer, f.heartbeat)

	errOut := cmd.ErrOrStderr()
	return func() {
		heartbeat.Stop()
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(errOut, "trace: flush: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(errOut, "trace: close: %v\n", err)
		}
	}, nil
}
