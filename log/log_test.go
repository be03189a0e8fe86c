//
// Voyagent is pleased to support the open source community by making graphflow available.
//
// Copyright (C) 2025 Voyagent.  All rights reserved.
//
// graphflow is licensed under the Apache License Version 2.0.
//
//

package log

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestSetLevel(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{LevelDebug, zapcore.DebugLevel},
		{LevelInfo, zapcore.InfoLevel},
		{LevelWarn, zapcore.WarnLevel},
		{LevelError, zapcore.ErrorLevel},
		{LevelFatal, zapcore.FatalLevel},
		{"unknown", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		SetLevel(tt.level)
		if got := zapLevel.Level(); got != tt.want {
			t.Errorf("SetLevel(%q): level = %v, want %v", tt.level, got, tt.want)
		}
	}
	SetLevel(LevelInfo)
}

type recordingLogger struct {
	calls []string
}

func (r *recordingLogger) Debug(args ...any)                 { r.calls = append(r.calls, "debug") }
func (r *recordingLogger) Debugf(format string, args ...any) { r.calls = append(r.calls, "debugf") }
func (r *recordingLogger) Info(args ...any)                  { r.calls = append(r.calls, "info") }
func (r *recordingLogger) Infof(format string, args ...any)  { r.calls = append(r.calls, "infof") }
func (r *recordingLogger) Warn(args ...any)                  { r.calls = append(r.calls, "warn") }
func (r *recordingLogger) Warnf(format string, args ...any)  { r.calls = append(r.calls, "warnf") }
func (r *recordingLogger) Error(args ...any)                 { r.calls = append(r.calls, "error") }
func (r *recordingLogger) Errorf(format string, args ...any) { r.calls = append(r.calls, "errorf") }
func (r *recordingLogger) Fatal(args ...any)                 { r.calls = append(r.calls, "fatal") }
func (r *recordingLogger) Fatalf(format string, args ...any) { r.calls = append(r.calls, "fatalf") }

func TestPackageFuncsDelegateToDefault(t *testing.T) {
	orig := Default
	defer func() { Default = orig }()

	rec := &recordingLogger{}
	Default = rec

	Debug("d")
	Debugf("%s", "d")
	Info("i")
	Infof("%s", "i")
	Warn("w")
	Warnf("%s", "w")
	Error("e")
	Errorf("%s", "e")

	want := []string{"debug", "debugf", "info", "infof", "warn", "warnf", "error", "errorf"}
	if len(rec.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", rec.calls, want)
	}
	for i := range want {
		if rec.calls[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, rec.calls[i], want[i])
		}
	}
}
