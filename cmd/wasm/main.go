//go:build js && wasm

// Command wasm exposes the timetable checker to the browser via WebAssembly.
// After loading, it registers a global JavaScript function:
//
//	checkTimetable(jsonString[, quantum]) -> jsonString | {error}
//
// The input is a {"network": ..., "trains": ...} document and the output is
// the report JSON, the same contract as the CLI's -input mode. The optional
// quantum sets how close two station events must be to count as simultaneous.
package main

import (
	"syscall/js"

	"go.uber.org/zap"

	"github.com/cxd309/tms-timetable/internal/engine"
)

func main() {
	// Only errors reach the browser console.
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	if logger, err := cfg.Build(); err == nil {
		zap.ReplaceGlobals(logger)
	}

	js.Global().Set("checkTimetable", js.FuncOf(checkTimetable))
	select {}
}

func checkTimetable(_ js.Value, args []js.Value) any {
	if len(args) < 1 || args[0].Type() != js.TypeString {
		return map[string]any{"error": "expected an input JSON string"}
	}

	var opts []engine.Option
	if len(args) > 1 && args[1].Type() == js.TypeNumber {
		opts = append(opts, engine.WithTimeQuantum(args[1].Float()))
	}

	report, err := engine.RunJSON(args[0].String(), opts...)
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	return report
}
