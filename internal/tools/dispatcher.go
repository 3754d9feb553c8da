package tools

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Dispatcher executes a batch of tool calls concurrently against a registry.
// A batch always yields exactly one result per call, in input order: the
// run-submission protocol rejects partial batches. A failing or hung call is
// isolated to its own result and never cancels siblings.
type Dispatcher struct {
	registry    *Registry
	callTimeout time.Duration
}

func NewDispatcher(registry *Registry, callTimeout time.Duration) *Dispatcher {
	return &Dispatcher{registry: registry, callTimeout: callTimeout}
}

func (d *Dispatcher) Dispatch(ctx context.Context, calls []Call) []Result {
	results := make([]Result, len(calls))
	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call Call) {
			defer wg.Done()
			results[i] = d.invoke(ctx, call)
		}(i, call)
	}
	wg.Wait()
	return results
}

func (d *Dispatcher) invoke(ctx context.Context, call Call) Result {
	tool, ok := d.registry.Lookup(call.Name)
	if !ok {
		slog.Error("tool not found", "tool", call.Name, "call_id", call.ID)
		return Result{
			CallID:  call.ID,
			Output:  fmt.Sprintf("Error: tool %q not found", call.Name),
			IsError: true,
		}
	}

	callCtx := ctx
	if d.callTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, d.callTimeout)
		defer cancel()
	}

	slog.Info("executing tool call", "tool", call.Name, "call_id", call.ID)
	output, err := safeInvoke(callCtx, tool, call)
	if err != nil {
		slog.Error("tool call failed", "tool", call.Name, "call_id", call.ID, "error", err)
		return Result{
			CallID:  call.ID,
			Output:  fmt.Sprintf("Error during tool call: %v", err),
			IsError: true,
		}
	}
	return Result{CallID: call.ID, Output: output}
}

// safeInvoke runs the handler on its own goroutine so a blocking handler
// cannot outlive its timeout, and converts panics into plain errors.
func safeInvoke(ctx context.Context, tool Tool, call Call) (string, error) {
	type outcome struct {
		output string
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("tool panicked: %v", r)}
			}
		}()
		out, err := tool.Handler(ctx, call.Arguments)
		done <- outcome{output: out, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("tool %q did not finish: %w", call.Name, ctx.Err())
	case o := <-done:
		return o.output, o.err
	}
}
