package machine

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"
)

// Thread holds the configuration and the one-shot mutable state of a
// single interpreter invocation, per spec.md §4.5 and §5. A Thread is
// single-use: call Run once per value.
type Thread struct {
	// Name optionally identifies the thread, for diagnostics only.
	Name string

	// Stdout receives PRINT_INT output. Defaults to os.Stdout.
	Stdout io.Writer

	// MaxSteps bounds the number of dispatched instructions before Run
	// cancels the thread with an error. A value <= 0 means no limit; this
	// is the only resource guard spec.md §5 calls for explicitly ("a
	// production implementation should cap [stack depth] with a
	// configurable limit"), generalized to the other two dimensions the
	// ambient stack's resource-limit config also exposes.
	MaxSteps int

	// MaxStackDepth bounds the operand stack's length. A value <= 0 means
	// no limit.
	MaxStackDepth int

	// MaxCallStackDepth bounds the number of nested CALL frames. A value
	// <= 0 means no limit.
	MaxCallStackDepth int

	ctx       context.Context
	ctxCancel context.CancelCauseFunc
	cancelled atomic.Bool

	steps, maxSteps uint64
	stdout          io.Writer
}

func (th *Thread) init(ctx context.Context) {
	ctx, cancel := context.WithCancelCause(ctx)
	th.ctx = ctx
	th.ctxCancel = cancel
	go func() {
		<-ctx.Done()
		th.cancelled.Store(true)
	}()

	if th.MaxSteps <= 0 {
		th.maxSteps-- // wraps to math.MaxUint64: "no limit"
	} else {
		th.maxSteps = uint64(th.MaxSteps)
	}
	if th.Stdout != nil {
		th.stdout = th.Stdout
	} else {
		th.stdout = os.Stdout
	}
}

// haltError is returned by Run when a resource limit is exceeded; the
// driver reports it as a runtime error per spec.md §7.
type haltError struct {
	reason string
}

func (e *haltError) Error() string { return fmt.Sprintf("thread halted: %s", e.reason) }
