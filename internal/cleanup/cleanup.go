// Package cleanup collects shutdown hooks, such as closing the JSONL log
// file, and runs them once the CLI command has finished.
package cleanup

import (
	"errors"
	"sync"
)

var (
	mu    sync.Mutex
	hooks []func() error
)

// Register queues a hook. Hooks run in reverse registration order so that
// resources close in the opposite order they were opened.
func Register(hook func() error) {
	if hook == nil {
		return
	}
	mu.Lock()
	hooks = append(hooks, hook)
	mu.Unlock()
}

// RunAll runs every queued hook exactly once, newest first, and joins any
// errors. Hooks registered while RunAll executes are left for the next call.
func RunAll() error {
	mu.Lock()
	pending := hooks
	hooks = nil
	mu.Unlock()

	var errs []error
	for i := len(pending) - 1; i >= 0; i-- {
		if err := pending[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
