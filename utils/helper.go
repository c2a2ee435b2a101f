package utils

import (
	"fmt"

	"github.com/go-stack/stack"
	"github.com/inconshreveable/log15"
)

// Safely runs fn and turns a panic into an error log, so one bad event
// cannot take the process down.
func Safely(log log15.Logger, task string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("recovered from panic", "task", task, "panic", r,
				"stack", fmt.Sprintf("%+v", stack.Trace().TrimRuntime()))
		}
	}()
	fn()
}
