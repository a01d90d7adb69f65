// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

// Package rlog is the compiler's debug logger: one line as each
// pipeline stage starts, off unless RIVEC_DEBUG=1. It exists so a
// mis-compile can be narrowed to a stage without a debugger.
package rlog

import (
	"log"
	"os"
)

var (
	enabled = os.Getenv("RIVEC_DEBUG") == "1"
	logger  = log.New(os.Stderr, "rivec: ", 0)
)

// Enabled reports whether debug logging is on.
func Enabled() bool {
	return enabled
}

// SetEnabled switches debug logging on or off, overriding the
// environment.
func SetEnabled(on bool) {
	enabled = on
}

// Debugf logs one formatted line when debug logging is enabled.
func Debugf(format string, args ...any) {
	if enabled {
		logger.Printf(format, args...)
	}
}
