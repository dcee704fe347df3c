// Copyright (c) 2026 guidoreina. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.
package capture

import "fmt"

// ConfigError reports a rejected Config value: bad ring size, an
// interface name that does not fit the kernel's IFNAMSIZ limit, or an
// unparseable filter expression. The process should exit(1) on this class.
type ConfigError struct {
	Msg string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("capture: config: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("capture: config: %s", e.Msg)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// SetupError reports a failure while bringing the capture socket and
// ring online: socket/bind/setsockopt/mmap/open all surface through
// this. The process should exit(2) on this class.
type SetupError struct {
	Msg string
	Err error
}

func (e *SetupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("capture: setup: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("capture: setup: %s", e.Msg)
}

func (e *SetupError) Unwrap() error { return e.Err }

// IoError reports a failure while the engine is running: poll, or a
// write to the capture file. The process should exit(3) on this
// class.
type IoError struct {
	Msg string
	Err error
}

func (e *IoError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("capture: io: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("capture: io: %s", e.Msg)
}

func (e *IoError) Unwrap() error { return e.Err }
