/*
Copyright 2021 The dnssec-operator authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package command runs external BIND tooling.
package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	utilexec "k8s.io/utils/exec"
)

// Error is returned when a command could not be started or exited non-zero.
type Error struct {
	Command    string
	ExitStatus int
	Output     string
	Err        error
}

func (e *Error) Error() string {
	out := strings.TrimSpace(e.Output)
	if out == "" {
		return fmt.Sprintf("%s exited with status %d: %v", e.Command, e.ExitStatus, e.Err)
	}
	return fmt.Sprintf("%s exited with status %d: %s", e.Command, e.ExitStatus, out)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Run executes name with args, feeding stdin if not nil.
// Stdout and stderr are returned combined.
func Run(
	ctx context.Context, exec utilexec.Interface,
	stdin io.Reader, name string, args ...string,
) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != nil {
		cmd.SetStdin(stdin)
	}

	out, err := cmd.CombinedOutput()
	if err == nil {
		return out, nil
	}

	cerr := &Error{
		Command:    name,
		ExitStatus: -1,
		Output:     string(out),
		Err:        err,
	}
	var exitErr utilexec.ExitError
	if errors.As(err, &exitErr) {
		cerr.ExitStatus = exitErr.ExitStatus()
	}
	return out, cerr
}
