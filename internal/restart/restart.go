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

// Package restart requests a reload of the name server.
package restart

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-logr/logr"

	"dnssec-operator.io/dnssec-operator/internal/metrics"
)

// RequestFileName is watched by the name server supervisor.
const RequestFileName = "bind-restart.requested"

// TouchFile requests restarts by updating the modification time of a file.
type TouchFile struct {
	Log  logr.Logger
	Path string
}

// NewTouchFile returns a TouchFile for the request file in configDir.
func NewTouchFile(log logr.Logger, configDir string) *TouchFile {
	return &TouchFile{Log: log, Path: filepath.Join(configDir, RequestFileName)}
}

// Request creates the file or refreshes its modification time.
func (t *TouchFile) Request() error {
	t.Log.Info("requesting name server restart", "file", t.Path)
	metrics.IncRestartRequests()

	f, err := os.OpenFile(t.Path, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("touching %s: %w", t.Path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("touching %s: %w", t.Path, err)
	}
	now := time.Now()
	if err := os.Chtimes(t.Path, now, now); err != nil {
		return fmt.Errorf("touching %s: %w", t.Path, err)
	}
	return nil
}
