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

// Package fileutil writes files only when their meaning changes.
package fileutil

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/dchest/safefile"
)

// Normalizer rewrites content before it is compared,
// to mask parts that differ on every render.
type Normalizer func(content string) string

// digest of a file that does not exist, never equal to a real digest.
const missingDigest = "-1"

// Digest returns the hex encoded sha256 of the normalized content.
func Digest(content string, normalize Normalizer) string {
	if normalize != nil {
		content = normalize(content)
	}
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// FileDigest returns the Digest of the file at path.
func FileDigest(path string, normalize Normalizer) (string, error) {
	data, err := ioutil.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return missingDigest, nil
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return Digest(string(data), normalize), nil
}

// ConditionalWrite replaces the file at path with content,
// unless the normalized digests of both are equal.
// Unchanged files only get their permissions reset to perm.
// Returns true if the file was written.
func ConditionalWrite(
	path, content string, normalize Normalizer, perm os.FileMode,
) (bool, error) {
	current, err := FileDigest(path, normalize)
	if err != nil {
		return false, err
	}

	if current == Digest(content, normalize) {
		if err := os.Chmod(path, perm); err != nil {
			return false, fmt.Errorf("chmod %s: %w", path, err)
		}
		return false, nil
	}

	if err := safefile.WriteFile(path, []byte(content), perm); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	// safefile creates files subject to umask.
	if err := os.Chmod(path, perm); err != nil {
		return false, fmt.Errorf("chmod %s: %w", path, err)
	}
	return true, nil
}
