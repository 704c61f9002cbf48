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

package fileutil

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var serialRegEx = regexp.MustCompile(`serial [0-9]+`)

func maskSerial(content string) string {
	return serialRegEx.ReplaceAllString(content, "serial __")
}

func TestConditionalWrite(t *testing.T) {
	t.Run("should create missing files", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.conf")

		changed, err := ConditionalWrite(path, "hello", nil, 0640)
		require.NoError(t, err)
		assert.True(t, changed)

		data, err := ioutil.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(data))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0640), info.Mode().Perm())
	})

	t.Run("should not rewrite equal content", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.conf")
		require.NoError(t, ioutil.WriteFile(path, []byte("hello"), 0600))

		changed, err := ConditionalWrite(path, "hello", nil, 0644)
		require.NoError(t, err)
		assert.False(t, changed)

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0644), info.Mode().Perm(), "permissions are reset")
	})

	t.Run("should ignore normalized differences", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.db")
		require.NoError(t, ioutil.WriteFile(path, []byte("serial 1 ns1"), 0644))

		changed, err := ConditionalWrite(path, "serial 2 ns1", maskSerial, 0644)
		require.NoError(t, err)
		assert.False(t, changed)

		data, err := ioutil.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "serial 1 ns1", string(data), "old serial is kept")
	})

	t.Run("should replace changed content", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.db")
		require.NoError(t, ioutil.WriteFile(path, []byte("serial 1 ns1"), 0644))

		changed, err := ConditionalWrite(path, "serial 2 ns2", maskSerial, 0644)
		require.NoError(t, err)
		assert.True(t, changed)

		data, err := ioutil.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "serial 2 ns2", string(data))
	})

	t.Run("should write the sentinel content into a missing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test")

		changed, err := ConditionalWrite(path, missingDigest, nil, 0644)
		require.NoError(t, err)
		assert.True(t, changed)
	})
}
