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

package bind

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type keyGeneratorMock struct {
	mock.Mock
}

func (m *keyGeneratorMock) Generate(ctx context.Context, keyName, keyFile string) error {
	args := m.Called(ctx, keyName, keyFile)
	return args.Error(0)
}

func TestKeyManager_GetKey(t *testing.T) {
	statusKey := Key{Name: "demo.example.com", Algorithm: "hmac-sha512", Secret: "c3RhdHVz"}
	fileKey := Key{Name: "demo.example.com", Algorithm: "hmac-sha512", Secret: "ZmlsZQ=="}

	tests := []struct {
		name string
		// file content, empty for no file
		file     string
		status   Key
		generate bool
		expected Key
		changed  bool
	}{
		{
			name:     "status matches file",
			file:     statusKey.String(),
			status:   statusKey,
			expected: statusKey,
		},
		{
			name:     "status differs from file",
			file:     fileKey.String(),
			status:   statusKey,
			expected: statusKey,
			changed:  true,
		},
		{
			name:     "status without file",
			status:   statusKey,
			expected: statusKey,
			changed:  true,
		},
		{
			name:     "incomplete status with valid file",
			file:     fileKey.String(),
			status:   Key{Name: "demo.example.com"},
			expected: fileKey,
		},
		{
			name:     "nothing valid",
			file:     "key \"broken\" {",
			generate: true,
			expected: Key{Name: "demo.example.com", Algorithm: DefaultKeyAlgorithm, Secret: DryRunSecret},
			changed:  true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			keyFile := filepath.Join(t.TempDir(), "demo.example.com.key")
			if test.file != "" {
				require.NoError(t, ioutil.WriteFile(keyFile, []byte(test.file), 0600))
			}

			gen := &keyGeneratorMock{}
			if test.generate {
				gen.
					On("Generate", mock.Anything, "demo.example.com", keyFile).
					Run(func(args mock.Arguments) {
						dry := &DryRunKeyGenerator{}
						require.NoError(t, dry.Generate(context.Background(), "demo.example.com", keyFile))
					}).
					Return(nil)
			}

			m := &KeyManager{Log: logr.Discard(), Generator: gen}
			res, err := m.GetKey(context.Background(), "demo.example.com", keyFile, test.status)
			require.NoError(t, err)
			assert.Equal(t, test.expected, res.Key)
			assert.Equal(t, test.changed, res.Changed)
			gen.AssertExpectations(t)

			onDisk, err := LoadKeyFile(keyFile)
			require.NoError(t, err)
			assert.Equal(t, test.expected, onDisk)

			info, err := os.Stat(keyFile)
			require.NoError(t, err)
			assert.Equal(t, DefaultFileMode, info.Mode().Perm())
		})
	}

	t.Run("should keep a stable key across calls", func(t *testing.T) {
		keyFile := filepath.Join(t.TempDir(), "demo.example.com.key")
		m := &KeyManager{Log: logr.Discard(), Generator: &DryRunKeyGenerator{}}

		first, err := m.GetKey(context.Background(), "demo.example.com", keyFile, Key{})
		require.NoError(t, err)
		assert.True(t, first.Changed)

		second, err := m.GetKey(context.Background(), "demo.example.com", keyFile, first.Key)
		require.NoError(t, err)
		assert.False(t, second.Changed)
		assert.Equal(t, first.Key, second.Key)
	})

	t.Run("should fail when the generator writes no key", func(t *testing.T) {
		keyFile := filepath.Join(t.TempDir(), "demo.example.com.key")
		gen := &keyGeneratorMock{}
		gen.On("Generate", mock.Anything, "demo.example.com", keyFile).Return(nil)

		m := &KeyManager{Log: logr.Discard(), Generator: gen}
		_, err := m.GetKey(context.Background(), "demo.example.com", keyFile, Key{})
		assert.Error(t, err)
	})
}
