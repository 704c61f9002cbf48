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
	"errors"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	utilexec "k8s.io/utils/exec"
	testingexec "k8s.io/utils/exec/testing"

	"dnssec-operator.io/dnssec-operator/internal/command"
)

func fakeRndcConfGen(action testingexec.FakeAction) (*RndcConfGen, *testingexec.FakeCmd) {
	fakeCmd := &testingexec.FakeCmd{
		CombinedOutputScript: []testingexec.FakeAction{action},
	}
	g := NewRndcConfGen("/usr/sbin/rndc-confgen")
	g.Exec = &testingexec.FakeExec{
		CommandScript: []testingexec.FakeCommandAction{
			func(cmd string, args ...string) utilexec.Cmd {
				return testingexec.InitFakeCmd(fakeCmd, cmd, args...)
			},
		},
	}
	return g, fakeCmd
}

func TestRndcConfGen(t *testing.T) {
	t.Run("should invoke rndc-confgen", func(t *testing.T) {
		g, fakeCmd := fakeRndcConfGen(func() ([]byte, []byte, error) {
			return []byte("wrote key file \"/etc/bind/gen/demo.example.com.key\"\n"), nil, nil
		})

		err := g.Generate(context.Background(), "demo.example.com", "/etc/bind/gen/demo.example.com.key")
		require.NoError(t, err)
		assert.Equal(t, []string{
			"/usr/sbin/rndc-confgen", "-a", "-A", "hmac-sha512",
			"-k", "demo.example.com", "-c", "/etc/bind/gen/demo.example.com.key",
		}, fakeCmd.Argv)
	})

	t.Run("should return exit status", func(t *testing.T) {
		g, _ := fakeRndcConfGen(func() ([]byte, []byte, error) {
			return []byte("permission denied"), nil, &testingexec.FakeExitError{Status: 1}
		})

		err := g.Generate(context.Background(), "demo.example.com", "/etc/bind/gen/demo.example.com.key")
		var cerr *command.Error
		require.True(t, errors.As(err, &cerr))
		assert.Equal(t, 1, cerr.ExitStatus)
		assert.Equal(t, "permission denied", cerr.Output)
	})
}

func TestDryRunKeyGenerator(t *testing.T) {
	dir := t.TempDir()
	keyFile := filepath.Join(dir, "demo.example.com.key")
	require.NoError(t, ioutil.WriteFile(keyFile, []byte("garbage"), 0600))

	g := &DryRunKeyGenerator{}
	require.NoError(t, g.Generate(context.Background(), "demo.example.com", keyFile))

	key, err := LoadKeyFile(keyFile)
	require.NoError(t, err)
	assert.Equal(t, Key{
		Name:      "demo.example.com",
		Algorithm: DefaultKeyAlgorithm,
		Secret:    DryRunSecret,
	}, key)

	// replaced in place, no temporary files left behind
	entries, err := ioutil.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "demo.example.com.key", entries[0].Name())
}
