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
	"fmt"
	"os"

	"github.com/dchest/safefile"
	utilexec "k8s.io/utils/exec"

	"dnssec-operator.io/dnssec-operator/internal/command"
)

// KeyGenerator creates a new TSIG key file.
type KeyGenerator interface {
	Generate(ctx context.Context, keyName, keyFile string) error
}

// DefaultKeyAlgorithm is used for generated keys.
const DefaultKeyAlgorithm = "hmac-sha512"

// RndcConfGen generates keys with the rndc-confgen binary.
type RndcConfGen struct {
	Path      string
	Algorithm string
	Exec      utilexec.Interface
}

var _ KeyGenerator = (*RndcConfGen)(nil)

// NewRndcConfGen returns a RndcConfGen running the binary at path.
func NewRndcConfGen(path string) *RndcConfGen {
	return &RndcConfGen{
		Path:      path,
		Algorithm: DefaultKeyAlgorithm,
		Exec:      utilexec.New(),
	}
}

func (g *RndcConfGen) Generate(ctx context.Context, keyName, keyFile string) error {
	algorithm := g.Algorithm
	if algorithm == "" {
		algorithm = DefaultKeyAlgorithm
	}
	_, err := command.Run(ctx, g.Exec, nil,
		g.Path, "-a", "-A", algorithm, "-k", keyName, "-c", keyFile)
	if err != nil {
		return fmt.Errorf("generating key %s: %w", keyName, err)
	}
	return nil
}

// DryRunKeyGenerator writes a fixed placeholder key
// for environments without BIND tooling.
type DryRunKeyGenerator struct {
	FileMode os.FileMode
}

var _ KeyGenerator = (*DryRunKeyGenerator)(nil)

// DryRunSecret is the secret of every key created by DryRunKeyGenerator.
const DryRunSecret = "Fc7zMz2T5KrZjFY2kWbOkwyYOSTGHfu6r9LYTTQH1O64k2qs1k8ZcPVoj34E2AK/A+sHKquLaId89EM0xE8tew=="

func (g *DryRunKeyGenerator) Generate(_ context.Context, keyName, keyFile string) error {
	key := Key{
		Name:      keyName,
		Algorithm: DefaultKeyAlgorithm,
		Secret:    DryRunSecret,
	}
	mode := g.FileMode
	if mode == 0 {
		mode = DefaultFileMode
	}
	if err := safefile.WriteFile(keyFile, []byte(key.String()), mode); err != nil {
		return fmt.Errorf("writing placeholder key %s: %w", keyName, err)
	}
	return nil
}
