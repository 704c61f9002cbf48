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

package dnsupdate

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-logr/logr"
	utilexec "k8s.io/utils/exec"

	"dnssec-operator.io/dnssec-operator/internal/command"
)

// NSUpdate submits transactions with the nsupdate binary.
type NSUpdate struct {
	Path string
	Exec utilexec.Interface
}

var _ Updater = (*NSUpdate)(nil)

func NewNSUpdate(path string) *NSUpdate {
	return &NSUpdate{Path: path, Exec: utilexec.New()}
}

func (u *NSUpdate) Submit(ctx context.Context, tx Transaction, keyString string) error {
	_, err := command.Run(ctx, u.Exec, strings.NewReader(tx.String()), u.Path, "-y", keyString)
	if err != nil {
		return fmt.Errorf("nsupdate to %s: %w", tx.Server, err)
	}
	return nil
}

// DryRun logs transactions instead of submitting them.
type DryRun struct {
	Log logr.Logger
}

var _ Updater = (*DryRun)(nil)

func (d *DryRun) Submit(_ context.Context, tx Transaction, _ string) error {
	d.Log.Info("dry run, not submitting update",
		"server", tx.Server, "transaction", tx.String())
	return nil
}
