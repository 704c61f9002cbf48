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
	"fmt"
	"os"

	"github.com/go-logr/logr"

	"dnssec-operator.io/dnssec-operator/internal/fileutil"
)

// KeyManager reconciles the TSIG key of a zone
// between the key file on disk and the key recorded in the zone status.
type KeyManager struct {
	Log       logr.Logger
	Generator KeyGenerator
	FileMode  os.FileMode
}

// KeyResult is the outcome of KeyManager.GetKey.
type KeyResult struct {
	Key
	// Changed is true if the key file was written.
	Changed bool
}

// GetKey returns the key to use for keyName.
// A complete key from the status wins over the file,
// a valid file is reused and otherwise a new key is generated.
func (m *KeyManager) GetKey(
	ctx context.Context, keyName, keyFile string, status Key,
) (KeyResult, error) {
	log := m.Log.WithValues("key", keyName, "file", keyFile)

	fileKey, err := LoadKeyFile(keyFile)
	fileValid := err == nil && fileKey.Valid()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Info("ignoring unreadable key file", "error", err.Error())
	}

	var res KeyResult
	switch {
	case status.Valid() && fileValid && fileKey == status:
		res.Key = fileKey

	case status.Valid():
		log.Info("restoring key file from status")
		if _, err := fileutil.ConditionalWrite(
			keyFile, status.String(), nil, m.fileMode()); err != nil {
			return KeyResult{}, fmt.Errorf("restoring key %s: %w", keyName, err)
		}
		res.Changed = true

	case fileValid:
		res.Key = fileKey

	default:
		log.Info("generating key")
		if err := m.Generator.Generate(ctx, keyName, keyFile); err != nil {
			return KeyResult{}, err
		}
		res.Changed = true
	}

	if res.Changed {
		key, err := LoadKeyFile(keyFile)
		if err != nil {
			return KeyResult{}, fmt.Errorf("reloading key %s: %w", keyName, err)
		}
		if !key.Valid() {
			return KeyResult{}, fmt.Errorf("reloading key %s: %w", keyName, ErrInvalidKey)
		}
		res.Key = key
	}

	if err := os.Chmod(keyFile, m.fileMode()); err != nil {
		return KeyResult{}, fmt.Errorf("chmod %s: %w", keyFile, err)
	}
	return res, nil
}

func (m *KeyManager) fileMode() os.FileMode {
	if m.FileMode == 0 {
		return DefaultFileMode
	}
	return m.FileMode
}
