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
	"errors"
	"fmt"
	"io/ioutil"
	"regexp"
)

// Key is a TSIG key as written by rndc-confgen.
type Key struct {
	Name      string
	Algorithm string
	Secret    string
}

// Valid returns true when all fields are set.
func (k Key) Valid() bool {
	return k.Name != "" && k.Algorithm != "" && k.Secret != ""
}

// String renders the key statement for named.conf.
func (k Key) String() string {
	return fmt.Sprintf("key %q {\n\talgorithm %s;\n\tsecret %q;\n};\n",
		k.Name, k.Algorithm, k.Secret)
}

// ErrInvalidKey is returned for key files not matching the key statement grammar.
var ErrInvalidKey = errors.New("invalid key statement")

var keyRegEx = regexp.MustCompile(
	`^\s*key\s+"([^"]+)"\s*\{\s*algorithm\s+([^";\s]+)\s*;\s*secret\s+"([^"]+)"\s*;\s*\}\s*;\s*$`)

// ParseKey parses a single key statement.
func ParseKey(data string) (Key, error) {
	m := keyRegEx.FindStringSubmatch(data)
	if m == nil {
		return Key{}, ErrInvalidKey
	}
	return Key{Name: m[1], Algorithm: m[2], Secret: m[3]}, nil
}

// LoadKeyFile reads and parses the key file at path.
func LoadKeyFile(path string) (Key, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return Key{}, err
	}
	key, err := ParseKey(string(data))
	if err != nil {
		return Key{}, fmt.Errorf("%s: %w", path, err)
	}
	return key, nil
}
