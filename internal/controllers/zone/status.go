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

package zone

import (
	dnsv1alpha1 "dnssec-operator.io/dnssec-operator/apis/dns/v1alpha1"
)

// statusPatch lists the status fields to change, nil fields are left alone.
type statusPatch struct {
	KeyName         *string
	DNSSECKey       *string
	DNSSECAlgorithm *string
	Error           *string
}

// diffStatus returns a patch setting exactly the fields that differ.
func diffStatus(current, desired dnsv1alpha1.DNSSECZoneStatus) statusPatch {
	var p statusPatch
	if current.KeyName != desired.KeyName {
		p.KeyName = &desired.KeyName
	}
	if current.DNSSECKey != desired.DNSSECKey {
		p.DNSSECKey = &desired.DNSSECKey
	}
	if current.DNSSECAlgorithm != desired.DNSSECAlgorithm {
		p.DNSSECAlgorithm = &desired.DNSSECAlgorithm
	}
	if current.Error != desired.Error {
		p.Error = &desired.Error
	}
	return p
}

func (p statusPatch) empty() bool {
	return p.KeyName == nil && p.DNSSECKey == nil &&
		p.DNSSECAlgorithm == nil && p.Error == nil
}

// fields returns the merge patch body of the status,
// empty values are removed.
func (p statusPatch) fields() map[string]interface{} {
	fields := map[string]interface{}{}
	add := func(name string, value *string) {
		switch {
		case value == nil:
		case *value == "":
			fields[name] = nil
		default:
			fields[name] = *value
		}
	}
	add("keyName", p.KeyName)
	add("dnssecKey", p.DNSSECKey)
	add("dnssecAlgorithm", p.DNSSECAlgorithm)
	add("error", p.Error)
	return fields
}
