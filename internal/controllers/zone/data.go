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
	"sort"

	dnsv1alpha1 "dnssec-operator.io/dnssec-operator/apis/dns/v1alpha1"
)

// reconcilerData compares declared zones with zones emitted on disk.
type reconcilerData struct {
	desired map[string]*dnsv1alpha1.DNSSECZone
	actual  map[string]struct{}
}

func newReconcilerData(zones []dnsv1alpha1.DNSSECZone, emitted []string) reconcilerData {
	d := reconcilerData{
		desired: map[string]*dnsv1alpha1.DNSSECZone{},
		actual:  map[string]struct{}{},
	}
	for i := range zones {
		name := zones[i].Spec.DomainName
		if name == "" {
			continue
		}
		// first declaration of a domain wins
		if _, ok := d.desired[name]; !ok {
			d.desired[name] = &zones[i]
		}
	}
	for _, name := range emitted {
		d.actual[name] = struct{}{}
	}
	return d
}

// Zone returns the declaration of name.
func (d reconcilerData) Zone(name string) *dnsv1alpha1.DNSSECZone {
	return d.desired[name]
}

// Dispensable zones are emitted but no longer declared.
func (d reconcilerData) Dispensable() []string {
	var names []string
	for name := range d.actual {
		if _, ok := d.desired[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Missing zones are declared but not emitted.
func (d reconcilerData) Missing() []string {
	var names []string
	for name := range d.desired {
		if _, ok := d.actual[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// WithoutProperStatus are declared zones without complete key in status.
func (d reconcilerData) WithoutProperStatus() []string {
	var names []string
	for name, zone := range d.desired {
		if !zone.Status.HasKey() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
