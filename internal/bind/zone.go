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
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/coredns/coredns/plugin/file"
	"github.com/miekg/dns"
	"k8s.io/apimachinery/pkg/util/intstr"

	dnsv1alpha1 "dnssec-operator.io/dnssec-operator/apis/dns/v1alpha1"
)

// ValidationError reports a zone that cannot be rendered.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

var labelRegEx = regexp.MustCompile(`^[a-zA-Z0-9_]([a-zA-Z0-9_-]{0,61}[a-zA-Z0-9_])?$`)

// IsDomainName returns true for host style names with at least two labels
// and without trailing dot.
func IsDomainName(name string) bool {
	if len(name) > 253 || strings.HasSuffix(name, ".") {
		return false
	}
	if _, ok := dns.IsDomainName(name); !ok {
		return false
	}
	labels := strings.Split(name, ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if !labelRegEx.MatchString(label) {
			return false
		}
	}
	return true
}

// SOATimings are the SOA timing values in seconds.
type SOATimings struct {
	TTL, Refresh, Retry, Expire, Minimum int
}

// Zone is a validated zone ready to be rendered.
type Zone struct {
	DomainName   string
	AdminContact string
	// Nameservers are published as NS records, the first one is the SOA master.
	Nameservers []string
	SOATimings
}

// NewZone validates spec and returns the Zone to render.
// ns2 is optional.
func NewZone(spec dnsv1alpha1.DNSSECZoneSpec, ns1, ns2 string) (Zone, error) {
	if !IsDomainName(spec.DomainName) {
		return Zone{}, &ValidationError{
			Field: "domainName", Value: spec.DomainName, Reason: "not a valid domain name"}
	}
	if !IsDomainName(ns1) {
		return Zone{}, &ValidationError{
			Field: "nameserver1", Value: ns1, Reason: "not a valid domain name"}
	}
	if ns2 != "" && !IsDomainName(ns2) {
		return Zone{}, &ValidationError{
			Field: "nameserver2", Value: ns2, Reason: "not a valid domain name"}
	}
	if strings.TrimSpace(spec.AdminContact) == "" {
		return Zone{}, &ValidationError{
			Field: "adminContact", Value: spec.AdminContact, Reason: "must not be empty"}
	}

	z := Zone{
		DomainName:   spec.DomainName,
		AdminContact: strings.TrimSpace(spec.AdminContact),
		Nameservers:  []string{ns1},
	}
	if ns2 != "" {
		z.Nameservers = append(z.Nameservers, ns2)
	}

	var err error
	for _, t := range []struct {
		field string
		value intstr.IntOrString
		dest  *int
	}{
		{"ttlSeconds", spec.TTLSeconds, &z.TTL},
		{"refreshSeconds", spec.RefreshSeconds, &z.Refresh},
		{"retrySeconds", spec.RetrySeconds, &z.Retry},
		{"expireSeconds", spec.ExpireSeconds, &z.Expire},
		{"minimumSeconds", spec.MinimumSeconds, &z.Minimum},
	} {
		if *t.dest, err = seconds(t.field, t.value); err != nil {
			return Zone{}, err
		}
	}
	return z, nil
}

func seconds(field string, v intstr.IntOrString) (int, error) {
	n := int(v.IntVal)
	if v.Type == intstr.String {
		var err error
		n, err = strconv.Atoi(strings.TrimSpace(v.StrVal))
		if err != nil {
			return 0, &ValidationError{Field: field, Value: v.StrVal, Reason: "not an integer"}
		}
	}
	if n < 0 {
		return 0, &ValidationError{Field: field, Value: v.String(), Reason: "must not be negative"}
	}
	return n, nil
}

// Serial derives a SOA serial from the given time.
func Serial(now time.Time) int64 {
	return now.Unix() / 6
}

// Data renders the zone file contents.
func (z Zone) Data(serial int64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "$TTL %d\n", z.TTL)
	fmt.Fprintf(&b, "@ IN SOA %s %s (%d %d %d %d %d)\n",
		dns.Fqdn(z.Nameservers[0]), dns.Fqdn(z.AdminContact),
		serial, z.Refresh, z.Retry, z.Expire, z.Minimum)
	for _, ns := range z.Nameservers {
		fmt.Fprintf(&b, "\tIN NS %s\n", dns.Fqdn(ns))
	}
	return b.String()
}

// Statement renders the zone statement for named.conf.
// Without keyName dynamic updates are refused.
func (z Zone) Statement(zoneFile, keyName string) string {
	allowUpdate := "none;"
	if keyName != "" {
		allowUpdate = fmt.Sprintf("key %q;", keyName)
	}
	return fmt.Sprintf("zone %q {\n\ttype master;\n\tfile %q;\n\tallow-update { %s };\n};\n",
		z.DomainName, zoneFile, allowUpdate)
}

// Check ensures data loads as a zone for this domain.
// Zone data is rendered from the spec only, so failures are ValidationErrors.
func (z Zone) Check(data string) error {
	_, err := file.Parse(strings.NewReader(data), dns.Fqdn(z.DomainName), z.DomainName+".db", -1)
	if err != nil {
		return &ValidationError{Field: "zone", Value: z.DomainName, Reason: err.Error()}
	}
	return nil
}

var serialRegEx = regexp.MustCompile(`(@\s+IN\s+SOA\s+[^(]+\(\s*)[0-9]+`)

// NormalizeSerial masks the SOA serial of zone file data,
// so rerenders that only bump the serial compare equal.
func NormalizeSerial(data string) string {
	return serialRegEx.ReplaceAllString(data, "${1}0")
}
