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

// Package dnsupdate verifies records on remote name servers
// and submits RFC 2136 dynamic updates.
package dnsupdate

import (
	"context"
	"fmt"
	"strings"

	"github.com/miekg/dns"
	"inet.af/netaddr"
)

// Action of an update line.
type Action string

// Action values.
const (
	Add    Action = "add"
	Delete Action = "delete"
)

// Value is the type and contents of a single record.
type Value struct {
	Type     string
	Contents string
}

// AddressValue returns an A or AAAA Value for ip.
func AddressValue(ip string) (Value, error) {
	addr, err := netaddr.ParseIP(ip)
	if err != nil {
		return Value{}, err
	}
	if addr.Is4() {
		return Value{Type: "A", Contents: addr.String()}, nil
	}
	return Value{Type: "AAAA", Contents: addr.String()}, nil
}

// Update adds or deletes a single record.
type Update struct {
	Action Action
	Name   string
	TTL    int
	Value
}

// String renders the update in nsupdate syntax.
func (u Update) String() string {
	return fmt.Sprintf("update %s %s %d IN %s %s", u.Action, u.Name, u.TTL, u.Type, u.Contents)
}

// RR returns the update as resource record.
func (u Update) RR() (dns.RR, error) {
	return dns.NewRR(fmt.Sprintf("%s %d IN %s %s", dns.Fqdn(u.Name), u.TTL, u.Type, u.Contents))
}

// Transaction is a batch of updates sent to a single server.
type Transaction struct {
	Server  string
	Updates []Update
}

// String renders the transaction as nsupdate input.
func (t Transaction) String() string {
	var b strings.Builder
	b.WriteString("server " + t.Server + "\n")
	for _, u := range t.Updates {
		b.WriteString(u.String() + "\n")
	}
	b.WriteString("send\n")
	return b.String()
}

// Updater submits transactions authenticated with keyString.
type Updater interface {
	Submit(ctx context.Context, tx Transaction, keyString string) error
}

// Resolver answers live queries against a specific server.
type Resolver interface {
	// ServerAddress returns server if it is an IP address or resolves it.
	ServerAddress(ctx context.Context, server string) (string, error)
	// Resolve returns the contents of all rrType records of name.
	Resolve(ctx context.Context, serverAddress, rrType, name string) ([]string, error)
}

// ServiceLookup returns the externally reachable addresses of a Service.
type ServiceLookup interface {
	ServiceAddresses(ctx context.Context, namespace, name string) ([]Value, error)
}

// Matches returns true if observed contents are equal to expected
// for the given record type.
func Matches(rrType, expected, observed string) bool {
	switch strings.ToUpper(rrType) {
	case "A", "AAAA":
		e, err := netaddr.ParseIP(expected)
		if err != nil {
			return false
		}
		o, err := netaddr.ParseIP(observed)
		if err != nil {
			return false
		}
		return e == o
	case "CNAME", "NS", "PTR":
		return strings.EqualFold(dns.Fqdn(expected), dns.Fqdn(observed))
	case "TXT":
		return unquote(expected) == unquote(observed)
	default:
		return strings.EqualFold(
			normalizeFields(dns.Fqdn(expected)), normalizeFields(dns.Fqdn(observed)))
	}
}

func unquote(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"`)
}

func normalizeFields(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
