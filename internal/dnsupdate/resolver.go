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
	"net"
	"strings"

	"github.com/miekg/dns"
	"inet.af/netaddr"
)

const defaultPort = "53"

// DNSResolver queries name servers directly with miekg/dns.
type DNSResolver struct {
	Client *dns.Client
	// Port of the queried servers, defaults to 53.
	Port string
	// LookupHost resolves server names, defaults to the system resolver.
	LookupHost func(ctx context.Context, host string) ([]string, error)
}

var _ Resolver = (*DNSResolver)(nil)

func NewDNSResolver() *DNSResolver {
	return &DNSResolver{
		Client:     &dns.Client{},
		Port:       defaultPort,
		LookupHost: net.DefaultResolver.LookupHost,
	}
}

// ServerAddress returns server unchanged if it is an IP address,
// otherwise its first IPv4 address or any address if there is none.
func (r *DNSResolver) ServerAddress(ctx context.Context, server string) (string, error) {
	if ip, err := netaddr.ParseIP(server); err == nil {
		return ip.String(), nil
	}

	addrs, err := r.LookupHost(ctx, server)
	if err != nil {
		return "", fmt.Errorf("resolving server %s: %w", server, err)
	}
	if len(addrs) == 0 {
		return "", fmt.Errorf("resolving server %s: no addresses", server)
	}
	for _, a := range addrs {
		if ip, err := netaddr.ParseIP(a); err == nil && ip.Is4() {
			return ip.String(), nil
		}
	}
	return addrs[0], nil
}

// Resolve returns the record data of all answers of the given type.
// A non-existing name yields no answers.
func (r *DNSResolver) Resolve(
	ctx context.Context, serverAddress, rrType, name string,
) ([]string, error) {
	qtype, ok := dns.StringToType[strings.ToUpper(rrType)]
	if !ok {
		return nil, fmt.Errorf("unknown record type %q", rrType)
	}

	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(name), qtype)
	in, _, err := r.Client.ExchangeContext(ctx, m, net.JoinHostPort(serverAddress, r.port()))
	if err != nil {
		return nil, fmt.Errorf("querying %s %s: %w", rrType, name, err)
	}
	switch in.Rcode {
	case dns.RcodeSuccess, dns.RcodeNameError:
	default:
		return nil, fmt.Errorf("querying %s %s: %s", rrType, name, dns.RcodeToString[in.Rcode])
	}

	var values []string
	for _, rr := range in.Answer {
		if rr.Header().Rrtype != qtype {
			continue
		}
		values = append(values, rdata(rr))
	}
	return values, nil
}

func (r *DNSResolver) port() string {
	if r.Port == "" {
		return defaultPort
	}
	return r.Port
}

// rdata returns the presentation format of rr without its header.
func rdata(rr dns.RR) string {
	return strings.TrimPrefix(rr.String(), rr.Header().String())
}
