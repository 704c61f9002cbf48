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
	"time"

	"github.com/miekg/dns"
)

// TSIGKey is a parsed nsupdate -y key string.
type TSIGKey struct {
	Algorithm string
	Name      string
	Secret    string
}

// nsupdate default for key strings without algorithm.
const defaultTSIGAlgorithm = dns.HmacMD5

// ParseKeyString parses "[alg:]name:secret".
func ParseKeyString(s string) (TSIGKey, error) {
	parts := strings.Split(s, ":")
	var key TSIGKey
	switch len(parts) {
	case 2:
		key = TSIGKey{Algorithm: defaultTSIGAlgorithm, Name: parts[0], Secret: parts[1]}
	case 3:
		key = TSIGKey{Algorithm: dns.Fqdn(strings.ToLower(parts[0])), Name: parts[1], Secret: parts[2]}
	default:
		return TSIGKey{}, fmt.Errorf("key string must be [alg:]name:secret")
	}
	if key.Name == "" || key.Secret == "" {
		return TSIGKey{}, fmt.Errorf("key string must be [alg:]name:secret")
	}
	key.Name = dns.Fqdn(key.Name)
	return key, nil
}

// RFC2136 submits transactions as TSIG signed DNS UPDATE messages.
type RFC2136 struct {
	Client *dns.Client
	// Port of the server, defaults to 53.
	Port string
	// Fudge is the allowed clock skew of signatures.
	Fudge uint16
	now   func() time.Time
}

var _ Updater = (*RFC2136)(nil)

func NewRFC2136() *RFC2136 {
	return &RFC2136{
		Client: &dns.Client{Net: "tcp"},
		Port:   defaultPort,
		Fudge:  300,
		now:    time.Now,
	}
}

// Submit sends one UPDATE message per zone touched by tx.
func (u *RFC2136) Submit(ctx context.Context, tx Transaction, keyString string) error {
	key, err := ParseKeyString(keyString)
	if err != nil {
		return err
	}
	server := net.JoinHostPort(tx.Server, u.port())

	var (
		zones   []string
		byZone  = map[string][]Update{}
		zoneFor = map[string]string{}
	)
	for _, update := range tx.Updates {
		name := dns.Fqdn(update.Name)
		zone, ok := zoneFor[name]
		if !ok {
			if zone, err = u.findZone(ctx, server, name); err != nil {
				return err
			}
			zoneFor[name] = zone
		}
		if _, ok := byZone[zone]; !ok {
			zones = append(zones, zone)
		}
		byZone[zone] = append(byZone[zone], update)
	}

	for _, zone := range zones {
		if err := u.send(ctx, server, zone, byZone[zone], key); err != nil {
			return err
		}
	}
	return nil
}

func (u *RFC2136) send(
	ctx context.Context, server, zone string, updates []Update, key TSIGKey,
) error {
	m := new(dns.Msg)
	m.SetUpdate(zone)
	for _, update := range updates {
		rr, err := update.RR()
		if err != nil {
			return fmt.Errorf("%s: %w", update, err)
		}
		switch update.Action {
		case Add:
			m.Insert([]dns.RR{rr})
		case Delete:
			m.Remove([]dns.RR{rr})
		default:
			return fmt.Errorf("%s: unknown action", update)
		}
	}
	m.SetTsig(key.Name, key.Algorithm, u.Fudge, u.timeNow().Unix())

	c := &dns.Client{
		Net:        u.Client.Net,
		Timeout:    u.Client.Timeout,
		TsigSecret: map[string]string{key.Name: key.Secret},
	}
	in, _, err := c.ExchangeContext(ctx, m, server)
	if err != nil {
		return fmt.Errorf("updating zone %s on %s: %w", zone, server, err)
	}
	if in.Rcode != dns.RcodeSuccess {
		return fmt.Errorf("updating zone %s on %s: %s", zone, server, dns.RcodeToString[in.Rcode])
	}
	return nil
}

// findZone returns the apex of the zone containing name, as told by server.
func (u *RFC2136) findZone(ctx context.Context, server, name string) (string, error) {
	m := new(dns.Msg)
	m.SetQuestion(name, dns.TypeSOA)
	in, _, err := u.Client.ExchangeContext(ctx, m, server)
	if err != nil {
		return "", fmt.Errorf("finding zone of %s: %w", name, err)
	}
	for _, rrs := range [][]dns.RR{in.Answer, in.Ns} {
		for _, rr := range rrs {
			if soa, ok := rr.(*dns.SOA); ok {
				return soa.Hdr.Name, nil
			}
		}
	}
	return "", fmt.Errorf("finding zone of %s: no SOA in response (%s)",
		name, dns.RcodeToString[in.Rcode])
}

func (u *RFC2136) timeNow() time.Time {
	if u.now == nil {
		return time.Now()
	}
	return u.now()
}

func (u *RFC2136) port() string {
	if u.Port == "" {
		return defaultPort
	}
	return u.Port
}
