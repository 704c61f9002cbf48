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
	"net"
	"sync"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startServer runs a DNS server on localhost and returns host and port.
func startServer(
	t *testing.T, network string, handler dns.HandlerFunc, tsigSecret map[string]string,
) (string, string) {
	t.Helper()

	started := make(chan struct{})
	srv := &dns.Server{
		Net:               network,
		Handler:           handler,
		TsigSecret:        tsigSecret,
		NotifyStartedFunc: func() { close(started) },
	}
	var addr string
	switch network {
	case "udp":
		pc, err := net.ListenPacket("udp", "127.0.0.1:0")
		require.NoError(t, err)
		srv.PacketConn = pc
		addr = pc.LocalAddr().String()
	default:
		l, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		srv.Listener = l
		addr = l.Addr().String()
	}

	go func() { _ = srv.ActivateAndServe() }()
	<-started
	t.Cleanup(func() { _ = srv.Shutdown() })

	host, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	return host, port
}

func mustRR(t *testing.T, s string) dns.RR {
	t.Helper()
	rr, err := dns.NewRR(s)
	require.NoError(t, err)
	return rr
}

func TestTransaction_String(t *testing.T) {
	tx := Transaction{
		Server: "ns1.example.com",
		Updates: []Update{
			{Action: Add, Name: "demo.example.com", TTL: 300, Value: Value{Type: "A", Contents: "192.0.2.1"}},
			{Action: Delete, Name: "demo.example.com", TTL: 300, Value: Value{Type: "TXT", Contents: `"hello"`}},
		},
	}
	assert.Equal(t, "server ns1.example.com\n"+
		"update add demo.example.com 300 IN A 192.0.2.1\n"+
		"update delete demo.example.com 300 IN TXT \"hello\"\n"+
		"send\n", tx.String())
}

func TestAddressValue(t *testing.T) {
	v, err := AddressValue("192.0.2.1")
	require.NoError(t, err)
	assert.Equal(t, Value{Type: "A", Contents: "192.0.2.1"}, v)

	v, err = AddressValue("2001:db8::1")
	require.NoError(t, err)
	assert.Equal(t, Value{Type: "AAAA", Contents: "2001:db8::1"}, v)

	_, err = AddressValue("lb.example.com")
	assert.Error(t, err)
}

func TestMatches(t *testing.T) {
	tests := []struct {
		name     string
		rrType   string
		expected string
		observed string
		match    bool
	}{
		{"equal A", "A", "192.0.2.1", "192.0.2.1", true},
		{"different A", "A", "192.0.2.1", "192.0.2.2", false},
		{"AAAA notation", "AAAA", "2001:db8:0::1", "2001:db8::1", true},
		{"CNAME without dot", "CNAME", "target.example.com", "target.example.com.", true},
		{"CNAME case", "cname", "Target.example.com.", "target.example.com.", true},
		{"TXT quoted", "TXT", "hello", `"hello"`, true},
		{"MX", "MX", "10 mail.example.com", "10 mail.example.com.", true},
		{"MX priority", "MX", "10 mail.example.com", "20 mail.example.com.", false},
		{"invalid A", "A", "not-an-ip", "192.0.2.1", false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.match, Matches(test.rrType, test.expected, test.observed))
		})
	}
}

func TestDNSResolver(t *testing.T) {
	host, port := startServer(t, "udp", func(w dns.ResponseWriter, r *dns.Msg) {
		m := new(dns.Msg)
		m.SetReply(r)
		q := r.Question[0]
		switch {
		case q.Name == "demo.example.com." && q.Qtype == dns.TypeA:
			m.Answer = []dns.RR{
				mustRR(t, "demo.example.com. 300 IN A 192.0.2.1"),
				mustRR(t, "demo.example.com. 300 IN A 192.0.2.2"),
			}
		case q.Name == "demo.example.com." && q.Qtype == dns.TypeTXT:
			m.Answer = []dns.RR{mustRR(t, `demo.example.com. 300 IN TXT "hello world"`)}
		case q.Name == "broken.example.com.":
			m.Rcode = dns.RcodeServerFailure
		default:
			m.Rcode = dns.RcodeNameError
		}
		_ = w.WriteMsg(m)
	}, nil)

	r := NewDNSResolver()
	r.Port = port
	ctx := context.Background()

	t.Run("should return answer data", func(t *testing.T) {
		values, err := r.Resolve(ctx, host, "A", "demo.example.com")
		require.NoError(t, err)
		assert.Equal(t, []string{"192.0.2.1", "192.0.2.2"}, values)

		values, err = r.Resolve(ctx, host, "TXT", "demo.example.com")
		require.NoError(t, err)
		assert.Equal(t, []string{`"hello world"`}, values)
	})

	t.Run("should return nothing for unknown names", func(t *testing.T) {
		values, err := r.Resolve(ctx, host, "A", "missing.example.com")
		require.NoError(t, err)
		assert.Empty(t, values)
	})

	t.Run("should fail on server errors", func(t *testing.T) {
		_, err := r.Resolve(ctx, host, "A", "broken.example.com")
		assert.Error(t, err)
	})

	t.Run("should reject unknown types", func(t *testing.T) {
		_, err := r.Resolve(ctx, host, "BOGUS", "demo.example.com")
		assert.Error(t, err)
	})
}

func TestDNSResolver_ServerAddress(t *testing.T) {
	var lookups []string
	r := NewDNSResolver()
	r.LookupHost = func(ctx context.Context, host string) ([]string, error) {
		lookups = append(lookups, host)
		return []string{"2001:db8::53", "192.0.2.53"}, nil
	}

	addr, err := r.ServerAddress(context.Background(), "192.0.2.1")
	require.NoError(t, err)
	assert.Equal(t, "192.0.2.1", addr)
	assert.Empty(t, lookups)

	addr, err = r.ServerAddress(context.Background(), "ns1.example.com")
	require.NoError(t, err)
	assert.Equal(t, "192.0.2.53", addr, "IPv4 is preferred")
	assert.Equal(t, []string{"ns1.example.com"}, lookups)
}

func TestParseKeyString(t *testing.T) {
	key, err := ParseKeyString("hmac-sha512:demo.example.com:c2VjcmV0")
	require.NoError(t, err)
	assert.Equal(t, TSIGKey{Algorithm: dns.HmacSHA512, Name: "demo.example.com.", Secret: "c2VjcmV0"}, key)

	key, err = ParseKeyString("demo.example.com:c2VjcmV0")
	require.NoError(t, err)
	assert.Equal(t, dns.HmacMD5, key.Algorithm)

	for _, s := range []string{"", "c2VjcmV0", "a:b:c:d", "demo.example.com:"} {
		_, err := ParseKeyString(s)
		assert.Error(t, err, s)
	}
}

type updateRecorder struct {
	mux     sync.Mutex
	zones   []string
	updates []dns.RR
}

func (u *updateRecorder) handler(t *testing.T) dns.HandlerFunc {
	return func(w dns.ResponseWriter, r *dns.Msg) {
		m := new(dns.Msg)
		m.SetReply(r)
		switch r.Opcode {
		case dns.OpcodeQuery:
			soa := mustRR(t, "example.com. 300 IN SOA ns1.example.com. admin.example.com. 1 60 60 600 60")
			if r.Question[0].Name == "example.com." {
				m.Answer = []dns.RR{soa}
			} else {
				m.Ns = []dns.RR{soa}
			}
		case dns.OpcodeUpdate:
			tsig := r.IsTsig()
			if tsig == nil || w.TsigStatus() != nil {
				m.Rcode = dns.RcodeRefused
				break
			}
			u.mux.Lock()
			u.zones = append(u.zones, r.Question[0].Name)
			u.updates = append(u.updates, r.Ns...)
			u.mux.Unlock()
			m.SetTsig(tsig.Hdr.Name, tsig.Algorithm, 300, time.Now().Unix())
		}
		_ = w.WriteMsg(m)
	}
}

func TestRFC2136_Submit(t *testing.T) {
	const secret = "c2VjcmV0c2VjcmV0c2VjcmV0"
	rec := &updateRecorder{}
	host, port := startServer(t, "tcp", rec.handler(t),
		map[string]string{"demo.example.com.": secret})

	u := NewRFC2136()
	u.Port = port
	tx := Transaction{
		Server: host,
		Updates: []Update{
			{Action: Add, Name: "demo.example.com", TTL: 300, Value: Value{Type: "A", Contents: "192.0.2.1"}},
			{Action: Delete, Name: "old.example.com", TTL: 300, Value: Value{Type: "A", Contents: "192.0.2.9"}},
		},
	}

	t.Run("should send signed updates", func(t *testing.T) {
		err := u.Submit(context.Background(), tx, "hmac-sha256:demo.example.com:"+secret)
		require.NoError(t, err)

		rec.mux.Lock()
		defer rec.mux.Unlock()
		assert.Equal(t, []string{"example.com."}, rec.zones)
		require.Len(t, rec.updates, 2)
		assert.Equal(t, "demo.example.com.", rec.updates[0].Header().Name)
		assert.Equal(t, uint16(dns.ClassINET), rec.updates[0].Header().Class)
		assert.Equal(t, "old.example.com.", rec.updates[1].Header().Name)
		assert.Equal(t, uint16(dns.ClassNONE), rec.updates[1].Header().Class)
	})

	t.Run("should report refused updates", func(t *testing.T) {
		err := u.Submit(context.Background(), tx, "hmac-sha256:demo.example.com:d3Jvbmd3cm9uZw==")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "REFUSED")
	})

	t.Run("should reject malformed keys", func(t *testing.T) {
		assert.Error(t, u.Submit(context.Background(), tx, "nokey"))
	})
}
