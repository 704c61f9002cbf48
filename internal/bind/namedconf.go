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
	"strings"

	"k8s.io/utils/pointer"
)

// NamedConf is the top-level named.conf.
type NamedConf struct {
	Options Options
	// Logging block, omitted when nil.
	Logging *Logging
	// Files included after options and logging, in order.
	Includes []string
}

func (c NamedConf) String() string {
	s := c.Options.String()
	if c.Logging != nil {
		s += "\n" + c.Logging.String()
	}
	if len(c.Includes) > 0 {
		s += "\n"
	}
	for _, inc := range c.Includes {
		s += "include \"" + inc + "\";\n"
	}
	return s
}

// Options is the named.conf options block.
type Options struct {
	// Working directory of the server.
	Directory string
	// Address match lists, rendered as is.
	ListenOn       []string
	ListenOnV6     []string
	AllowTransfer  []string
	AllowRecursion []string
	// Answer authoritatively for NXDOMAIN, off conforms to RFC1035.
	AuthNXDomain *bool
	Recursion    *bool
	PIDFile      string
}

// DefaultOptions is an authoritative only server listening on all addresses.
func DefaultOptions() Options {
	return Options{
		Directory:      "/var/bind",
		ListenOn:       []string{"0.0.0.0/0"},
		ListenOnV6:     []string{"any"},
		AllowTransfer:  []string{"none"},
		AuthNXDomain:   pointer.BoolPtr(false),
		PIDFile:        "/var/run/named/named.pid",
		AllowRecursion: []string{"none"},
		Recursion:      pointer.BoolPtr(false),
	}
}

func (o Options) String() string {
	s := "options {\n"
	if len(o.Directory) > 0 {
		s += "\tdirectory \"" + o.Directory + "\";\n"
	}
	if len(o.ListenOn) > 0 {
		s += "\tlisten-on " + matchList(o.ListenOn) + ";\n"
	}
	if len(o.ListenOnV6) > 0 {
		s += "\tlisten-on-v6 " + matchList(o.ListenOnV6) + ";\n"
	}
	if len(o.AllowTransfer) > 0 {
		s += "\tallow-transfer " + matchList(o.AllowTransfer) + ";\n"
	}
	if o.AuthNXDomain != nil {
		s += "\tauth-nxdomain " + yesOrNo(*o.AuthNXDomain) + ";\n"
	}
	if len(o.PIDFile) > 0 {
		s += "\tpid-file \"" + o.PIDFile + "\";\n"
	}
	if len(o.AllowRecursion) > 0 {
		s += "\tallow-recursion " + matchList(o.AllowRecursion) + ";\n"
	}
	if o.Recursion != nil {
		s += "\trecursion " + yesOrNo(*o.Recursion) + ";\n"
	}
	s += "};\n"
	return s
}

// Logging sends the given categories to a single syslog channel.
type Logging struct {
	Channel  string
	Syslog   string
	Severity string
	// Categories routed to Channel.
	Categories []string
}

// VerboseLogging logs every category at full debug level to syslog.
func VerboseLogging() *Logging {
	return &Logging{
		Channel:  "custom_debug_syslog",
		Syslog:   "daemon",
		Severity: "debug 20",
		Categories: []string{
			"default", "general", "database", "security", "config",
			"resolver", "xfer-in", "xfer-out", "notify", "client",
			"unmatched", "queries", "network", "update", "dispatch",
			"dnssec", "lame-servers",
		},
	}
}

func (l Logging) String() string {
	s := "logging {\n"
	s += "\tchannel " + l.Channel + " {\n"
	if len(l.Syslog) > 0 {
		s += "\t\tsyslog " + l.Syslog + ";\n"
	}
	if len(l.Severity) > 0 {
		s += "\t\tseverity " + l.Severity + ";\n"
	}
	s += "\t};\n"
	for _, c := range l.Categories {
		s += "\tcategory " + c + " { " + l.Channel + "; };\n"
	}
	s += "};\n"
	return s
}

func matchList(elements []string) string {
	return "{ " + strings.Join(elements, "; ") + "; }"
}

func yesOrNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
