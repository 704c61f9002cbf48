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

// Package bind generates BIND configuration, zone data and TSIG keys.
package bind

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/hashicorp/go-multierror"

	dnsv1alpha1 "dnssec-operator.io/dnssec-operator/apis/dns/v1alpha1"
	"dnssec-operator.io/dnssec-operator/internal/fileutil"
)

const (
	DefaultFileMode os.FileMode = 0664
	DefaultDirMode  os.FileMode = 0755

	namedConfFileName = "named.conf"
	generatedDirName  = "gen"
	keyFileExt        = ".key"
	confFileExt       = ".conf"
	zoneFileExt       = ".db"
)

// Config of a ConfigGen.
type Config struct {
	// ConfigDir holds named.conf and the generated key and zone statements.
	ConfigDir string
	// VarDir holds zone data files.
	VarDir string
	// Nameserver1 is the SOA master and first NS record of every zone.
	Nameserver1 string
	// Nameserver2 is an optional second NS record.
	Nameserver2    string
	VerboseLogging bool
	FileMode       os.FileMode
	DirMode        os.FileMode
}

// ConfigGen emits the files BIND needs to serve DNSSECZones.
type ConfigGen struct {
	log    logr.Logger
	config Config
	keys   *KeyManager
	now    func() time.Time

	// serializes named.conf generation
	namedConfMux sync.Mutex
}

// NewConfigGen creates the output directories and returns a ConfigGen.
func NewConfigGen(log logr.Logger, config Config, keys *KeyManager) (*ConfigGen, error) {
	if config.FileMode == 0 {
		config.FileMode = DefaultFileMode
	}
	if config.DirMode == 0 {
		config.DirMode = DefaultDirMode
	}
	if keys.FileMode == 0 {
		keys.FileMode = config.FileMode
	}

	g := &ConfigGen{
		log:    log,
		config: config,
		keys:   keys,
		now:    time.Now,
	}
	if err := os.MkdirAll(g.GeneratedDir(), config.DirMode); err != nil {
		return nil, fmt.Errorf("creating %s: %w", g.GeneratedDir(), err)
	}
	if err := os.Chmod(g.GeneratedDir(), config.DirMode); err != nil {
		return nil, fmt.Errorf("chmod %s: %w", g.GeneratedDir(), err)
	}
	if err := os.MkdirAll(config.VarDir, config.DirMode); err != nil {
		return nil, fmt.Errorf("creating %s: %w", config.VarDir, err)
	}
	return g, nil
}

func (g *ConfigGen) NamedConfFile() string {
	return filepath.Join(g.config.ConfigDir, namedConfFileName)
}

func (g *ConfigGen) GeneratedDir() string {
	return filepath.Join(g.config.ConfigDir, generatedDirName)
}

func (g *ConfigGen) KeyFile(domainName string) string {
	return filepath.Join(g.GeneratedDir(), domainName+keyFileExt)
}

func (g *ConfigGen) ConfFile(domainName string) string {
	return filepath.Join(g.GeneratedDir(), domainName+confFileExt)
}

func (g *ConfigGen) ZoneFile(domainName string) string {
	return filepath.Join(g.config.VarDir, domainName+zoneFileExt)
}

// Zones returns the sorted domain names that have a zone statement on disk.
func (g *ConfigGen) Zones() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(g.GeneratedDir(), "*"+confFileExt))
	if err != nil {
		return nil, err
	}
	zones := make([]string, 0, len(matches))
	for _, m := range matches {
		zones = append(zones, strings.TrimSuffix(filepath.Base(m), confFileExt))
	}
	sort.Strings(zones)
	return zones, nil
}

// EmitResult tells which zone files were written.
type EmitResult struct {
	ConfChanged     bool
	ZoneFileChanged bool
}

func (r EmitResult) Changed() bool {
	return r.ConfChanged || r.ZoneFileChanged
}

// Emit writes the zone statement and zone data of zone.
// Zone data that does not load is not written.
func (g *ConfigGen) Emit(zone Zone, keyName string) (EmitResult, error) {
	data, err := g.zoneData(zone)
	if err != nil {
		return EmitResult{}, err
	}
	return g.emit(zone, data, keyName)
}

// zoneData renders the zone data with a fresh serial and checks it loads.
func (g *ConfigGen) zoneData(zone Zone) (string, error) {
	data := zone.Data(Serial(g.now()))
	if err := zone.Check(data); err != nil {
		return "", err
	}
	return data, nil
}

func (g *ConfigGen) emit(zone Zone, data, keyName string) (EmitResult, error) {
	var (
		res EmitResult
		err error
	)
	zoneFile := g.ZoneFile(zone.DomainName)
	res.ConfChanged, err = fileutil.ConditionalWrite(
		g.ConfFile(zone.DomainName), zone.Statement(zoneFile, keyName),
		nil, g.config.FileMode)
	if err != nil {
		return res, err
	}
	res.ZoneFileChanged, err = fileutil.ConditionalWrite(
		zoneFile, data, NormalizeSerial, g.config.FileMode)
	if err != nil {
		return res, err
	}
	return res, nil
}

// GenerateNamedConf writes named.conf including all generated keys and zones.
func (g *ConfigGen) GenerateNamedConf() (bool, error) {
	g.namedConfMux.Lock()
	defer g.namedConfMux.Unlock()

	keys, err := filepath.Glob(filepath.Join(g.GeneratedDir(), "*"+keyFileExt))
	if err != nil {
		return false, err
	}
	confs, err := filepath.Glob(filepath.Join(g.GeneratedDir(), "*"+confFileExt))
	if err != nil {
		return false, err
	}
	sort.Strings(keys)
	sort.Strings(confs)

	conf := NamedConf{
		Options:  DefaultOptions(),
		Includes: append(keys, confs...),
	}
	if g.config.VerboseLogging {
		conf.Logging = VerboseLogging()
	}
	return fileutil.ConditionalWrite(
		g.NamedConfFile(), conf.String(), nil, g.config.FileMode)
}

// ZoneResult is the outcome of AddOrUpdateZone.
type ZoneResult struct {
	// Changed is true if any file was written.
	Changed bool
	// Key now protecting updates to the zone.
	Key Key
}

// AddOrUpdateZone brings all files of the zone in line with spec.
// status is the key currently recorded for the zone, if any.
// Invalid specs return a *ValidationError before any file is touched.
func (g *ConfigGen) AddOrUpdateZone(
	ctx context.Context, spec dnsv1alpha1.DNSSECZoneSpec, status Key,
) (ZoneResult, error) {
	zone, err := NewZone(spec, g.config.Nameserver1, g.config.Nameserver2)
	if err != nil {
		return ZoneResult{}, err
	}
	// checked before the key is touched
	data, err := g.zoneData(zone)
	if err != nil {
		return ZoneResult{}, err
	}

	log := g.log.WithValues("zone", zone.DomainName)
	key, err := g.keys.GetKey(ctx, zone.DomainName, g.KeyFile(zone.DomainName), status)
	if err != nil {
		return ZoneResult{}, fmt.Errorf("key for zone %s: %w", zone.DomainName, err)
	}

	emitted, err := g.emit(zone, data, key.Name)
	if err != nil {
		return ZoneResult{}, fmt.Errorf("emitting zone %s: %w", zone.DomainName, err)
	}

	namedConfChanged, err := g.GenerateNamedConf()
	if err != nil {
		return ZoneResult{}, fmt.Errorf("generating named.conf: %w", err)
	}

	log.V(1).Info("zone processed",
		"keyChanged", key.Changed,
		"confChanged", emitted.ConfChanged,
		"zoneFileChanged", emitted.ZoneFileChanged,
		"namedConfChanged", namedConfChanged)
	res := ZoneResult{
		Changed: key.Changed || emitted.Changed() || namedConfChanged,
		Key:     key.Key,
	}
	if res.Changed {
		log.Info("zone changed")
	}
	return res, nil
}

// DeleteZone removes all files of the zone and regenerates named.conf.
// Files already gone are ignored.
func (g *ConfigGen) DeleteZone(domainName string) (bool, error) {
	if !IsDomainName(domainName) {
		return false, &ValidationError{
			Field: "domainName", Value: domainName, Reason: "not a valid domain name"}
	}

	var (
		changed bool
		result  *multierror.Error
	)
	for _, f := range []string{
		g.KeyFile(domainName), g.ConfFile(domainName), g.ZoneFile(domainName),
	} {
		err := os.Remove(f)
		switch {
		case err == nil:
			changed = true
		case errors.Is(err, os.ErrNotExist):
		default:
			result = multierror.Append(result, err)
		}
	}

	namedConfChanged, err := g.GenerateNamedConf()
	if err != nil {
		result = multierror.Append(result, fmt.Errorf("generating named.conf: %w", err))
	}
	if changed {
		g.log.Info("zone deleted", "zone", domainName)
	}
	return changed || namedConfChanged, result.ErrorOrNil()
}
