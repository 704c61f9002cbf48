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
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"

	dnsv1alpha1 "dnssec-operator.io/dnssec-operator/apis/dns/v1alpha1"
	"dnssec-operator.io/dnssec-operator/internal/bind"
	"dnssec-operator.io/dnssec-operator/internal/metrics"
	"dnssec-operator.io/dnssec-operator/internal/queue"
	"dnssec-operator.io/dnssec-operator/internal/reconcile"
	"dnssec-operator.io/dnssec-operator/internal/tickloop"
)

// ZoneStore lists DNSSECZones and patches their status.
type ZoneStore interface {
	List(ctx context.Context) ([]dnsv1alpha1.DNSSECZone, error)
	PatchStatus(ctx context.Context, zone *dnsv1alpha1.DNSSECZone, fields map[string]interface{}) error
}

// ConfigGen emits zone files, implemented by bind.ConfigGen.
type ConfigGen interface {
	Zones() ([]string, error)
	AddOrUpdateZone(
		ctx context.Context, spec dnsv1alpha1.DNSSECZoneSpec, status bind.Key,
	) (bind.ZoneResult, error)
	DeleteZone(domainName string) (bool, error)
}

// RestartFunc asks the name server to pick up changed files.
type RestartFunc func() error

const (
	DefaultInterval    = 60 * time.Second
	DefaultConcurrency = 4
)

// Reconciler keeps the emitted BIND configuration in line with DNSSECZones.
// Watch events are queued and processed by a periodic tick.
type Reconciler struct {
	log         logr.Logger
	store       ZoneStore
	configGen   ConfigGen
	restart     RestartFunc
	concurrency int

	addQueue    *queue.Queue
	deleteQueue *queue.Queue
	// set by zone changes, consumed once per tick
	restartRequested atomic.Bool
	loop             *tickloop.Loop
}

// Options of a Reconciler, zero values select defaults.
type Options struct {
	Interval    time.Duration
	Concurrency int
}

func NewReconciler(
	log logr.Logger, store ZoneStore, configGen ConfigGen,
	restart RestartFunc, opts Options,
) *Reconciler {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	r := &Reconciler{
		log:         log,
		store:       store,
		configGen:   configGen,
		restart:     restart,
		concurrency: opts.Concurrency,
		addQueue:    queue.New(),
		deleteQueue: queue.New(),
	}
	r.loop = tickloop.New(log, "zone", opts.Interval, r.Tick)
	return r
}

// SetupWithManager subscribes to DNSSECZone events and
// adds the tick loop to the manager.
func (r *Reconciler) SetupWithManager(mgr ctrl.Manager) error {
	if err := reconcile.Subscribe(
		context.Background(), mgr.GetCache(), &dnsv1alpha1.DNSSECZone{}, r.OnEvent); err != nil {
		return fmt.Errorf("subscribing to DNSSECZones: %w", err)
	}
	return mgr.Add(r)
}

// Start runs the tick loop until ctx is done.
func (r *Reconciler) Start(ctx context.Context) error {
	return r.loop.Start(ctx)
}

// ReadyCheck succeeds after the first completed tick.
func (r *Reconciler) ReadyCheck(req *http.Request) error {
	return r.loop.ReadyCheck(req)
}

// OnEvent queues the zone of a watch event.
// A deletion drops an addition of the same domain still pending.
func (r *Reconciler) OnEvent(eventType queue.EventType, obj client.Object) {
	zone, ok := obj.(*dnsv1alpha1.DNSSECZone)
	if !ok {
		return
	}
	name := zone.Spec.DomainName
	if name == "" {
		r.log.Info("ignoring zone without domain name",
			"event", eventType, "name", zone.Name, "namespace", zone.Namespace)
		return
	}

	r.log.V(1).Info("queueing zone", "event", eventType, "zone", name)
	switch eventType {
	case queue.Deleted:
		r.addQueue.Remove(name)
		r.deleteQueue.Set(name, zone)
	default:
		r.addQueue.Set(name, zone)
	}
	r.loop.Trigger()
}

// Tick performs one reconciliation pass.
// Errors of single zones do not stop the pass and are returned aggregated.
func (r *Reconciler) Tick(ctx context.Context) error {
	zones, err := r.store.List(ctx)
	if err != nil {
		return err
	}
	emitted, err := r.configGen.Zones()
	if err != nil {
		return fmt.Errorf("listing emitted zones: %w", err)
	}

	data := newReconcilerData(zones, emitted)
	for _, name := range data.Dispensable() {
		r.log.Info("zone no longer declared", "zone", name)
		r.deleteQueue.Set(name, &dnsv1alpha1.DNSSECZone{
			Spec: dnsv1alpha1.DNSSECZoneSpec{DomainName: name},
		})
	}
	for _, name := range data.Missing() {
		r.log.Info("zone not emitted yet", "zone", name)
		r.addQueue.Set(name, data.Zone(name))
	}
	for _, name := range data.WithoutProperStatus() {
		r.log.V(1).Info("zone without key in status", "zone", name)
		r.addQueue.Set(name, data.Zone(name))
	}

	var result *multierror.Error
	// deletions first, so zones declared again end up added
	result = multierror.Append(result, r.forEach(ctx, r.deleteQueue.Drain(),
		func(ctx context.Context, zone *dnsv1alpha1.DNSSECZone) error {
			_, err := r.Remove(ctx, zone)
			return err
		}))
	result = multierror.Append(result, r.forEach(ctx, r.addQueue.Drain(),
		func(ctx context.Context, zone *dnsv1alpha1.DNSSECZone) error {
			_, err := r.Add(ctx, zone)
			return err
		}))

	if r.restartRequested.Swap(false) {
		if err := r.restart(); err != nil {
			// files are already written, later ticks would see no change
			r.restartRequested.Store(true)
			result = multierror.Append(result, fmt.Errorf("requesting restart: %w", err))
		}
	}
	return result.ErrorOrNil()
}

func (r *Reconciler) forEach(
	ctx context.Context, items map[string]client.Object,
	fn func(ctx context.Context, zone *dnsv1alpha1.DNSSECZone) error,
) error {
	var (
		g         errgroup.Group
		sem       = semaphore.NewWeighted(int64(r.concurrency))
		result    *multierror.Error
		resultMux sync.Mutex
	)
	for name, obj := range items {
		name := name
		zone, ok := obj.(*dnsv1alpha1.DNSSECZone)
		if !ok {
			continue
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			_ = g.Wait()
			return err
		}
		g.Go(func() error {
			defer sem.Release(1)
			if err := fn(ctx, zone); err != nil {
				r.log.Error(err, "reconciling zone", "zone", name)
				resultMux.Lock()
				result = multierror.Append(result, fmt.Errorf("zone %s: %w", name, err))
				resultMux.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return result.ErrorOrNil()
}

// AddResult is the outcome of Reconciler.Add.
type AddResult struct {
	// Changed is true if any file of the zone was written.
	Changed bool
	// Status as reported to the DNSSECZone.
	Status dnsv1alpha1.DNSSECZoneStatus
}

// Add emits the files of zone and reports its key in the status.
// Invalid zones get the validation error reported in the status.
func (r *Reconciler) Add(ctx context.Context, zone *dnsv1alpha1.DNSSECZone) (AddResult, error) {
	log := r.log.WithValues("zone", zone.Spec.DomainName,
		"name", zone.Name, "namespace", zone.Namespace)

	res, err := r.configGen.AddOrUpdateZone(ctx, zone.Spec, bind.Key{
		Name:      zone.Status.KeyName,
		Algorithm: zone.Status.DNSSECAlgorithm,
		Secret:    zone.Status.DNSSECKey,
	})

	desired := zone.Status
	var verr *bind.ValidationError
	switch {
	case errors.As(err, &verr):
		desired.Error = verr.Error()
	case err != nil:
		return AddResult{}, err
	default:
		desired.KeyName = res.Key.Name
		desired.DNSSECKey = res.Key.Secret
		desired.DNSSECAlgorithm = res.Key.Algorithm
		desired.Error = ""
	}

	if res.Changed {
		r.restartRequested.Store(true)
		metrics.IncZoneChanges()
	}

	if patch := diffStatus(zone.Status, desired); !patch.empty() {
		log.V(1).Info("patching status", "fields", len(patch.fields()))
		if perr := r.store.PatchStatus(ctx, zone.DeepCopy(), patch.fields()); perr != nil {
			err = multierror.Append(err, perr).ErrorOrNil()
		}
	}
	return AddResult{Changed: res.Changed, Status: desired}, err
}

// Remove deletes the files of zone.
func (r *Reconciler) Remove(ctx context.Context, zone *dnsv1alpha1.DNSSECZone) (bool, error) {
	changed, err := r.configGen.DeleteZone(zone.Spec.DomainName)
	if changed {
		r.restartRequested.Store(true)
		metrics.IncZoneChanges()
	}
	return changed, err
}
