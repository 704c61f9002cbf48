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

package update

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/hashicorp/go-multierror"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"

	dnsv1alpha1 "dnssec-operator.io/dnssec-operator/apis/dns/v1alpha1"
	"dnssec-operator.io/dnssec-operator/internal/dnsupdate"
	"dnssec-operator.io/dnssec-operator/internal/metrics"
	"dnssec-operator.io/dnssec-operator/internal/queue"
	"dnssec-operator.io/dnssec-operator/internal/reconcile"
	"dnssec-operator.io/dnssec-operator/internal/tickloop"
)

// UpdateStore lists DNSUpdates.
type UpdateStore interface {
	List(ctx context.Context) ([]dnsv1alpha1.DNSUpdate, error)
}

const DefaultInterval = 60 * time.Second

// Reconciler keeps the records of DNSUpdates published on remote servers.
type Reconciler struct {
	log      logr.Logger
	store    UpdateStore
	services dnsupdate.ServiceLookup
	resolver dnsupdate.Resolver
	updater  dnsupdate.Updater

	addQueue    *queue.Queue
	deleteQueue *queue.Queue
	loop        *tickloop.Loop
}

func NewReconciler(
	log logr.Logger, store UpdateStore,
	services dnsupdate.ServiceLookup, resolver dnsupdate.Resolver, updater dnsupdate.Updater,
	interval time.Duration,
) *Reconciler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	r := &Reconciler{
		log:         log,
		store:       store,
		services:    services,
		resolver:    resolver,
		updater:     updater,
		addQueue:    queue.New(),
		deleteQueue: queue.New(),
	}
	r.loop = tickloop.New(log, "dnsupdate", interval, r.Tick)
	return r
}

// SetupWithManager subscribes to DNSUpdate events and
// adds the tick loop to the manager.
func (r *Reconciler) SetupWithManager(mgr ctrl.Manager) error {
	if err := reconcile.Subscribe(
		context.Background(), mgr.GetCache(), &dnsv1alpha1.DNSUpdate{}, r.OnEvent); err != nil {
		return fmt.Errorf("subscribing to DNSUpdates: %w", err)
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

// OnEvent queues the DNSUpdate of a watch event.
func (r *Reconciler) OnEvent(eventType queue.EventType, obj client.Object) {
	update, ok := obj.(*dnsv1alpha1.DNSUpdate)
	if !ok {
		return
	}
	key := client.ObjectKeyFromObject(update).String()

	r.log.V(1).Info("queueing update", "event", eventType, "update", key)
	switch eventType {
	case queue.Deleted:
		r.addQueue.Remove(key)
		r.deleteQueue.Set(key, update)
	default:
		r.addQueue.Set(key, update)
	}
	r.loop.Trigger()
}

// Tick withdraws records of deleted DNSUpdates and
// publishes missing records of all others.
func (r *Reconciler) Tick(ctx context.Context) error {
	var result *multierror.Error

	deleted := r.deleteQueue.Drain()
	for key, obj := range deleted {
		update, ok := obj.(*dnsv1alpha1.DNSUpdate)
		if !ok {
			continue
		}
		if err := r.Handle(ctx, update, false); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", key, err))
			// records stay published until a later tick withdraws them
			if !r.addQueue.Has(key) && !r.deleteQueue.Has(key) {
				r.deleteQueue.Set(key, update)
			}
		}
	}

	updates, err := r.store.List(ctx)
	if err != nil {
		return multierror.Append(result, err)
	}
	pending := r.addQueue.Drain()
	for i := range updates {
		update := &updates[i]
		key := client.ObjectKeyFromObject(update).String()
		delete(pending, key)
		if err := r.Handle(ctx, update, true); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", key, err))
		}
	}
	// added since listing
	for key, obj := range pending {
		update, ok := obj.(*dnsv1alpha1.DNSUpdate)
		if !ok {
			continue
		}
		if err := r.Handle(ctx, update, true); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", key, err))
		}
	}
	return result.ErrorOrNil()
}

// Handle submits one transaction for update.
// Existing updates add records not yet answered by the server,
// removed ones delete all their records.
// Records whose values cannot be looked up are left out of the
// transaction and reported in the returned error.
func (r *Reconciler) Handle(
	ctx context.Context, update *dnsv1alpha1.DNSUpdate, existing bool,
) error {
	log := r.log.WithValues(
		"update", client.ObjectKeyFromObject(update).String(),
		"server", update.Spec.DNSServer)

	action := dnsupdate.Delete
	if existing {
		action = dnsupdate.Add
	}

	var (
		tx = dnsupdate.Transaction{Server: update.Spec.DNSServer}
		// resolved on first use
		serverAddress string
		lookupErrs    *multierror.Error
	)
	for _, record := range update.Spec.Records {
		log := log.WithValues("name", record.Name)

		if record.Record == nil && record.Service == nil {
			log.Info("skipping record with neither record nor service")
			continue
		}
		expected, err := r.expectedValues(ctx, update.Namespace, record)
		if err != nil {
			log.Error(err, "looking up expected values")
			lookupErrs = multierror.Append(lookupErrs, fmt.Errorf("record %s: %w", record.Name, err))
			continue
		}
		if len(expected) == 0 {
			log.Info("skipping record without values")
			continue
		}

		if existing {
			if serverAddress == "" {
				serverAddress, err = r.resolver.ServerAddress(ctx, update.Spec.DNSServer)
				if err != nil {
					log.Error(err, "resolving server, records are considered missing")
				}
			}
			if serverAddress != "" && r.satisfied(ctx, log, serverAddress, record.Name, expected) {
				log.V(1).Info("record up to date")
				continue
			}
		}

		for _, v := range expected {
			tx.Updates = append(tx.Updates, dnsupdate.Update{
				Action: action,
				Name:   record.Name,
				TTL:    record.TTL,
				Value:  v,
			})
		}
	}

	if len(tx.Updates) == 0 {
		return lookupErrs.ErrorOrNil()
	}

	log.Info("submitting update", "updates", len(tx.Updates))
	err := r.updater.Submit(ctx, tx, update.Spec.KeyString)
	metrics.ObserveUpdateTransaction(err)
	if err != nil {
		err = fmt.Errorf("submitting update: %w", err)
		if lookupErrs == nil {
			return err
		}
		return multierror.Append(lookupErrs, err)
	}
	return lookupErrs.ErrorOrNil()
}

func (r *Reconciler) expectedValues(
	ctx context.Context, namespace string, record dnsv1alpha1.UpdateRecord,
) ([]dnsupdate.Value, error) {
	switch {
	case record.Record != nil:
		return []dnsupdate.Value{{
			Type:     string(record.Record.Type),
			Contents: record.Record.Contents,
		}}, nil
	case record.Service != nil:
		svcNamespace := record.Service.Namespace
		if svcNamespace == "" {
			svcNamespace = namespace
		}
		return r.services.ServiceAddresses(ctx, svcNamespace, record.Service.Name)
	default:
		return nil, fmt.Errorf("record %s has neither record nor service", record.Name)
	}
}

// satisfied returns true if the server answers any of the expected values.
func (r *Reconciler) satisfied(
	ctx context.Context, log logr.Logger,
	serverAddress, name string, expected []dnsupdate.Value,
) bool {
	answers := map[string][]string{}
	for _, v := range expected {
		observed, ok := answers[v.Type]
		if !ok {
			var err error
			observed, err = r.resolver.Resolve(ctx, serverAddress, v.Type, name)
			if err != nil {
				log.Info("lookup failed, record is considered missing",
					"type", v.Type, "error", err.Error())
			}
			answers[v.Type] = observed
		}
		for _, o := range observed {
			if dnsupdate.Matches(v.Type, v.Contents, o) {
				return true
			}
		}
	}
	return false
}
