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

// Package reconcile adapts the controller-runtime client and cache
// to the stores used by the reconcilers.
package reconcile

import (
	"context"
	"encoding/json"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/types"
	toolscache "k8s.io/client-go/tools/cache"
	"sigs.k8s.io/controller-runtime/pkg/cache"
	"sigs.k8s.io/controller-runtime/pkg/client"

	dnsv1alpha1 "dnssec-operator.io/dnssec-operator/apis/dns/v1alpha1"
	"dnssec-operator.io/dnssec-operator/internal/dnsupdate"
	"dnssec-operator.io/dnssec-operator/internal/queue"
)

// ZoneStore lists DNSSECZones and patches their status.
type ZoneStore struct {
	client.Client
	Namespace string
}

// List returns all DNSSECZones in the namespace.
func (s *ZoneStore) List(ctx context.Context) ([]dnsv1alpha1.DNSSECZone, error) {
	list := &dnsv1alpha1.DNSSECZoneList{}
	if err := s.Client.List(ctx, list, client.InNamespace(s.Namespace)); err != nil {
		return nil, fmt.Errorf("listing DNSSECZones: %w", err)
	}
	return list.Items, nil
}

// PatchStatus merge patches the given status fields, nil values clear a field.
func (s *ZoneStore) PatchStatus(
	ctx context.Context, zone *dnsv1alpha1.DNSSECZone, fields map[string]interface{},
) error {
	data, err := json.Marshal(map[string]interface{}{"status": fields})
	if err != nil {
		return err
	}
	if err := s.Status().Patch(ctx, zone, client.RawPatch(types.MergePatchType, data)); err != nil {
		return fmt.Errorf("patching DNSSECZone %s/%s status: %w", zone.Namespace, zone.Name, err)
	}
	return nil
}

// UpdateStore lists DNSUpdates.
type UpdateStore struct {
	client.Client
	Namespace string
}

// List returns all DNSUpdates in the namespace.
func (s *UpdateStore) List(ctx context.Context) ([]dnsv1alpha1.DNSUpdate, error) {
	list := &dnsv1alpha1.DNSUpdateList{}
	if err := s.Client.List(ctx, list, client.InNamespace(s.Namespace)); err != nil {
		return nil, fmt.Errorf("listing DNSUpdates: %w", err)
	}
	return list.Items, nil
}

// ServiceLookup reads load balancer ingress addresses of Services.
// Services may live in any namespace, so the Reader must not be
// restricted to the watched namespace, e.g. the manager's API reader.
type ServiceLookup struct {
	client.Reader
}

var _ dnsupdate.ServiceLookup = (*ServiceLookup)(nil)

// ServiceAddresses returns one A or AAAA value per ingress IP.
// Ingress entries with host names only are skipped.
func (l *ServiceLookup) ServiceAddresses(
	ctx context.Context, namespace, name string,
) ([]dnsupdate.Value, error) {
	svc := &corev1.Service{}
	if err := l.Get(ctx, types.NamespacedName{
		Name:      name,
		Namespace: namespace,
	}, svc); err != nil {
		return nil, fmt.Errorf("getting Service %s/%s: %w", namespace, name, err)
	}

	var values []dnsupdate.Value
	for _, ingress := range svc.Status.LoadBalancer.Ingress {
		if ingress.IP == "" {
			continue
		}
		v, err := dnsupdate.AddressValue(ingress.IP)
		if err != nil {
			return nil, fmt.Errorf("service %s/%s: %w", namespace, name, err)
		}
		values = append(values, v)
	}
	return values, nil
}

// EventHandler receives watch events.
type EventHandler func(eventType queue.EventType, obj client.Object)

// Subscribe forwards informer events for obj's kind to handler.
func Subscribe(
	ctx context.Context, c cache.Cache, obj client.Object, handler EventHandler,
) error {
	informer, err := c.GetInformer(ctx, obj)
	if err != nil {
		return fmt.Errorf("getting informer: %w", err)
	}
	informer.AddEventHandler(EventHandlerFuncs(handler))
	return nil
}

// EventHandlerFuncs adapts handler to client-go event handlers,
// unwrapping tombstones of deleted objects.
func EventHandlerFuncs(handler EventHandler) toolscache.ResourceEventHandlerFuncs {
	return toolscache.ResourceEventHandlerFuncs{
		AddFunc: func(obj interface{}) {
			if o, ok := obj.(client.Object); ok {
				handler(queue.Added, o)
			}
		},
		UpdateFunc: func(_, obj interface{}) {
			if o, ok := obj.(client.Object); ok {
				handler(queue.Modified, o)
			}
		},
		DeleteFunc: func(obj interface{}) {
			if tombstone, ok := obj.(toolscache.DeletedFinalStateUnknown); ok {
				obj = tombstone.Obj
			}
			if o, ok := obj.(client.Object); ok {
				handler(queue.Deleted, o)
			}
		},
	}
}
