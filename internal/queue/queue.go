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

// Package queue buffers watch events between reconciler ticks.
package queue

import (
	"sync"

	"sigs.k8s.io/controller-runtime/pkg/client"
)

// EventType of a watch event.
type EventType string

// EventType values.
const (
	Added    EventType = "Added"
	Modified EventType = "Modified"
	Deleted  EventType = "Deleted"
)

// Queue holds the latest object per key until drained.
type Queue struct {
	items    map[string]client.Object
	itemsMux sync.Mutex
}

func New() *Queue {
	return &Queue{
		items: map[string]client.Object{},
	}
}

// Set stores obj under key, replacing a pending object with the same key.
func (q *Queue) Set(key string, obj client.Object) {
	q.itemsMux.Lock()
	defer q.itemsMux.Unlock()
	q.items[key] = obj
}

// Remove drops the pending object for key.
func (q *Queue) Remove(key string) {
	q.itemsMux.Lock()
	defer q.itemsMux.Unlock()
	delete(q.items, key)
}

// Has reports whether an object is pending for key.
func (q *Queue) Has(key string) bool {
	q.itemsMux.Lock()
	defer q.itemsMux.Unlock()
	_, ok := q.items[key]
	return ok
}

// Len returns the number of pending objects.
func (q *Queue) Len() int {
	q.itemsMux.Lock()
	defer q.itemsMux.Unlock()
	return len(q.items)
}

// Drain returns all pending objects and empties the queue.
func (q *Queue) Drain() map[string]client.Object {
	q.itemsMux.Lock()
	defer q.itemsMux.Unlock()
	items := q.items
	q.items = map[string]client.Object{}
	return items
}
