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

package queue

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	dnsv1alpha1 "dnssec-operator.io/dnssec-operator/apis/dns/v1alpha1"
)

func zone(name, resourceVersion string) *dnsv1alpha1.DNSSECZone {
	return &dnsv1alpha1.DNSSECZone{
		ObjectMeta: metav1.ObjectMeta{Name: name, ResourceVersion: resourceVersion},
	}
}

func TestQueue(t *testing.T) {
	t.Run("should keep the last object per key", func(t *testing.T) {
		q := New()
		q.Set("a.example.com", zone("a", "1"))
		q.Set("b.example.com", zone("b", "1"))
		q.Set("a.example.com", zone("a", "2"))
		assert.Equal(t, 2, q.Len())

		items := q.Drain()
		assert.Equal(t, map[string]client.Object{
			"a.example.com": zone("a", "2"),
			"b.example.com": zone("b", "1"),
		}, items)
		assert.Equal(t, 0, q.Len())
		assert.Empty(t, q.Drain())
	})

	t.Run("should remove pending objects", func(t *testing.T) {
		q := New()
		q.Set("a.example.com", zone("a", "1"))
		q.Remove("a.example.com")
		q.Remove("b.example.com")
		assert.Empty(t, q.Drain())
	})

	t.Run("should tell pending keys", func(t *testing.T) {
		q := New()
		q.Set("a.example.com", zone("a", "1"))
		assert.True(t, q.Has("a.example.com"))
		assert.False(t, q.Has("b.example.com"))
		q.Drain()
		assert.False(t, q.Has("a.example.com"))
	})

	t.Run("should be safe for concurrent use", func(t *testing.T) {
		q := New()
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					q.Set(fmt.Sprintf("%d.example.com", j), zone("z", fmt.Sprint(i)))
				}
			}(i)
		}
		wg.Wait()
		assert.Len(t, q.Drain(), 100)
	})
}
