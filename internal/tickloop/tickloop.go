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

// Package tickloop runs a reconciler tick periodically and on demand,
// never more than one at a time.
package tickloop

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"go.uber.org/atomic"
	"sigs.k8s.io/controller-runtime/pkg/manager"

	"dnssec-operator.io/dnssec-operator/internal/metrics"
)

// TickFunc performs one reconciliation pass.
type TickFunc func(ctx context.Context) error

// Loop is a manager.Runnable calling a TickFunc.
type Loop struct {
	name     string
	interval time.Duration
	tick     TickFunc
	log      logr.Logger

	// one slot, further triggers coalesce while a tick is pending
	trigger chan struct{}
	ticked  atomic.Bool
}

var _ manager.Runnable = (*Loop)(nil)

// New returns a Loop ticking every interval after the previous tick completed.
func New(log logr.Logger, name string, interval time.Duration, tick TickFunc) *Loop {
	return &Loop{
		name:     name,
		interval: interval,
		tick:     tick,
		log:      log.WithValues("loop", name),
		trigger:  make(chan struct{}, 1),
	}
}

// Trigger schedules a tick as soon as the current one is done.
// Never blocks.
func (l *Loop) Trigger() {
	select {
	case l.trigger <- struct{}{}:
	default:
	}
}

// Start ticks until ctx is done. An in-flight tick is completed
// on a context that is not cancelled with ctx.
func (l *Loop) Start(ctx context.Context) error {
	timer := time.NewTimer(0)
	defer timer.Stop()

	l.log.Info("starting")
	for {
		select {
		case <-ctx.Done():
			l.log.Info("stopped")
			return nil
		case <-timer.C:
		case <-l.trigger:
			if !timer.Stop() {
				<-timer.C
			}
		}

		l.runTick()
		timer.Reset(l.interval)
	}
}

func (l *Loop) runTick() {
	start := time.Now()
	err := l.tick(context.Background())
	metrics.ObserveTick(l.name, time.Since(start), err)
	if err != nil {
		l.log.Error(err, "tick failed")
	} else {
		l.log.V(1).Info("tick done", "duration", time.Since(start).String())
	}
	l.ticked.Store(true)
}

// ReadyCheck fails until the first tick completed.
// Matches healthz.Checker.
func (l *Loop) ReadyCheck(_ *http.Request) error {
	if !l.ticked.Load() {
		return errors.New(l.name + " has not completed a tick yet")
	}
	return nil
}
