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

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	_ "k8s.io/client-go/plugin/pkg/client/auth/gcp"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	"sigs.k8s.io/controller-runtime/pkg/manager"

	dnsv1alpha1 "dnssec-operator.io/dnssec-operator/apis/dns/v1alpha1"
	"dnssec-operator.io/dnssec-operator/internal/bind"
	"dnssec-operator.io/dnssec-operator/internal/controllers/update"
	"dnssec-operator.io/dnssec-operator/internal/controllers/zone"
	"dnssec-operator.io/dnssec-operator/internal/dnsupdate"
	"dnssec-operator.io/dnssec-operator/internal/metrics"
	"dnssec-operator.io/dnssec-operator/internal/reconcile"
	"dnssec-operator.io/dnssec-operator/internal/restart"
	"dnssec-operator.io/dnssec-operator/internal/version"
)

var (
	scheme   = runtime.NewScheme()
	setupLog = ctrl.Log.WithName("setup")
)

func init() {
	_ = clientgoscheme.AddToScheme(scheme)
	_ = dnsv1alpha1.AddToScheme(scheme)
}

const (
	updateClientNSUpdate = "nsupdate"
	updateClientNative   = "native"
)

type flags struct {
	configDir            string
	varDir               string
	namespace            string
	nameserver1          string
	nameserver2          string
	bindVerboseOutput    bool
	rndcConfGenPath      string
	nsupdatePath         string
	updateClient         string
	reconcileInterval    time.Duration
	concurrency          int
	dryRun               bool
	runReconcilers       string
	metricsAddr          string
	healthProbeAddr      string
	pprofAddr            string
	enableLeaderElection bool
}

func (f *flags) reconcilerEnabled(name string) bool {
	for _, r := range strings.Split(f.runReconcilers, ",") {
		if strings.TrimSpace(r) == name {
			return true
		}
	}
	return false
}

func main() {
	f := &flags{}
	flag.StringVar(&f.configDir, "configdir", "/etc/bind", "Directory for named.conf and generated zone statements and keys.")
	flag.StringVar(&f.varDir, "vardir", "/tmp", "Directory for zone data files.")
	flag.StringVar(&f.namespace, "namespace", os.Getenv("KUBERNETES_NAMESPACE"),
		"Namespace to watch, defaults to $KUBERNETES_NAMESPACE.")
	flag.StringVar(&f.nameserver1, "nameserver1", "ns1.example.com", "Primary name server of every zone.")
	flag.StringVar(&f.nameserver2, "nameserver2", "", "Optional secondary name server of every zone.")
	flag.BoolVar(&f.bindVerboseOutput, "bind-verbose-output", false, "Emit a verbose logging block into named.conf.")
	flag.StringVar(&f.rndcConfGenPath, "rndcconfgenpath", "/usr/sbin/rndc-confgen", "Path of the rndc-confgen binary.")
	flag.StringVar(&f.nsupdatePath, "nsupdatepath", "/usr/bin/nsupdate", "Path of the nsupdate binary.")
	flag.StringVar(&f.updateClient, "update-client", updateClientNSUpdate,
		"How DNS updates are submitted: "+updateClientNSUpdate+" or "+updateClientNative+".")
	flag.DurationVar(&f.reconcileInterval, "reconcile-interval", zone.DefaultInterval, "Interval between reconciler ticks.")
	flag.IntVar(&f.concurrency, "concurrency", zone.DefaultConcurrency, "Zones processed in parallel per tick.")
	flag.BoolVar(&f.dryRun, "dryrun", false, "Use placeholder keys and log DNS updates instead of submitting them.")
	flag.StringVar(&f.runReconcilers, "run-reconcilers", "zone,update", "Comma separated reconcilers to run.")
	flag.StringVar(&f.metricsAddr, "metrics-addr", ":8080", "The address the metric endpoint binds to.")
	flag.StringVar(&f.healthProbeAddr, "health-probe-addr", ":8081", "The address the health probe endpoint binds to.")
	flag.StringVar(&f.pprofAddr, "pprof-addr", "", "The address the pprof web endpoint binds to.")
	flag.BoolVar(&f.enableLeaderElection, "enable-leader-election", false,
		"Enable leader election for controller manager. "+
			"Enabling this will ensure there is only one active controller manager.")
	opts := zap.Options{Development: true}
	opts.BindFlags(flag.CommandLine)
	flag.Parse()

	ctrl.SetLogger(zap.New(zap.UseFlagOptions(&opts)))
	setupLog.Info("starting dnssec-operator", "version", version.Version, "commit", version.Commit)

	if f.updateClient != updateClientNSUpdate && f.updateClient != updateClientNative {
		exitOnError(fmt.Errorf("unknown update client %q", f.updateClient), "invalid flags")
	}

	mgr, err := ctrl.NewManager(ctrl.GetConfigOrDie(), ctrl.Options{
		Scheme:                     scheme,
		Namespace:                  f.namespace,
		MetricsBindAddress:         f.metricsAddr,
		HealthProbeBindAddress:     f.healthProbeAddr,
		Port:                       9443,
		LeaderElectionResourceLock: "leases",
		LeaderElection:             f.enableLeaderElection,
		LeaderElectionID:           "5c1e7a0b.dnssec-operator.io",
	})
	exitOnError(err, "unable to start manager")
	metrics.RegisterMetrics()

	// -----
	// PPROF
	// -----
	if len(f.pprofAddr) > 0 {
		exitOnError(mgr.Add(pprofServer(f.pprofAddr)), "unable to create pprof server")
	}
	exitOnError(mgr.AddHealthzCheck("ping", healthz.Ping), "unable to add health check")

	// ----
	// ZONE
	// ----
	if f.reconcilerEnabled("zone") {
		configGen, err := newConfigGen(f)
		exitOnError(err, "unable to create BIND config generator")

		r := zone.NewReconciler(
			ctrl.Log.WithName("controllers").WithName("DNSSECZone"),
			&reconcile.ZoneStore{Client: mgr.GetClient(), Namespace: f.namespace},
			configGen,
			restart.NewTouchFile(ctrl.Log.WithName("restart"), f.configDir).Request,
			zone.Options{Interval: f.reconcileInterval, Concurrency: f.concurrency},
		)
		exitOnError(r.SetupWithManager(mgr), "unable to create controller", "controller", "DNSSECZone")
		exitOnError(mgr.AddReadyzCheck("zone", r.ReadyCheck), "unable to add ready check")
	}

	// ------
	// UPDATE
	// ------
	if f.reconcilerEnabled("update") {
		log := ctrl.Log.WithName("controllers").WithName("DNSUpdate")
		r := update.NewReconciler(
			log,
			&reconcile.UpdateStore{Client: mgr.GetClient(), Namespace: f.namespace},
			&reconcile.ServiceLookup{Reader: mgr.GetAPIReader()},
			dnsupdate.NewDNSResolver(),
			newUpdater(f, log),
			f.reconcileInterval,
		)
		exitOnError(r.SetupWithManager(mgr), "unable to create controller", "controller", "DNSUpdate")
		exitOnError(mgr.AddReadyzCheck("update", r.ReadyCheck), "unable to add ready check")
	}

	setupLog.Info("starting manager")
	if err := mgr.Start(ctrl.SetupSignalHandler()); err != nil {
		setupLog.Error(err, "problem running manager")
		os.Exit(1)
	}
}

func newConfigGen(f *flags) (*bind.ConfigGen, error) {
	var generator bind.KeyGenerator = bind.NewRndcConfGen(f.rndcConfGenPath)
	if f.dryRun {
		generator = &bind.DryRunKeyGenerator{FileMode: bind.DefaultFileMode}
	}
	keys := &bind.KeyManager{
		Log:       ctrl.Log.WithName("keys"),
		Generator: generator,
		FileMode:  bind.DefaultFileMode,
	}
	return bind.NewConfigGen(ctrl.Log.WithName("bind"), bind.Config{
		ConfigDir:      f.configDir,
		VarDir:         f.varDir,
		Nameserver1:    f.nameserver1,
		Nameserver2:    f.nameserver2,
		VerboseLogging: f.bindVerboseOutput,
	}, keys)
}

func newUpdater(f *flags, log logr.Logger) dnsupdate.Updater {
	switch {
	case f.dryRun:
		return &dnsupdate.DryRun{Log: log}
	case f.updateClient == updateClientNative:
		return dnsupdate.NewRFC2136()
	default:
		return dnsupdate.NewNSUpdate(f.nsupdatePath)
	}
}

func pprofServer(addr string) manager.Runnable {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	s := &http.Server{Addr: addr, Handler: mux}
	return manager.RunnableFunc(func(ctx context.Context) error {
		errCh := make(chan error)
		defer func() {
			for range errCh {
			} // drain errCh for GC
		}()
		go func() {
			defer close(errCh)
			errCh <- s.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			s.Close()
			return nil
		}
	})
}

func exitOnError(err error, msg string, keysAndValues ...interface{}) {
	if err != nil {
		setupLog.Error(err, msg, keysAndValues...)
		os.Exit(1)
	}
}
