// Copyright 2026 The go-sdc Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command sdc-provider runs an IEEE 11073 SDC provider: it serves an MDIB
// over SOAP, announces itself via WS-Discovery, and streams reports to
// subscribed consumers.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gosdc/sdc/pkg/log"
	"github.com/gosdc/sdc/pkg/metrics"
	"github.com/gosdc/sdc/private/app/launcher"
	"github.com/gosdc/sdc/private/config"
	"github.com/gosdc/sdc/private/discovery"
	"github.com/gosdc/sdc/private/dispatch"
	"github.com/gosdc/sdc/private/mdib"
	"github.com/gosdc/sdc/private/report"
	"github.com/gosdc/sdc/private/transport"
)

func main() {
	cfg := &providerConfig{}
	app := launcher.Application{
		TOMLConfig: cfg,
		ShortName:  "sdc-provider",
		Main: func(ctx context.Context, _ config.Config) error {
			return run(ctx, cfg)
		},
	}
	app.Run()
}

func run(ctx context.Context, cfg *providerConfig) error {
	reg := prometheus.NewRegistry()
	mdibMetrics := metrics.NewMDIB(reg)
	reportMetrics := metrics.NewReport(reg)
	discoveryMetrics := metrics.NewDiscovery(reg)
	transportMetrics := metrics.NewTransport(reg)

	epr := cfg.EPR
	if epr == "" {
		epr = "urn:uuid:" + uuid.NewString()
	}
	instanceID := uint64(time.Now().UnixNano())

	reportCh := make(chan *mdib.TransactionReport, 256)
	store := mdib.NewStore(uuid.NewString(), fmt.Sprintf("%d", instanceID), reportCh, mdibMetrics)
	seedStore(ctx, store)

	disp := dispatch.NewDispatcher(store)
	dispatch.BindDefaults(disp)

	client := transport.NewClient(transport.ClientConfig{MaxConnsPerHost: 16, Metrics: transportMetrics}, 5*time.Second)
	defer client.Close()
	sender := &httpReportSender{client: client}
	pipeline := report.NewPipeline(sender, cfg.PeriodicReportInterval.Duration, 5, reportMetrics)
	defer pipeline.Close()

	subs := newSubscriptionRegistry(pipeline, cfg.SubscriptionDefaultTTL.Duration, cfg.SubscriptionMaxQueue)
	disp.Bind(dispatch.Action("Subscribe"), subs.handleSubscribe)

	srv := transport.NewServer(transport.ServerConfig{Addr: cfg.Addr, Metrics: transportMetrics})
	srv.Handle("/sdc", soapHandler(disp))

	eng, err := discovery.NewEngine(discovery.Config{
		InterfaceBinding: cfg.InterfaceBinding,
		MulticastTTL:     cfg.MulticastTTL,
		DupWindow:        cfg.DupSuppressionWindow.Duration,
		InitialDelay:     cfg.DiscoveryMaxWait.Duration,
		Metrics:          discoveryMetrics,
	}, instanceID)
	if err != nil {
		return err
	}
	defer eng.Close()

	scheme := "http"
	if cfg.TLSMode != config.TLSOff {
		scheme = "https"
	}
	xaddr := scheme + "://" + cfg.Addr + "/sdc"
	if err := eng.AnnounceHello(ctx, discovery.DiscoveredEndpoint{EPR: epr, XAddrs: []string{xaddr}}); err != nil {
		log.FromCtx(ctx).Warn("initial hello announcement failed", zap.Error(err))
	}

	// Every long-running task runs as a sibling under one errgroup: the
	// first to fail cancels gctx, which drives the shutdown watcher and
	// unwinds the rest.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		pipeline.Run(gctx, reportCh)
		return nil
	})
	g.Go(func() error {
		forwardInvocations(gctx, disp, pipeline)
		return nil
	})
	g.Go(func() error {
		defer log.HandlePanic()
		if err := eng.Listen(gctx); err != nil && gctx.Err() == nil {
			log.FromCtx(ctx).Warn("discovery listen loop exited", zap.Error(err))
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = eng.AnnounceBye(shutdownCtx)
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		if err := srv.Serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	return g.Wait()
}

// forwardInvocations feeds the dispatcher's OperationInvokedReport
// transitions into the report pipeline so subscribed consumers see
// Set*/Activate outcomes as they're reported (spec.md §4.G, §8 scenario 5).
// It has no MDIB version or sequence id of its own: those fields stay zero,
// matching an action that isn't a decomposed MDIB transaction.
func forwardInvocations(ctx context.Context, disp *dispatch.Dispatcher, pipeline *report.Pipeline) {
	for {
		select {
		case <-ctx.Done():
			return
		case inv, ok := <-disp.Invocations():
			if !ok {
				return
			}
			pipeline.Publish(report.Item{
				Action:  report.ActionOperationInvokedReport,
				Payload: inv,
			})
		}
	}
}

// seedStore bootstraps a minimal single-MDS, single-metric MDIB so the
// binary is runnable out of the box; real deployments replace this with a
// device-specific descriptor set loaded at startup.
func seedStore(ctx context.Context, store *mdib.Store) {
	tx, err := store.BeginTransaction(ctx, mdib.TxDescriptorModification)
	if err != nil {
		return
	}
	const mds = mdib.Handle("mds0")
	_ = tx.AddDescriptor(&mdib.Descriptor{Handle: mds, Kind: mdib.KindMDS})
	const nm = mdib.Handle("nm0")
	_ = tx.AddDescriptor(&mdib.Descriptor{
		Handle: nm, Kind: mdib.KindNumericMetric, ParentHandle: mds,
		Metric: &mdib.MetricDescriptor{MetricCategory: "Msrmt"},
	})
	_ = tx.AddState(&mdib.State{
		Descriptor: nm, Kind: mdib.KindNumericMetric,
		Metric: &mdib.MetricState{HasValue: true, Value: 36.6},
	})
	_, _ = tx.Commit()
}

func init() {
	os.Setenv("TZ", "UTC")
}
