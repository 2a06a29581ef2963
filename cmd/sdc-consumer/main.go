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

// Command sdc-consumer discovers an IEEE 11073 SDC provider, mirrors its
// MDIB locally, and keeps the mirror in sync with incoming reports.
package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gosdc/sdc/pkg/log"
	"github.com/gosdc/sdc/pkg/metrics"
	"github.com/gosdc/sdc/private/app/command"
	"github.com/gosdc/sdc/private/app/launcher"
	"github.com/gosdc/sdc/private/config"
	"github.com/gosdc/sdc/private/consumer"
	"github.com/gosdc/sdc/private/discovery"
	"github.com/gosdc/sdc/private/report"
	"github.com/gosdc/sdc/private/transport"
)

func main() {
	cfg := &consumerConfig{}
	app := launcher.Application{
		TOMLConfig: cfg,
		ShortName:  "sdc-consumer",
		Main: func(ctx context.Context, _ config.Config) error {
			return run(ctx, cfg)
		},
		ExtraCommands: []func(command.Pather) *cobra.Command{newProbeCommand},
	}
	app.Run()
}

func run(ctx context.Context, cfg *consumerConfig) error {
	reg := prometheus.NewRegistry()
	discoveryMetrics := metrics.NewDiscovery(reg)
	transportMetrics := metrics.NewTransport(reg)

	client := transport.NewClient(transport.ClientConfig{MaxConnsPerHost: 16, Metrics: transportMetrics}, 5*time.Second)
	defer client.Close()

	listener := newReportListener()
	notifyURL := "http://" + cfg.NotifyAddr + "/reports"
	notifySrv := transport.NewServer(transport.ServerConfig{Addr: cfg.NotifyAddr, Metrics: transportMetrics})
	notifySrv.Handle("/reports", listener.handler())

	// Every long-running task (the notify listener, its shutdown watcher,
	// the discovery loop, the connect-on-discovery loop) runs as a sibling
	// under one errgroup: the first one to fail cancels gctx and unwinds
	// the rest, and Wait reports whichever error sent the process down.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := notifySrv.Serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return notifySrv.Shutdown(shutdownCtx)
	})

	facade := consumer.NewFacade(soapGetMdib(client), soapSubscribe(client, listener, notifyURL))

	filter := []report.Action{
		report.ActionEpisodicMetricReport,
		report.ActionEpisodicAlertReport,
		report.ActionEpisodicComponentReport,
		report.ActionEpisodicContextReport,
		report.ActionDescriptionModificationReport,
	}

	if cfg.ProviderAddr != "" {
		ep := discovery.DiscoveredEndpoint{EPR: "static", XAddrs: []string{"http://" + cfg.ProviderAddr + "/sdc"}}
		if err := facade.Connect(ctx, ep, filter); err != nil {
			return err
		}
		<-gctx.Done()
		return g.Wait()
	}

	eng, err := discovery.NewEngine(discovery.Config{
		InterfaceBinding: cfg.InterfaceBinding,
		MulticastTTL:     cfg.MulticastTTL,
		DupWindow:        cfg.DupSuppressionWindow.Duration,
		InitialDelay:     cfg.DiscoveryMaxWait.Duration,
		Metrics:          discoveryMetrics,
	}, uint64(time.Now().UnixNano()))
	if err != nil {
		return err
	}
	defer eng.Close()

	g.Go(func() error {
		defer log.HandlePanic()
		if err := eng.Listen(gctx); err != nil && gctx.Err() == nil {
			log.FromCtx(ctx).Warn("discovery listen loop exited", zap.Error(err))
		}
		return nil
	})
	if err := eng.Probe(ctx, nil, nil); err != nil {
		log.FromCtx(ctx).Warn("initial probe failed", zap.Error(err))
	}

	g.Go(func() error {
		connected := false
		for {
			select {
			case <-gctx.Done():
				return nil
			case ep := <-eng.Events():
				if connected {
					continue
				}
				if err := facade.Connect(ctx, ep, filter); err != nil {
					log.FromCtx(ctx).Warn("connect to discovered provider failed", zap.Error(err), zap.String("epr", ep.EPR))
					continue
				}
				connected = true
				log.FromCtx(ctx).Info("connected to provider", zap.String("epr", ep.EPR), zap.Strings("xaddrs", ep.XAddrs))
			}
		}
	})
	return g.Wait()
}
