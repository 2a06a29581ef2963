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

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/gosdc/sdc/pkg/metrics"
	"github.com/gosdc/sdc/private/app/command"
	"github.com/gosdc/sdc/private/discovery"
)

// newProbeCommand builds a one-shot "probe" subcommand: it sends a single
// WS-Discovery Probe on the configured interface and prints every endpoint
// that answers within the wait window, so reachability can be checked
// without standing up a full consumer.
func newProbeCommand(_ command.Pather) *cobra.Command {
	var iface string
	var wait time.Duration
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Send a one-shot WS-Discovery probe and print responding providers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), wait)
			defer cancel()

			eng, err := discovery.NewEngine(discovery.Config{
				InterfaceBinding: iface,
				InitialDelay:     100 * time.Millisecond,
				Metrics:          metrics.NewDiscovery(prometheus.NewRegistry()),
			}, uint64(time.Now().UnixNano()))
			if err != nil {
				return err
			}
			defer eng.Close()

			go func() { _ = eng.Listen(ctx) }()
			if err := eng.Probe(ctx, nil, nil); err != nil {
				return err
			}

			seen := map[string]bool{}
			epr := color.New(color.FgGreen, color.Bold)
			xaddr := color.New(color.FgCyan)
			for {
				select {
				case <-ctx.Done():
					if len(seen) == 0 {
						fmt.Fprintln(cmd.OutOrStdout(), color.YellowString("no providers responded within %s", wait))
					}
					return nil
				case ep := <-eng.Events():
					if seen[ep.EPR] {
						continue
					}
					seen[ep.EPR] = true
					epr.Fprintln(cmd.OutOrStdout(), ep.EPR)
					for _, x := range ep.XAddrs {
						xaddr.Fprintf(cmd.OutOrStdout(), "  %s\n", x)
					}
				}
			}
		},
	}
	cmd.Flags().StringVar(&iface, "interface", "", "Network interface to bind the discovery socket to")
	cmd.Flags().DurationVar(&wait, "wait", 3*time.Second, "How long to wait for responses")
	return cmd
}
