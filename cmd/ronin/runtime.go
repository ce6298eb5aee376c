package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"pkt.systems/pslog"
	"pkt.systems/ronin"
)

// openRuntime loads config, points logging at the client log file and wires
// a runtime. The returned func closes both.
func openRuntime(cmd *cobra.Command, loader *ronin.Loader, component string) (context.Context, *ronin.Runtime, func(), error) {
	cfg, err := loader.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	logger, closer, err := openClientLogger(cfg.Client.LogFile)
	if err != nil {
		return nil, nil, nil, err
	}
	logger = logger.With("component", component)
	opts := ronin.RuntimeOptions{
		Logger: logger,
		Out:    cmd.OutOrStdout(),
	}
	var registry *prometheus.Registry
	if withMetrics, _ := cmd.Flags().GetBool("metrics"); withMetrics {
		registry = prometheus.NewRegistry()
		opts.Registerer = registry
	}
	rt, err := ronin.NewRuntime(cfg, opts)
	if err != nil {
		_ = closer.Close()
		return nil, nil, nil, err
	}
	if used := loader.ConfigFileUsed(); used != "" {
		logger.Debug("config loaded", "path", used)
	}
	ctx := pslog.ContextWithLogger(cmd.Context(), logger)
	return ctx, rt, func() {
		rt.Close()
		if registry != nil {
			writeMetrics(cmd.ErrOrStderr(), registry, logger)
		}
		_ = closer.Close()
	}, nil
}

// writeMetrics prints every gathered counter as name{labels} value.
func writeMetrics(w io.Writer, registry *prometheus.Registry, logger pslog.Logger) {
	families, err := registry.Gather()
	if err != nil {
		logger.Warn("gather metrics failed", "err", err)
		return
	}
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			labels := make([]string, 0, len(metric.GetLabel()))
			for _, label := range metric.GetLabel() {
				labels = append(labels, label.GetName()+"="+strconv.Quote(label.GetValue()))
			}
			fmt.Fprintf(w, "%s{%s} %g\n", family.GetName(), strings.Join(labels, ","), metric.GetCounter().GetValue())
		}
	}
}

func requireSession(rt *ronin.Runtime) error {
	if !rt.Sessions.IsLoggedIn() {
		return fmt.Errorf("not logged in; run `ronin login`")
	}
	return nil
}
