package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/xr-input-layer/input"
	"github.com/wippyai/xr-input-layer/layer"
	"github.com/wippyai/xr-input-layer/loader"
	"github.com/wippyai/xr-input-layer/xr"
)

func newScenarioCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "scenario",
		Short: "Run a scripted application session and print every result code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, closeLog, err := opts.load()
			if err != nil {
				return err
			}
			defer closeLog()

			w, err := newWorld(cfg, log)
			if err != nil {
				return err
			}
			defer w.close()
			return runScenario(cmd.OutOrStdout(), w)
		},
	}
}

func runScenario(out io.Writer, w *world) error {
	defer printSteps(out, w)

	if err := w.setup(); err != nil {
		return err
	}

	// A second attach must be refused.
	again := &xr.SessionActionSetsAttachInfo{ActionSets: []xr.ActionSet{w.set}}
	w.steps = append(w.steps, step{call: xr.NameAttachSessionActionSets + " (again)", res: w.fns.attach(w.session, again)})

	inputs := []struct {
		path  string
		value input.Value
	}{
		{"", input.Value{}},
		{triggerPath, input.Axis1dValue(0.9)},
		{rightStickPath, input.Axis2dValue(-0.9, 0)},
		{squeezePath, input.Axis1dValue(0.4)},
	}
	for _, in := range inputs {
		if in.path != "" {
			if err := w.driver.Push(in.path, in.value); err != nil {
				return err
			}
			fmt.Fprintf(out, "push %s = %s\n", in.path, in.value)
		}
		if err := w.record(xr.NameSyncActions, w.fns.sync(w.session,
			&xr.ActionsSyncInfo{ActiveActionSets: []xr.ActiveActionSet{{ActionSet: w.set}}})); err != nil {
			return err
		}
		states, err := w.states()
		if err != nil {
			return err
		}
		for _, st := range states {
			fmt.Fprintf(out, "  %-10s %-14s active=%-5v changed=%v\n", st.name, st.value, st.active, st.changed)
		}
	}
	for _, ev := range w.driver.Haptics() {
		fmt.Fprintf(out, "haptic %s: %.2f @ %.0fHz\n", ev.Action, ev.Haptic.Amplitude, ev.Haptic.Frequency)
	}

	st := w.layer.Stats()
	w.log.Info("scenario complete",
		zap.Int("instances", st.Instances),
		zap.Int("sessions", st.Sessions),
		zap.Int("action_sets", st.ActionSets),
		zap.Int("actions", st.Actions))
	return nil
}

func printSteps(out io.Writer, w *world) {
	fmt.Fprintln(out)
	for _, s := range w.steps {
		fmt.Fprintf(out, "%-45s %s\n", s.call, s.res)
	}
}

func newNegotiateCmd(opts *options) *cobra.Command {
	var minInterface, maxInterface uint32
	cmd := &cobra.Command{
		Use:   "negotiate",
		Short: "Negotiate with the layer as a loader would and print the response",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, closeLog, err := opts.load()
			if err != nil {
				return err
			}
			defer closeLog()

			n := loader.New(func() (*layer.Layer, error) {
				return layer.New(layer.Options{Logger: log, Config: cfg}), nil
			}, log)
			var req loader.APILayerRequest
			res := n.Negotiate(loaderInfo(minInterface, maxInterface), layer.Name, requestRecord(&req))

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "layer:             %s\n", layer.Name)
			fmt.Fprintf(out, "result:            %s\n", res)
			if res.Failed() {
				return fmt.Errorf("negotiation failed: %s", res)
			}
			fmt.Fprintf(out, "interface version: %d\n", req.LayerInterfaceVersion)
			fmt.Fprintf(out, "api version:       %s\n", req.LayerAPIVersion)
			return nil
		},
	}
	cmd.Flags().Uint32Var(&minInterface, "min-interface", loader.InterfaceVersion, "lowest loader interface version offered")
	cmd.Flags().Uint32Var(&maxInterface, "max-interface", loader.InterfaceVersion, "highest loader interface version offered")
	return cmd
}
