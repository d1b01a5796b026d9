package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/xr-input-layer/binding"
)

func newBindingsCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "bindings <snapshot>",
		Short: "Print a binding snapshot written on attach",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := binding.ReadSnapshot(args[0])
			if err != nil {
				return err
			}
			switch format {
			case "text":
				return printSnapshot(cmd.OutOrStdout(), snap)
			case "yaml":
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				if err := enc.Encode(snap); err != nil {
					return err
				}
				return enc.Close()
			default:
				return fmt.Errorf("unknown format %q", format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text or yaml")
	return cmd
}

func printSnapshot(out io.Writer, snap *binding.Snapshot) error {
	fmt.Fprintf(out, "%s\n", titleStyle.Render(snap.Application))
	fmt.Fprintf(out, "instance: %s\nruntime:  %s\ncreated:  %s\n",
		snap.InstanceID, snap.Runtime, snap.Created.Format(time.RFC3339))

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, p := range snap.Profiles {
		fmt.Fprintf(tw, "\n%s\n", p.Name)
		for _, e := range p.Entries {
			fmt.Fprintf(tw, "  %s/%s\t%s\t%s%s\n", e.ActionSet, e.Action, e.Path, e.Kind, detail(e))
		}
	}
	return tw.Flush()
}

func detail(e binding.Entry) string {
	switch e.Kind {
	case binding.KindThreshold:
		return fmt.Sprintf(" on=%.2f off=%.2f", e.On, e.Off)
	case binding.KindDPad:
		s := " " + e.Direction
		if e.Sticky {
			s += " sticky"
		}
		return s
	default:
		return ""
	}
}
