package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forest-guardian/atcor/internal/mtl"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <mtl-file> [key...]",
		Short: "Print a value or group of an MTL metadata file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := mtl.ParseFile(args[0])
			if err != nil {
				return err
			}
			return inspect(cmd, doc, args[1:])
		},
	}
}

func inspect(cmd *cobra.Command, doc mtl.Group, keys []string) error {
	node, err := mtl.Get(doc, keys...)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	switch n := node.(type) {
	case mtl.Group:
		return mtl.Encode(out, n)
	case mtl.Value:
		_, err := fmt.Fprintf(out, "%s (%s)\n", n, n.Kind)
		return err
	}
	return fmt.Errorf("unexpected node %T", node)
}
