package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gitrdm/gokanproof/pkg/chainer"
)

func newVersionCmd(a *app) *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// Overrides the root hook: no configuration or knowledge base needed.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := chainer.GetVersionInfo(gitCommit, buildDate)
			if asYAML {
				out, err := yaml.Marshal(info)
				if err != nil {
					return err
				}
				_, err = a.out.Write(out)
				return err
			}
			fmt.Fprintf(a.out, "chainer %s (commit %s, built %s, %s)\n",
				info.Version, info.GitCommit, info.BuildDate, info.GoVersion)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print as YAML")
	return cmd
}
