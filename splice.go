package main

import (
	"github.com/spf13/cobra"
	"github.com/tenantrating/devtools/splicer"
)

func newSpliceCmd(a *app) *cobra.Command {
	var opts splicer.Options

	cmd := &cobra.Command{
		Use:   "splice",
		Short: "Replace the appendices of the project book with a drafted fragment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc := a.cfg.Splice
			flags := cmd.Flags()
			if flags.Changed("source") {
				sc.Source = opts.Source
			}
			if flags.Changed("draft") {
				sc.Draft = opts.Draft
			}
			if flags.Changed("dest") {
				sc.Destination = opts.Destination
			}
			if flags.Changed("marker") {
				sc.Marker = opts.Marker
			}
			if flags.Changed("fallback-line") {
				sc.FallbackLine = opts.FallbackLine
			}
			if flags.Changed("strict") {
				sc.Strict = opts.Strict
			}
			if flags.Changed("backup") {
				sc.Backup = opts.Backup
			}
			if err := sc.Validate(); err != nil {
				return err
			}

			s := splicer.New(splicer.Options{
				Source:       sc.Source,
				Draft:        sc.Draft,
				Destination:  sc.DestinationPath(),
				Marker:       sc.Marker,
				FallbackLine: sc.FallbackLine,
				Strict:       sc.Strict,
				Backup:       sc.Backup,
			}, cmd.OutOrStdout(), a.logger)
			return s.Run(cmd.Context())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Source, "source", "", "HTML document to cut")
	flags.StringVar(&opts.Draft, "draft", "", "HTML fragment to append")
	flags.StringVar(&opts.Destination, "dest", "", "output path (default: the source, rewritten in place)")
	flags.StringVar(&opts.Marker, "marker", "", "line marker to cut at")
	flags.IntVar(&opts.FallbackLine, "fallback-line", 0, "1-based line to cut at when the marker is missing")
	flags.BoolVar(&opts.Strict, "strict", false, "fail instead of falling back when the marker is missing")
	flags.BoolVar(&opts.Backup, "backup", false, "keep the previous output as <dest>.bak")
	return cmd
}
