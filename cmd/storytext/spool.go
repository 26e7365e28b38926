package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bft-labs/storytext/pkg/storytext"
)

func newSpoolCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spool",
		Short: "Watch an inbox directory for extraction jobs",
		Long: `Watch an inbox directory for *.job.json files, extract each job's selections
and write <id>.result.json to the outbox. Processed jobs are renamed to
*.job.done. Jobs already in the inbox are processed on start.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.loadConfig(cmd, validateSpool); err != nil {
				return err
			}

			p, stop, err := a.pipeline()
			if err != nil {
				return err
			}
			defer stop()

			s, err := p.NewSpool(storytext.SpoolConfig{
				InboxDir:  a.cfg.InboxDir,
				OutboxDir: a.cfg.OutboxDir,
				Inline:    a.cfg.StdinMode,
			})
			if err != nil {
				return err
			}

			ctx, cancel := a.signalContext()
			defer cancel()

			a.log.Info().
				Str("inbox", a.cfg.InboxDir).
				Str("outbox", a.cfg.OutboxDir).
				Msg("spool starting")
			if err := s.Run(ctx); err != nil {
				return fmt.Errorf("spool: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&a.cfg.InboxDir, "inbox", a.cfg.InboxDir, "directory watched for job files")
	cmd.Flags().StringVar(&a.cfg.OutboxDir, "outbox", a.cfg.OutboxDir, "directory results are written to (defaults to inbox)")
	return cmd
}
