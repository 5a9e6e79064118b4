package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"quiznight-service/internal/config"
	transportnats "quiznight-service/internal/transport/nats"
)

// NewSubmitCmd publishes one submission to the queue, for smoke-testing a
// session without mobile clients.
func NewSubmitCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "submit <team> <answer1> [answer2]",
		Short: "Publish a test submission to the queue",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.NATS.URL == "" {
				return fmt.Errorf("nats url not configured")
			}
			nc, err := nats.Connect(cfg.NATS.URL)
			if err != nil {
				return err
			}
			defer nc.Close()

			channel, err := transportnats.NewSubmissionChannel(nc, transportnats.ChannelConfig{
				Stream:   cfg.NATS.Stream,
				Subject:  cfg.NATS.Subject,
				Consumer: cfg.NATS.Consumer,
			}, func(context.Context, []byte) {}, nil)
			if err != nil {
				return err
			}

			raw := strings.Join(args, cfg.Game.Delimiter)
			if err := channel.Publish(cmd.Context(), []byte(raw)); err != nil {
				return err
			}
			fmt.Printf("published %q\n", raw)
			return nil
		},
	}
}
