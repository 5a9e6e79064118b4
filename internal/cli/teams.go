package cli

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quiznight-service/internal/config"
	"quiznight-service/internal/domain"
	redisstore "quiznight-service/internal/infra/redis"
)

// NewTeamsCmd provisions teams before the session. Submissions from names
// that were never registered are discarded by the coordinator.
func NewTeamsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "teams",
		Short: "Manage registered teams",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>...",
		Short: "Register one or more teams",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Redis.Addr == "" {
				return fmt.Errorf("team provisioning needs redis configured")
			}
			client := redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			defer client.Close()

			store := redisstore.NewScoreStore(client, domain.RoundState{
				Phase:          domain.PhaseHidden,
				ActiveQuestion: cfg.Game.StartQuestion,
			})
			ctx := cmd.Context()
			for _, name := range args {
				if _, err := store.GetTeam(ctx, name); err == nil {
					fmt.Printf("team %q already registered\n", name)
					continue
				}
				if err := store.UpsertTeam(ctx, domain.NewTeam(name)); err != nil {
					return err
				}
				fmt.Printf("registered team %q\n", name)
			}
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List registered teams and points",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Redis.Addr == "" {
				return fmt.Errorf("team listing needs redis configured")
			}
			client := redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			defer client.Close()

			store := redisstore.NewScoreStore(client, domain.RoundState{})
			teams, err := store.ListTeams(cmd.Context())
			if err != nil {
				return err
			}
			for _, t := range teams {
				fmt.Printf("%s\t%d\n", t.Name, t.Points)
			}
			return nil
		},
	})
	return cmd
}
