package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/krxflow/internal/infra/database/postgres"
	"github.com/wonny/krxflow/internal/infra/external/naver"
)

// healthCmd DB ping + 풀 상태 + 네이버 응답
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "DB 상태 확인",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		pool, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		h := pool.Health(ctx)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "status:     %s\n", h.Status)
		fmt.Fprintf(out, "response:   %s\n", h.ResponseTime)
		fmt.Fprintf(out, "conns:      active=%d idle=%d total=%d max=%d\n",
			h.ActiveConns, h.IdleConns, h.TotalConns, h.MaxConns)
		fmt.Fprintf(out, "migration:  %d\n", h.Migration)
		if h.Error != "" {
			fmt.Fprintf(out, "error:      %s\n", h.Error)
		}

		if err := naver.NewClient(cfg.Naver).HealthCheck(ctx); err != nil {
			fmt.Fprintf(out, "naver:      %v\n", err)
		} else {
			fmt.Fprintln(out, "naver:      ok")
		}

		if h.Status == "unhealthy" {
			return fmt.Errorf("database unhealthy: %s", h.Error)
		}
		return nil
	},
}
