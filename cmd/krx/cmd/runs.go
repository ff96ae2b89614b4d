package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/wonny/krxflow/internal/domain/calendar"
	"github.com/wonny/krxflow/internal/domain/fetcher"
	"github.com/wonny/krxflow/internal/pkg/prompt"
	"github.com/wonny/krxflow/internal/service/batch"
)

var runsID string

// runsCmd stage_runs 실행 이력 조회
var runsCmd = &cobra.Command{
	Use:   "runs [YYYYMMDD]",
	Short: "단계 실행 이력 조회",
	Long: `기준일의 단계 실행 이력(상태, 건수, 소요시간)을 출력합니다.

Examples:
  go run ./cmd/krx runs 20250404
  go run ./cmd/krx runs --id 6f1c0d3e-8a52-4d0b-9b0e-3f2f0e6c1a7d`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		if runsID != "" {
			id, err := uuid.Parse(runsID)
			if err != nil {
				return fmt.Errorf("--id %q: %w", runsID, err)
			}

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			run, err := a.runner.Lookup(ctx, id)
			if err != nil {
				return err
			}
			batch.PrintRuns(out, []*fetcher.StageRun{run})
			return nil
		}

		date, err := prompt.New(cmd.InOrStdin(), out).Date(firstArg(args))
		if err != nil {
			return err
		}

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		runs, err := a.runner.History(ctx, date)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintf(out, "%s 실행 이력이 없습니다.\n", calendar.FormatDate(date))
			return nil
		}
		batch.PrintRuns(out, runs)
		return nil
	},
}

func init() {
	runsCmd.Flags().StringVar(&runsID, "id", "", "run_id 로 단건 조회")
}
