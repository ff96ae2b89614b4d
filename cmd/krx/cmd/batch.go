package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/krxflow/internal/domain/calendar"
	"github.com/wonny/krxflow/internal/pkg/prompt"
)

var (
	batchFrom string
	batchTo   string
	batchStep bool
)

// batchCmd 전체 단계 실행
var batchCmd = &cobra.Command{
	Use:   "batch [YYYYMMDD]",
	Short: "전체 단계 실행",
	Long: `purge → calendar → price → indicator → netbuy → matrix → summary 순서로 실행합니다.

단일 기준일은 실패한 단계에서 중단하고, --from/--to 기간 실행은
영업일마다 전체 단계를 실행하며 실패한 단계는 기록 후 계속 진행합니다.

Examples:
  go run ./cmd/krx batch 20250404
  go run ./cmd/krx batch --step 20250404
  go run ./cmd/krx batch --from 20250401 --to 20250430`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVar(&batchFrom, "from", "", "기간 시작일 (YYYYMMDD)")
	batchCmd.Flags().StringVar(&batchTo, "to", "", "기간 종료일 (YYYYMMDD)")
	batchCmd.Flags().BoolVar(&batchStep, "step", false, "단계마다 y/n 확인")
	batchCmd.MarkFlagsRequiredTogether("from", "to")
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	p := prompt.New(cmd.InOrStdin(), cmd.OutOrStdout())
	rangeMode := batchFrom != ""

	var from, to, date time.Time
	if rangeMode {
		if len(args) > 0 {
			return fmt.Errorf("기준일 인자와 --from/--to 는 함께 쓸 수 없습니다")
		}
		var err error
		if from, err = calendar.ParseDate(batchFrom); err != nil {
			return err
		}
		if to, err = calendar.ParseDate(batchTo); err != nil {
			return err
		}
		if to.Before(from) {
			return fmt.Errorf("--from %s 은(는) --to %s 이전이어야 합니다", batchFrom, batchTo)
		}
	} else {
		// 기준일과 --step 확인은 같은 stdin 버퍼를 공유
		var err error
		if date, err = p.Date(firstArg(args)); err != nil {
			return err
		}
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	runner := a.runner
	if batchStep {
		runner = runner.WithConfirm(p.Confirm)
	}

	if !rangeMode {
		return runner.RunDate(ctx, date)
	}

	result, err := runner.RunRange(ctx, from, to)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "[✔] 영업일 %d일 처리, 실패 단계 %d건\n", result.Dates, result.Failed)
	return nil
}
