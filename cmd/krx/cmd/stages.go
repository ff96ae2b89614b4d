package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/krxflow/internal/domain/fetcher"
	"github.com/wonny/krxflow/internal/pkg/prompt"
)

// stageDefs 단일 단계 서브커맨드
var stageDefs = []struct {
	stage fetcher.Stage
	short string
	dated bool // false 면 기준일 없이 오늘로 기록
}{
	{fetcher.StagePurge, "기준일 시세/순매수/매트릭스/요약 삭제", true},
	{fetcher.StageCalendar, "KRX 영업일 갱신 (trading_days.xlsx)", false},
	{fetcher.StagePrice, "KOSPI/KOSDAQ 일별 시세 수집", true},
	{fetcher.StageIndicator, "RSI(14)/OBV 계산", true},
	{fetcher.StageNetBuy, "기관/외국인 순매수 수집 + 순위", true},
	{fetcher.StageMatrix, "7영업일 순매수 매트릭스 생성", true},
	{fetcher.StageSummary, "연속 매수 요약 + 등급 + 리포트", true},
	{fetcher.StageMarket, "네이버 지수 요약 + 상한가 종목", true},
}

func stageCommands() []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(stageDefs))
	for _, def := range stageDefs {
		stage, dated := def.stage, def.dated
		use := string(stage)
		if dated {
			use += " [YYYYMMDD]"
		}

		cmds = append(cmds, &cobra.Command{
			Use:   use,
			Short: def.short,
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				date := today()
				if dated {
					var err error
					p := prompt.New(cmd.InOrStdin(), cmd.OutOrStdout())
					if date, err = p.Date(firstArg(args)); err != nil {
						return err
					}
				}
				return runStage(cmd, stage, date)
			},
		})
	}
	return cmds
}

func runStage(cmd *cobra.Command, stage fetcher.Stage, date time.Time) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.runner.RunStage(ctx, a.steps[stage], date)
}

// firstArg 위치 인자(기준일), 없으면 "" 로 대화형 입력
func firstArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
