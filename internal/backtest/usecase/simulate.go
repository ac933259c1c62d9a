package usecase

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/shandysiswandi/gobacktest/internal/backtest/entity"
)

// simulate produces the demo result set. The figures are fixed; only the
// final balance follows the starting balance.
func simulate(params entity.Params) (entity.Metrics, []entity.Trade) {
	pnl := decimal.NewFromInt(2500)

	metrics := entity.Metrics{
		TotalTrades:   25,
		WinningTrades: 15,
		LosingTrades:  10,
		WinRate:       decimal.NewFromInt(15).Div(decimal.NewFromInt(25)).Mul(decimal.NewFromInt(100)),
		TotalPnL:      pnl,
		MaxDrawdown:   decimal.NewFromInt(-500),
		SharpeRatio:   decimal.RequireFromString("1.2"),
		FinalBalance:  decimal.NewFromFloat(params.StartingBalance).Add(pnl),
	}

	entry := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	trades := []entity.Trade{
		{
			EntryTime:  entry,
			ExitTime:   entry.Add(30 * time.Minute),
			Side:       entity.SideLong,
			EntryPrice: decimal.NewFromInt(4500),
			ExitPrice:  decimal.NewFromInt(4512),
			PnL:        decimal.NewFromInt(150),
			Outcome:    entity.OutcomeWin,
		},
	}

	return metrics, trades
}
