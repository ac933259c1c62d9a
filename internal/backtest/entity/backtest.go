package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

type Outcome string

const (
	OutcomeWin  Outcome = "WIN"
	OutcomeLoss Outcome = "LOSS"
)

type Metrics struct {
	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	WinRate       decimal.Decimal
	TotalPnL      decimal.Decimal
	MaxDrawdown   decimal.Decimal
	SharpeRatio   decimal.Decimal
	FinalBalance  decimal.Decimal
}

type Trade struct {
	EntryTime  time.Time
	ExitTime   time.Time
	Side       Side
	EntryPrice decimal.Decimal
	ExitPrice  decimal.Decimal
	PnL        decimal.Decimal
	Outcome    Outcome
}

// Backtest is one run of a strategy over a stored dataset.
// Metrics and Trades are set only once Status is StatusCompleted.
type Backtest struct {
	ID          string
	Filename    string
	Params      Params
	Status      Status
	Bars        int64
	Metrics     *Metrics
	Trades      []Trade
	Err         string
	CreatedAt   time.Time
	CompletedAt time.Time
}
