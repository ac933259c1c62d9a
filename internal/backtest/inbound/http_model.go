package inbound

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shandysiswandi/gobacktest/internal/backtest/entity"
)

const tradeTimeLayout = "2006-01-02 15:04:05"

type RunResponse struct {
	ID     string        `json:"id"`
	Status entity.Status `json:"status"`
}

func (RunResponse) StatusCode() int {
	return http.StatusAccepted
}

func (RunResponse) Message() string {
	return "backtest accepted"
}

type Metrics struct {
	TotalTrades   int     `json:"total_trades"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	WinRate       float64 `json:"win_rate"`
	TotalPnL      float64 `json:"total_pnl"`
	MaxDrawdown   float64 `json:"max_drawdown"`
	SharpeRatio   float64 `json:"sharpe_ratio"`
	FinalBalance  float64 `json:"final_balance"`
}

type Trade struct {
	EntryTime  string  `json:"entry_time"`
	ExitTime   string  `json:"exit_time"`
	Type       string  `json:"type"`
	EntryPrice float64 `json:"entry_price"`
	ExitPrice  float64 `json:"exit_price"`
	PnL        float64 `json:"pnl"`
	Outcome    string  `json:"outcome"`
}

type BacktestResponse struct {
	ID          string        `json:"id"`
	Filename    string        `json:"filename"`
	Parameters  entity.Params `json:"parameters"`
	Status      entity.Status `json:"status"`
	Bars        int64         `json:"bars"`
	Metrics     *Metrics      `json:"metrics,omitempty"`
	Trades      []Trade       `json:"trades"`
	Error       string        `json:"error,omitempty"`
	CreatedAt   string        `json:"created_at"`
	CompletedAt string        `json:"completed_at,omitempty"`
}

type HistoryMetrics struct {
	TotalPnL    float64 `json:"total_pnl"`
	WinRate     float64 `json:"win_rate"`
	TotalTrades int     `json:"total_trades"`
}

type HistoryItem struct {
	ID        string          `json:"id"`
	Filename  string          `json:"filename"`
	CreatedAt string          `json:"created_at"`
	Status    entity.Status   `json:"status"`
	Metrics   *HistoryMetrics `json:"metrics,omitempty"`
}

type HistoryResponse []HistoryItem

func (r HistoryResponse) Meta() map[string]any {
	return map[string]any{"count": len(r)}
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func toHTTPBacktest(bt entity.Backtest) BacktestResponse {
	resp := BacktestResponse{
		ID:          bt.ID,
		Filename:    bt.Filename,
		Parameters:  bt.Params,
		Status:      bt.Status,
		Bars:        bt.Bars,
		Trades:      make([]Trade, 0, len(bt.Trades)),
		Error:       bt.Err,
		CreatedAt:   formatTime(bt.CreatedAt),
		CompletedAt: formatTime(bt.CompletedAt),
	}

	if m := bt.Metrics; m != nil {
		resp.Metrics = &Metrics{
			TotalTrades:   m.TotalTrades,
			WinningTrades: m.WinningTrades,
			LosingTrades:  m.LosingTrades,
			WinRate:       toFloat(m.WinRate),
			TotalPnL:      toFloat(m.TotalPnL),
			MaxDrawdown:   toFloat(m.MaxDrawdown),
			SharpeRatio:   toFloat(m.SharpeRatio),
			FinalBalance:  toFloat(m.FinalBalance),
		}
	}

	for _, tr := range bt.Trades {
		resp.Trades = append(resp.Trades, Trade{
			EntryTime:  tr.EntryTime.UTC().Format(tradeTimeLayout),
			ExitTime:   tr.ExitTime.UTC().Format(tradeTimeLayout),
			Type:       string(tr.Side),
			EntryPrice: toFloat(tr.EntryPrice),
			ExitPrice:  toFloat(tr.ExitPrice),
			PnL:        toFloat(tr.PnL),
			Outcome:    string(tr.Outcome),
		})
	}

	return resp
}

func toHistoryItem(bt entity.Backtest) HistoryItem {
	item := HistoryItem{
		ID:        bt.ID,
		Filename:  bt.Filename,
		CreatedAt: formatTime(bt.CreatedAt),
		Status:    bt.Status,
	}

	if m := bt.Metrics; m != nil {
		item.Metrics = &HistoryMetrics{
			TotalPnL:    toFloat(m.TotalPnL),
			WinRate:     toFloat(m.WinRate),
			TotalTrades: m.TotalTrades,
		}
	}

	return item
}
