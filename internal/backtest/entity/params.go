package entity

// Params configures one backtest run. JSON names match the public API.
type Params struct {
	StartingBalance    float64 `json:"starting_balance" validate:"gt=0"`
	RiskPercentage     float64 `json:"risk_percentage" validate:"gt=0,lte=100"`
	TickSize           float64 `json:"tick_size" validate:"gt=0"`
	TickValue          float64 `json:"tick_value" validate:"gt=0"`
	CommissionPerTrade float64 `json:"commission_per_trade" validate:"gte=0"`
	SlippageTicks      int     `json:"slippage_ticks" validate:"gte=0"`
	TPTicks            int     `json:"tp_ticks" validate:"gte=0"`
	SLTicks            int     `json:"sl_ticks" validate:"gte=0"`
	TrailingStop       bool    `json:"trailing_stop"`
	TrailingStopTicks  int     `json:"trailing_stop_ticks" validate:"required_if=TrailingStop true,gte=0"`
	ContractMargin     float64 `json:"contract_margin" validate:"gte=0"`
}

// DefaultParams are applied before any client-supplied field.
func DefaultParams() Params {
	return Params{
		StartingBalance:    10000,
		RiskPercentage:     2.0,
		TickSize:           0.25,
		TickValue:          12.5,
		CommissionPerTrade: 5.0,
		SlippageTicks:      0,
		TPTicks:            12,
		SLTicks:            6,
		TrailingStop:       false,
		TrailingStopTicks:  0,
		ContractMargin:     500,
	}
}
