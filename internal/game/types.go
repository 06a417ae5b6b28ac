package game

import "wondesk/internal/market"

// Holding is the portfolio's position in one asset. PriceMicros is the
// cached mark used for selling and revaluation; TotalValueMicros is
// always PriceMicros x quantity.
type Holding struct {
	AssetID          string           `json:"asset_id"`
	Code             string           `json:"code"`
	Name             string           `json:"name"`
	PriceMicros      int64            `json:"price_micros"`
	QuantityUnits    int64            `json:"quantity_units"`
	TotalValueMicros int64            `json:"total_value_micros"`
	Type             market.AssetType `json:"type"`
}

type PortfolioState struct {
	CashMicros int64     `json:"cash_micros"`
	Holdings   []Holding `json:"holdings"`
	GameTime   int64     `json:"game_time"`
	Running    bool      `json:"running"`
}

type Upgrade struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	BaseCost int64  `json:"base_cost"`
	Power    int64  `json:"power"`
	Level    int32  `json:"level"`
}

// NextCost is the coin price of the next purchase at the current level.
func (u Upgrade) NextCost() int64 {
	return UpgradeCost(u.BaseCost, u.Level)
}

type ClickerState struct {
	Coins         int64     `json:"coins"`
	ClickPower    int64     `json:"click_power"`
	AutoClickRate int64     `json:"auto_click_rate"`
	Upgrades      []Upgrade `json:"upgrades"`
}

// Snapshot is the persistable view of both state aggregates.
type Snapshot struct {
	Portfolio PortfolioState `json:"portfolio"`
	Clicker   ClickerState   `json:"clicker"`
}

// StateView is the read surface handed to presentation: both aggregates
// plus derived totals.
type StateView struct {
	Portfolio        PortfolioState `json:"portfolio"`
	Clicker          ClickerState   `json:"clicker"`
	TotalValueMicros int64          `json:"total_value_micros"`
	HoldingsMicros   int64          `json:"holdings_micros"`
}

// Odd upgrade ids raise click power, even ids raise the auto-click rate.
func upgradeBoostsClick(id int64) bool {
	return id%2 == 1
}

func defaultUpgrades() []Upgrade {
	return []Upgrade{
		{ID: 1, Name: "Stronger Click", BaseCost: 10, Power: 1},
		{ID: 2, Name: "Auto Clicker", BaseCost: 50, Power: 1},
		{ID: 3, Name: "Click Booster", BaseCost: 200, Power: 5},
		{ID: 4, Name: "Automation System", BaseCost: 500, Power: 5},
		{ID: 5, Name: "Click Factory", BaseCost: 2000, Power: 25},
		{ID: 6, Name: "Crypto Miner", BaseCost: 5000, Power: 50},
		{ID: 7, Name: "Quantum Click", BaseCost: 20000, Power: 200},
		{ID: 8, Name: "AI Click Bot", BaseCost: 100000, Power: 1000},
	}
}

func defaultPortfolio() PortfolioState {
	return PortfolioState{CashMicros: StarterCashMicros}
}

func defaultClicker() ClickerState {
	return ClickerState{ClickPower: StarterClickPower, Upgrades: defaultUpgrades()}
}
