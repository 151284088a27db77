package analytics

import "github.com/shopspring/decimal"

// OverallStats summarises one filtered population. Stake counts every bet;
// profit and payout only count settled ones.
type OverallStats struct {
	BetsCount          int             `json:"bets_count"`
	StakeTotal         decimal.Decimal `json:"stake_total"`
	ProfitTotal        decimal.Decimal `json:"profit_total"`
	PayoutTotal        decimal.Decimal `json:"payout_total"`
	ROIPercent         float64         `json:"roi_percent"`
	HitRatePercent     float64         `json:"hit_rate_percent"`
	AvgOdds            float64         `json:"avg_odds"`
	CurrentStreak      int             `json:"current_streak"`
	BestStreak         int             `json:"best_streak"`
	WorstStreak        int             `json:"worst_streak"`
	MaxDrawdown        decimal.Decimal `json:"max_drawdown"`
	MaxDrawdownPercent float64         `json:"max_drawdown_percent"`
}

type GroupedStat struct {
	Label       string          `json:"label"`
	BetsCount   int             `json:"bets_count"`
	WinsCount   int             `json:"wins_count"`
	LossesCount int             `json:"losses_count"`
	VoidsCount  int             `json:"voids_count"`
	StakeTotal  decimal.Decimal `json:"stake_total"`
	ProfitTotal decimal.Decimal `json:"profit_total"`
	ROIPercent  float64         `json:"roi_percent"`
	AvgOdds     float64         `json:"avg_odds"`
}

type WeeklyStats struct {
	CurrentWeek OverallStats `json:"current_week"`
	LastWeek    OverallStats `json:"last_week"`
}

type Overview struct {
	Overall        OverallStats  `json:"overall"`
	Weekly         WeeklyStats   `json:"weekly"`
	BySport        []GroupedStat `json:"by_sport"`
	ByBookmaker    []GroupedStat `json:"by_bookmaker"`
	ByLeague       []GroupedStat `json:"by_league"`
	ByMarketType   []GroupedStat `json:"by_market_type"`
	ByBetCategory  []GroupedStat `json:"by_bet_category"`
	ByOddsBucket   []GroupedStat `json:"by_odds_bucket"`
	ByMonth        []GroupedStat `json:"by_month"`
	ByWeekday      []GroupedStat `json:"by_weekday"`
	LiveVsPrematch []GroupedStat `json:"live_vs_prematch"`
}

type TimeseriesPoint struct {
	Date             string          `json:"date"`
	Profit           decimal.Decimal `json:"profit"`
	CumulativeProfit decimal.Decimal `json:"cumulative_profit"`
	BetsCount        int             `json:"bets_count"`
}

var hundred = decimal.NewFromInt(100)

// percent returns num/den*100 rounded to two places, or 0 when den is zero.
func percent(num, den decimal.Decimal) float64 {
	if den.IsZero() {
		return 0
	}
	return num.Div(den).Mul(hundred).Round(2).InexactFloat64()
}

func mean(sum decimal.Decimal, n int) float64 {
	if n <= 0 {
		return 0
	}
	return sum.Div(decimal.NewFromInt(int64(n))).Round(2).InexactFloat64()
}
