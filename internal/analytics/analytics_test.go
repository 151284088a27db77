package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bettracker/internal/models"
)

var baseTime = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC) // a Monday

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func at(offset time.Duration) *time.Time {
	ts := baseTime.Add(offset)
	return &ts
}

func ticket(status, stake, odds string, profit *decimal.Decimal, created *time.Time) models.Ticket {
	return models.Ticket{
		Status:    status,
		Stake:     dec(stake),
		Odds:      dec(odds),
		Profit:    profit,
		CreatedAt: created,
	}
}

func TestOverallRoundTrip(t *testing.T) {
	tickets := []models.Ticket{
		ticket(models.TicketStatusWon, "100", "1.50", decPtr("50"), at(0)),
		ticket(models.TicketStatusLost, "100", "2.00", decPtr("-100"), at(time.Hour)),
		ticket(models.TicketStatusOpen, "100", "2.50", nil, at(2*time.Hour)),
	}

	got := Overall(tickets)
	assert.Equal(t, 3, got.BetsCount)
	assert.Equal(t, "300", got.StakeTotal.String())
	assert.Equal(t, "-50", got.ProfitTotal.String())
	assert.Equal(t, -16.67, got.ROIPercent)
	assert.Equal(t, 50.0, got.HitRatePercent)
	assert.Equal(t, 2.0, got.AvgOdds)
	assert.Equal(t, -1, got.CurrentStreak)
	assert.Equal(t, 1, got.BestStreak)
	assert.Equal(t, 1, got.WorstStreak)
	assert.Equal(t, "100", got.MaxDrawdown.String())
	assert.Equal(t, 50.0, got.MaxDrawdownPercent)
}

func TestOverallEmpty(t *testing.T) {
	got := Overall(nil)
	assert.Zero(t, got.BetsCount)
	assert.True(t, got.StakeTotal.IsZero())
	assert.Zero(t, got.ROIPercent)
	assert.Zero(t, got.HitRatePercent)
	assert.Zero(t, got.MaxDrawdownPercent)
	assert.Zero(t, got.CurrentStreak)
}

func TestOverallZeroStakeKeepsRatiosAtZero(t *testing.T) {
	got := Overall([]models.Ticket{ticket(models.TicketStatusVoid, "0", "1.80", decPtr("0"), at(0))})
	assert.Equal(t, 1, got.BetsCount)
	assert.Zero(t, got.ROIPercent)
	assert.Zero(t, got.MaxDrawdownPercent)
	assert.Zero(t, got.HitRatePercent)
}

func TestStreaksResetOnVoidAndHalfResults(t *testing.T) {
	seq := func(statuses ...string) []models.Ticket {
		out := make([]models.Ticket, 0, len(statuses))
		for _, s := range statuses {
			out = append(out, models.Ticket{Status: s})
		}
		return out
	}

	current, best, worst := Streaks(seq("won", "won", "won", "void", "won", "lost", "lost"))
	assert.Equal(t, -2, current)
	assert.Equal(t, 3, best)
	assert.Equal(t, 2, worst)

	current, best, worst = Streaks(seq("lost", "lost", "lost", "half_win", "won", "won"))
	assert.Equal(t, 2, current)
	assert.Equal(t, 2, best)
	assert.Equal(t, 3, worst)

	current, _, _ = Streaks(seq("won", "half_loss"))
	assert.Zero(t, current)

	current, best, worst = Streaks(nil)
	assert.Zero(t, current)
	assert.Zero(t, best)
	assert.Zero(t, worst)
}

func TestDrawdownNonDecreasingIsZero(t *testing.T) {
	settled := []models.Ticket{
		ticket(models.TicketStatusWon, "10", "2", decPtr("10"), nil),
		ticket(models.TicketStatusVoid, "10", "2", decPtr("0"), nil),
		ticket(models.TicketStatusWon, "10", "2", decPtr("5"), nil),
	}
	dd, pct := Drawdown(settled)
	assert.True(t, dd.IsZero())
	assert.Zero(t, pct)
}

func TestDrawdownTracksPeak(t *testing.T) {
	settled := []models.Ticket{
		ticket(models.TicketStatusWon, "100", "2", decPtr("100"), nil),
		ticket(models.TicketStatusLost, "100", "2", decPtr("-100"), nil),
		ticket(models.TicketStatusLost, "100", "2", decPtr("-100"), nil),
		ticket(models.TicketStatusWon, "100", "4", decPtr("300"), nil),
		ticket(models.TicketStatusHalfLoss, "100", "2", decPtr("-50"), nil),
	}
	dd, pct := Drawdown(settled)
	assert.Equal(t, "200", dd.String())
	assert.Equal(t, 40.0, pct)
}

func TestSortChronologicalNullsFirstAndStable(t *testing.T) {
	tickets := []models.Ticket{
		{ID: 1, CreatedAt: at(time.Hour)},
		{ID: 2},
		{ID: 3, CreatedAt: at(0)},
		{ID: 4},
	}
	sorted := SortChronological(tickets)
	ids := make([]uint64, 0, len(sorted))
	for _, tk := range sorted {
		ids = append(ids, tk.ID)
	}
	assert.Equal(t, []uint64{2, 4, 3, 1}, ids)
	assert.Equal(t, uint64(1), tickets[0].ID, "input must not be reordered")
}

func TestWeeklyComparison(t *testing.T) {
	now := baseTime
	threeDays := now.Add(-3 * 24 * time.Hour)
	tenDays := now.Add(-10 * 24 * time.Hour)
	tickets := []models.Ticket{
		ticket(models.TicketStatusWon, "20", "2", decPtr("20"), &threeDays),
		ticket(models.TicketStatusLost, "20", "2", decPtr("-20"), &tenDays),
	}

	ov := Composer{}.Compose(tickets, nil, now)
	assert.Equal(t, "20", ov.Weekly.CurrentWeek.ProfitTotal.String())
	assert.Equal(t, 1, ov.Weekly.CurrentWeek.BetsCount)
	assert.Equal(t, "-20", ov.Weekly.LastWeek.ProfitTotal.String())
	assert.Equal(t, 1, ov.Weekly.LastWeek.BetsCount)
	assert.Equal(t, 2, ov.Overall.BetsCount)
}

func TestWeeklyWindowsAreHalfOpen(t *testing.T) {
	current, previous := WeeklyWindows(baseTime)
	edge := baseTime.Add(-7 * 24 * time.Hour)
	tk := models.Ticket{CreatedAt: &edge}
	assert.True(t, current.Contains(tk))
	assert.False(t, previous.Contains(tk))
	assert.False(t, current.Contains(models.Ticket{CreatedAt: &baseTime}))
	assert.False(t, current.Contains(models.Ticket{}))
}

func TestFilterMatch(t *testing.T) {
	league := uint64(7)
	sport := uint64(1)
	live := true
	status := models.TicketStatusWon
	from := baseTime
	to := baseTime.Add(time.Hour)

	tk := models.Ticket{SportID: 1, Status: models.TicketStatusWon, IsLive: true, Odds: dec("2.00"), CreatedAt: at(time.Hour)}

	assert.True(t, Filter{}.Match(tk))
	assert.True(t, Filter{}.IsEmpty())
	assert.True(t, Filter{SportID: &sport, IsLive: &live, Status: &status}.Match(tk))
	assert.False(t, Filter{LeagueID: &league}.Match(tk), "null league fails only a league predicate")
	assert.True(t, Filter{DateFrom: &from, DateTo: &to}.Match(tk), "date range is inclusive")
	assert.True(t, Filter{OddsMin: decPtr("2.00"), OddsMax: decPtr("2.00")}.Match(tk), "odds range is inclusive")
	assert.False(t, Filter{OddsMin: decPtr("2.01")}.Match(tk))
	assert.False(t, Filter{DateFrom: &from}.Match(models.Ticket{}))

	tk.LeagueID = &league
	assert.True(t, Filter{LeagueID: &league}.Match(tk))
	assert.Len(t, Filter{SportID: &sport}.Apply([]models.Ticket{tk, {SportID: 2}}), 1)
}

func TestGroupedStatsArithmetic(t *testing.T) {
	football := &models.Sport{Name: "Football"}
	tennis := &models.Sport{Name: "Tennis"}
	tickets := []models.Ticket{
		{Sport: football, Status: models.TicketStatusWon, Stake: dec("100"), Odds: dec("2.00"), Profit: decPtr("100")},
		{Sport: tennis, Status: models.TicketStatusHalfLoss, Stake: dec("50"), Odds: dec("1.90"), Profit: decPtr("-25")},
		{Sport: football, Status: models.TicketStatusOpen, Stake: dec("100"), Odds: dec("3.00")},
		{Sport: football, Status: models.TicketStatusVoid, Stake: dec("10"), Odds: dec("1.50"), Profit: decPtr("0")},
	}
	stats := BySport(tickets)
	require.Len(t, stats, 2)

	fb := stats[0]
	assert.Equal(t, "Football", fb.Label)
	assert.Equal(t, 3, fb.BetsCount)
	assert.Equal(t, 1, fb.WinsCount)
	assert.Equal(t, 1, fb.VoidsCount)
	assert.Equal(t, "210", fb.StakeTotal.String())
	assert.Equal(t, "100", fb.ProfitTotal.String())
	assert.Equal(t, 47.62, fb.ROIPercent)
	assert.Equal(t, 2.17, fb.AvgOdds)

	assert.Equal(t, "Tennis", stats[1].Label)
	assert.Equal(t, 1, stats[1].LossesCount)
	assert.Equal(t, -50.0, stats[1].ROIPercent)
}

func TestByBookmakerKeepsSeededRows(t *testing.T) {
	tickets := []models.Ticket{
		{Bookmaker: &models.Bookmaker{Name: "Fortuna"}, Status: models.TicketStatusLost, Stake: dec("10"), Odds: dec("2"), Profit: decPtr("-10")},
	}
	stats := ByBookmaker(tickets, []string{"Tipsport", "Fortuna", "Betano"})
	require.Len(t, stats, 3)
	assert.Equal(t, "Tipsport", stats[0].Label)
	assert.Zero(t, stats[0].BetsCount)
	assert.Zero(t, stats[0].ROIPercent)
	assert.Equal(t, 1, stats[1].BetsCount)
	assert.Equal(t, "Betano", stats[2].Label)
}

func TestSentinelLabels(t *testing.T) {
	tickets := []models.Ticket{
		{Stake: dec("1"), Odds: dec("2"), IsLive: true},
		{Stake: dec("1"), Odds: dec("2"), League: &models.League{Name: "Premier League"}},
	}
	leagues := ByLeague(tickets)
	require.Len(t, leagues, 2)
	assert.Equal(t, LabelOther, leagues[0].Label)

	markets := ByMarketType(tickets)
	require.Len(t, markets, 1)
	assert.Equal(t, LabelOther, markets[0].Label)

	live := LiveVsPrematch(tickets)
	require.Len(t, live, 2)
	assert.Equal(t, LabelLive, live[0].Label)
	assert.Equal(t, LabelPrematch, live[1].Label)
}

func TestByWeekdayOrder(t *testing.T) {
	tickets := []models.Ticket{
		{Stake: dec("1"), Odds: dec("2")},
		{Stake: dec("1"), Odds: dec("2"), CreatedAt: at(6 * 24 * time.Hour)},
		{Stake: dec("1"), Odds: dec("2"), CreatedAt: at(2 * 24 * time.Hour)},
		{Stake: dec("1"), Odds: dec("2"), CreatedAt: at(0)},
	}
	stats := ByWeekday(tickets, time.UTC)
	labels := make([]string, 0, len(stats))
	for _, s := range stats {
		labels = append(labels, s.Label)
	}
	assert.Equal(t, []string{"Monday", "Wednesday", "Sunday", LabelUnknown}, labels)
}

func TestByMonthNewestFirstUnknownLast(t *testing.T) {
	jan := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	dec25 := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	tickets := []models.Ticket{
		{Stake: dec("1"), Odds: dec("2"), CreatedAt: &jan},
		{Stake: dec("1"), Odds: dec("2")},
		{Stake: dec("1"), Odds: dec("2"), CreatedAt: &dec25},
		{Stake: dec("1"), Odds: dec("2"), CreatedAt: &mar},
	}
	stats := ByMonth(tickets, time.UTC)
	labels := make([]string, 0, len(stats))
	for _, s := range stats {
		labels = append(labels, s.Label)
	}
	assert.Equal(t, []string{"03/2026", "01/2026", "12/2025", LabelUnknown}, labels)
}

func TestByOddsBucket(t *testing.T) {
	tickets := []models.Ticket{
		{Odds: dec("1.00"), Stake: dec("1")},
		{Odds: dec("1.50"), Stake: dec("1")},
		{Odds: dec("1.51"), Stake: dec("1")},
		{Odds: dec("12.00"), Stake: dec("1")},
		{Odds: dec("1.01"), Stake: dec("1")},
		{Odds: dec("999.00"), Stake: dec("1")},
		{Odds: dec("999.01"), Stake: dec("1")},
	}
	stats := ByOddsBucket(tickets, nil)
	require.Len(t, stats, 3)
	assert.Equal(t, "1.01-1.50", stats[0].Label)
	assert.Equal(t, 2, stats[0].BetsCount)
	assert.Equal(t, "1.51-2.00", stats[1].Label)
	assert.Equal(t, "5.01+", stats[2].Label)
	assert.Equal(t, 2, stats[2].BetsCount, "999.00 is the top edge of 5.01+")

	total := 0
	for _, s := range stats {
		total += s.BetsCount
	}
	assert.Equal(t, 5, total, "odds 1.00 and 999.01 fall into no bucket")
}

func TestTimeseriesSameDay(t *testing.T) {
	tickets := []models.Ticket{
		ticket(models.TicketStatusWon, "10", "4", decPtr("30"), at(time.Hour)),
		ticket(models.TicketStatusLost, "10", "2", decPtr("-10"), at(2*time.Hour)),
		ticket(models.TicketStatusVoid, "10", "2", decPtr("0"), at(3*time.Hour)),
		ticket(models.TicketStatusOpen, "10", "2", nil, at(3*time.Hour)),
	}
	points := Timeseries(tickets, time.UTC)
	require.Len(t, points, 1)
	assert.Equal(t, "2026-03-02", points[0].Date)
	assert.Equal(t, "20", points[0].Profit.String())
	assert.Equal(t, "20", points[0].CumulativeProfit.String())
	assert.Equal(t, 2, points[0].BetsCount)
}

func TestTimeseriesCumulativeAndUnknownDay(t *testing.T) {
	tickets := []models.Ticket{
		ticket(models.TicketStatusWon, "10", "2", decPtr("10"), at(24*time.Hour)),
		ticket(models.TicketStatusHalfWin, "10", "2", decPtr("5"), nil),
		ticket(models.TicketStatusLost, "10", "2", decPtr("-10"), at(0)),
	}
	points := Timeseries(tickets, time.UTC)
	require.Len(t, points, 3)
	assert.Equal(t, "2026-03-02", points[0].Date)
	assert.Equal(t, "-10", points[0].CumulativeProfit.String())
	assert.Equal(t, "2026-03-03", points[1].Date)
	assert.Equal(t, "0", points[1].CumulativeProfit.String())
	assert.Equal(t, LabelUnknown, points[2].Date)
	assert.Equal(t, "5", points[2].CumulativeProfit.String())
}

func TestComposeUsesSamePopulation(t *testing.T) {
	tickets := []models.Ticket{
		{Sport: &models.Sport{Name: "Hockey"}, Status: models.TicketStatusWon, Stake: dec("10"), Odds: dec("1.80"), Profit: decPtr("8"), CreatedAt: at(-time.Hour)},
		{Sport: &models.Sport{Name: "Hockey"}, Status: models.TicketStatusOpen, Stake: dec("10"), Odds: dec("2.20"), CreatedAt: at(-2 * time.Hour)},
	}
	c := Composer{Location: time.UTC, Category: func(models.Ticket) string { return "other" }}
	ov := c.Compose(tickets, []string{"Tipsport"}, baseTime)

	assert.Equal(t, 2, ov.Overall.BetsCount)
	sum := func(stats []GroupedStat) int {
		n := 0
		for _, s := range stats {
			n += s.BetsCount
		}
		return n
	}
	assert.Equal(t, 2, sum(ov.BySport))
	assert.Equal(t, 2, sum(ov.ByMonth))
	assert.Equal(t, 2, sum(ov.ByWeekday))
	assert.Equal(t, 2, sum(ov.LiveVsPrematch))
	assert.Equal(t, 2, sum(ov.ByBetCategory))
	assert.Equal(t, 2, sum(ov.ByOddsBucket))
	assert.Equal(t, 2, ov.Weekly.CurrentWeek.BetsCount)
	assert.Zero(t, ov.Weekly.LastWeek.BetsCount)
}
