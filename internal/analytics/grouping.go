package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"bettracker/internal/models"
)

const (
	LabelOther    = "Other"
	LabelUnknown  = "Unknown"
	LabelLive     = "Live"
	LabelPrematch = "Prematch"

	monthLayout = "01/2006"
)

var weekdayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

type groupAcc struct {
	bets    int
	wins    int
	losses  int
	voids   int
	stake   decimal.Decimal
	profit  decimal.Decimal
	oddsSum decimal.Decimal
}

func (a *groupAcc) add(t models.Ticket) {
	a.bets++
	a.stake = a.stake.Add(t.Stake)
	a.oddsSum = a.oddsSum.Add(t.Odds)
	switch OutcomeOf(t.Status) {
	case OutcomeWin:
		a.wins++
	case OutcomeLoss:
		a.losses++
	case OutcomeVoid:
		a.voids++
	}
	if IsSettled(t.Status) {
		a.profit = a.profit.Add(profitOf(t))
	}
}

func (a *groupAcc) stat(label string) GroupedStat {
	return GroupedStat{
		Label:       label,
		BetsCount:   a.bets,
		WinsCount:   a.wins,
		LossesCount: a.losses,
		VoidsCount:  a.voids,
		StakeTotal:  a.stake,
		ProfitTotal: a.profit,
		ROIPercent:  percent(a.profit, a.stake),
		AvgOdds:     mean(a.oddsSum, a.bets),
	}
}

// orderedGroups keeps accumulators keyed by label in first-seen order.
// Seeded labels are emitted even when nothing landed in them.
type orderedGroups struct {
	keys   []string
	accs   map[string]*groupAcc
	seeded map[string]struct{}
}

func newOrderedGroups(seed ...string) *orderedGroups {
	g := &orderedGroups{accs: make(map[string]*groupAcc), seeded: make(map[string]struct{})}
	for _, key := range seed {
		g.get(key)
		g.seeded[key] = struct{}{}
	}
	return g
}

func (g *orderedGroups) get(key string) *groupAcc {
	acc, ok := g.accs[key]
	if !ok {
		acc = &groupAcc{stake: decimal.Zero, profit: decimal.Zero, oddsSum: decimal.Zero}
		g.accs[key] = acc
		g.keys = append(g.keys, key)
	}
	return acc
}

func (g *orderedGroups) stats() []GroupedStat {
	out := make([]GroupedStat, 0, len(g.keys))
	for _, key := range g.keys {
		acc := g.accs[key]
		if _, ok := g.seeded[key]; !ok && acc.bets == 0 {
			continue
		}
		out = append(out, acc.stat(key))
	}
	return out
}

// GroupBy aggregates tickets under the label returned by key.
func GroupBy(tickets []models.Ticket, key func(models.Ticket) string) []GroupedStat {
	g := newOrderedGroups()
	for _, t := range tickets {
		g.get(key(t)).add(t)
	}
	return g.stats()
}

func BySport(tickets []models.Ticket) []GroupedStat {
	return GroupBy(tickets, func(t models.Ticket) string {
		if t.Sport == nil || t.Sport.Name == "" {
			return LabelUnknown
		}
		return t.Sport.Name
	})
}

// ByBookmaker lists every known bookmaker first so inactive ones show up
// with zero stats.
func ByBookmaker(tickets []models.Ticket, known []string) []GroupedStat {
	g := newOrderedGroups(known...)
	for _, t := range tickets {
		label := LabelUnknown
		if t.Bookmaker != nil && t.Bookmaker.Name != "" {
			label = t.Bookmaker.Name
		}
		g.get(label).add(t)
	}
	return g.stats()
}

func ByLeague(tickets []models.Ticket) []GroupedStat {
	return GroupBy(tickets, func(t models.Ticket) string {
		if t.League == nil || t.League.Name == "" {
			return LabelOther
		}
		return t.League.Name
	})
}

func ByMarketType(tickets []models.Ticket) []GroupedStat {
	return GroupBy(tickets, func(t models.Ticket) string {
		if t.MarketType == nil || t.MarketType.Name == "" {
			return LabelOther
		}
		return t.MarketType.Name
	})
}

func LiveVsPrematch(tickets []models.Ticket) []GroupedStat {
	return GroupBy(tickets, func(t models.Ticket) string {
		if t.IsLive {
			return LabelLive
		}
		return LabelPrematch
	})
}

// ByWeekday orders rows Monday first with the Unknown bucket last.
func ByWeekday(tickets []models.Ticket, loc *time.Location) []GroupedStat {
	stats := GroupBy(tickets, func(t models.Ticket) string {
		if t.CreatedAt == nil {
			return LabelUnknown
		}
		return weekdayName(localTime(*t.CreatedAt, loc).Weekday())
	})
	order := make(map[string]int, len(weekdayNames))
	for i, name := range weekdayNames {
		order[name] = i
	}
	rank := func(label string) int {
		if i, ok := order[label]; ok {
			return i
		}
		return len(weekdayNames)
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return rank(stats[i].Label) < rank(stats[j].Label)
	})
	return stats
}

func weekdayName(d time.Weekday) string {
	// time.Weekday starts on Sunday.
	return weekdayNames[(int(d)+6)%7]
}

// ByMonth labels rows MM/YYYY, newest first. Labels that do not parse keep
// their first-seen order after the dated rows.
func ByMonth(tickets []models.Ticket, loc *time.Location) []GroupedStat {
	stats := GroupBy(tickets, func(t models.Ticket) string {
		if t.CreatedAt == nil {
			return LabelUnknown
		}
		return localTime(*t.CreatedAt, loc).Format(monthLayout)
	})
	return sortMonthsDesc(stats)
}

func sortMonthsDesc(stats []GroupedStat) []GroupedStat {
	type dated struct {
		at   time.Time
		stat GroupedStat
	}
	parsed := make([]dated, 0, len(stats))
	rest := make([]GroupedStat, 0)
	for _, s := range stats {
		at, err := time.Parse(monthLayout, s.Label)
		if err != nil {
			rest = append(rest, s)
			continue
		}
		parsed = append(parsed, dated{at: at, stat: s})
	}
	sort.SliceStable(parsed, func(i, j int) bool {
		return parsed[i].at.After(parsed[j].at)
	})
	out := make([]GroupedStat, 0, len(stats))
	for _, d := range parsed {
		out = append(out, d.stat)
	}
	return append(out, rest...)
}

func localTime(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		return t
	}
	return t.In(loc)
}
