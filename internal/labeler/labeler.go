// Package labeler sorts free-text market labels into a small set of bet
// categories with ordered regex rules.
package labeler

import (
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"

	"bettracker/internal/models"
)

const (
	CategoryMatchResult = "match_result"
	CategoryOverUnder   = "over_under"
	CategoryHandicap    = "handicap"
	CategoryStats       = "stats"
	CategoryCombo       = "combo"
	CategoryOther       = "other"
)

// LabelRule matches when any Any pattern and every All pattern match.
type LabelRule struct {
	Label string
	Any   []string
	All   []string

	anyRe []*regexp.Regexp
	allRe []*regexp.Regexp
}

type BetLabeler struct {
	Rules  []LabelRule
	Logger *zap.Logger

	once sync.Once
}

var (
	resultTerms = []string{
		`součet`, `vítěz zápasu`, `vítěz zapasu`, `výsledek zápasu`, `výsledek`,
		`vítěz 1\.`, `vítěz setu`,
	}
	overUnderTerms = []string{
		`počet gólů`, `počet bodů`, `počet gemů`, `počet setů`, `počet her`,
		`více než`, `méně než`,
	}
)

// DefaultRules are evaluated in order; combos come first because their labels
// also contain result wording.
func DefaultRules() []LabelRule {
	return []LabelRule{
		{Label: CategoryCombo, Any: []string{`výsledek zápasu a`, `výsledek a góly`, `vítěz zápasu a`}},
		{Label: CategoryHandicap, Any: resultTerms, All: []string{`handicap`}},
		{Label: CategoryOverUnder, Any: resultTerms, All: []string{`počet gólů|počet bodů|počet setů|více než|méně než`}},
		{Label: CategoryMatchResult, Any: resultTerms},
		{Label: CategoryOverUnder, Any: overUnderTerms},
		{Label: CategoryHandicap, Any: []string{`handicap`}},
		{Label: CategoryStats, Any: []string{`počet rohů`, `počet žlutých karet`, `střelec`}},
	}
}

func New(logger *zap.Logger) *BetLabeler {
	return &BetLabeler{Rules: DefaultRules(), Logger: logger}
}

func (l *BetLabeler) compile() {
	if len(l.Rules) == 0 {
		l.Rules = DefaultRules()
	}
	for i := range l.Rules {
		l.Rules[i].anyRe = l.compileAll(l.Rules[i].Label, l.Rules[i].Any)
		l.Rules[i].allRe = l.compileAll(l.Rules[i].Label, l.Rules[i].All)
	}
}

func (l *BetLabeler) compileAll(label string, patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, raw := range patterns {
		re, err := regexp.Compile(`(?i)` + raw)
		if err != nil {
			if l.Logger != nil {
				l.Logger.Warn("label rule regex compile failed", zap.String("label", label), zap.String("regex", raw), zap.Error(err))
			}
			continue
		}
		out = append(out, re)
	}
	return out
}

// Label returns the category for a market label, or other when nothing
// matches.
func (l *BetLabeler) Label(marketLabel string) string {
	if l == nil {
		return CategoryOther
	}
	l.once.Do(l.compile)
	text := strings.TrimSpace(marketLabel)
	if text == "" {
		return CategoryOther
	}
	for _, rule := range l.Rules {
		if matchAny(rule.anyRe, text) && matchEvery(rule.allRe, text) {
			return rule.Label
		}
	}
	return CategoryOther
}

// Categorize labels a ticket by its market label, falling back to the name
// of its market type.
func (l *BetLabeler) Categorize(t models.Ticket) string {
	if t.MarketLabel != nil && strings.TrimSpace(*t.MarketLabel) != "" {
		return l.Label(*t.MarketLabel)
	}
	if t.MarketType != nil {
		return l.Label(t.MarketType.Name)
	}
	return CategoryOther
}

func matchAny(res []*regexp.Regexp, text string) bool {
	for _, re := range res {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func matchEvery(res []*regexp.Regexp, text string) bool {
	for _, re := range res {
		if !re.MatchString(text) {
			return false
		}
	}
	return true
}
