package llm

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// TicketCandidate is an unverified ticket read from a screenshot. It must go
// through the normal ticket create path before it is stored.
type TicketCandidate struct {
	HomeTeam    string           `json:"home_team"`
	AwayTeam    string           `json:"away_team"`
	Sport       string           `json:"sport"`
	League      string           `json:"league"`
	MarketLabel string           `json:"market_label"`
	Selection   string           `json:"selection"`
	Odds        *decimal.Decimal `json:"odds"`
	Stake       *decimal.Decimal `json:"stake"`
	Payout      *decimal.Decimal `json:"payout"`
	Status      string           `json:"status"`
	IsLive      bool             `json:"is_live"`
}

type OCRResult struct {
	Tickets    []TicketCandidate `json:"tickets"`
	RawText    string            `json:"raw_text"`
	Confidence float64           `json:"confidence"`
}

var (
	fencedBlockRe = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)```")
	arrayRe       = regexp.MustCompile(`\[[\s\S]*\]`)
	objectRe      = regexp.MustCompile(`\{[\s\S]*\}`)
	flatObjectRe  = regexp.MustCompile(`\{[^{}]+\}`)

	teamsRe       = regexp.MustCompile(`([A-ZÁ-Ža-zá-ž\s.]+?)\s*[-\x{2013}vs]+\s*([A-ZÁ-Ža-zá-ž\s.]+)`)
	oddsLabelRe   = regexp.MustCompile(`(?i)(?:kurz|odds|celkov[ýy]\s*kurz)[:\s]*(\d+[.,]\d+)`)
	oddsBareRe    = regexp.MustCompile(`(\d+[.,]\d{2})`)
	stakeRe       = regexp.MustCompile(`(?i)(?:vklad|stake)[:\s]*(\d+)`)
	payoutRe      = regexp.MustCompile(`(?i)(?:výhra|skutečná výhra|payout|win)[:\s]*(\d+[.,]?\d*)`)
	plainSports   = []string{"fotbal", "hokej", "basketbal", "tenis", "volejbal", "házená"}
	wonMarkers    = []string{"výhra", "won", "vyhrán", "✓", "✅"}
	lostMarkers   = []string{"prohra", "lost", "✗", "❌"}
	candidateKeys = []string{"home_team", "odds", "stake"}
)

// ParseOCRResponse turns raw model output into candidates. Confidence is
// 0.2 per candidate capped at 0.8, and 0 when nothing was found.
func ParseOCRResponse(raw string) OCRResult {
	out := OCRResult{Tickets: []TicketCandidate{}, RawText: raw}
	for _, item := range ExtractItems(raw) {
		out.Tickets = append(out.Tickets, NormalizeCandidate(item))
	}
	if n := len(out.Tickets); n > 0 {
		out.Confidence = math.Min(0.8, 0.2*float64(n))
	}
	return out
}

// ExtractItems finds ticket-shaped JSON in free model output, trying in
// order: a JSON array, a single object, a list of flat objects, and finally
// regexes over plain text.
func ExtractItems(text string) []map[string]any {
	clean := strings.TrimSpace(fencedBlockRe.ReplaceAllString(text, "$1"))

	if m := arrayRe.FindString(clean); m != "" {
		var list []any
		if err := json.Unmarshal([]byte(m), &list); err == nil {
			items := make([]map[string]any, 0, len(list))
			for _, v := range list {
				if obj, ok := v.(map[string]any); ok {
					items = append(items, obj)
				}
			}
			return items
		}
	}

	if m := objectRe.FindString(clean); m != "" {
		var obj map[string]any
		if err := json.Unmarshal([]byte(m), &obj); err == nil {
			return []map[string]any{obj}
		}
	}

	var items []map[string]any
	for _, m := range flatObjectRe.FindAllString(clean, -1) {
		var obj map[string]any
		if err := json.Unmarshal([]byte(m), &obj); err != nil {
			continue
		}
		for _, k := range candidateKeys {
			if _, ok := obj[k]; ok {
				items = append(items, obj)
				break
			}
		}
	}
	if len(items) > 0 {
		return items
	}

	if item := extractPlainText(text); item != nil {
		return []map[string]any{item}
	}
	return nil
}

func extractPlainText(text string) map[string]any {
	item := map[string]any{}

	if m := teamsRe.FindStringSubmatch(text); m != nil {
		item["home_team"] = strings.TrimSpace(m[1])
		item["away_team"] = strings.TrimSpace(m[2])
	}

	m := oddsLabelRe.FindStringSubmatch(text)
	if m == nil {
		m = oddsBareRe.FindStringSubmatch(text)
	}
	if m != nil {
		item["odds"] = strings.ReplaceAll(m[1], ",", ".")
	}
	if m := stakeRe.FindStringSubmatch(text); m != nil {
		item["stake"] = m[1]
	}
	if m := payoutRe.FindStringSubmatch(text); m != nil {
		item["payout"] = strings.ReplaceAll(m[1], ",", ".")
	}

	lower := strings.ToLower(text)
	for _, sport := range plainSports {
		if strings.Contains(lower, sport) {
			item["sport"] = capitalize(sport)
			break
		}
	}

	item["status"] = "open"
	if containsAny(lower, wonMarkers) {
		item["status"] = "won"
	} else if containsAny(lower, lostMarkers) {
		item["status"] = "lost"
	}

	_, hasTeam := item["home_team"]
	_, hasOdds := item["odds"]
	_, hasStake := item["stake"]
	if !hasTeam && !hasOdds && !hasStake {
		return nil
	}
	return item
}

// NormalizeCandidate reads a loosely typed item, accepting common aliases
// (market, pick, win, vyhra) and comma decimals.
func NormalizeCandidate(item map[string]any) TicketCandidate {
	payout := firstPresent(item, "payout", "win", "vyhra")
	return TicketCandidate{
		HomeTeam:    stringField(item, "home_team"),
		AwayTeam:    stringField(item, "away_team"),
		Sport:       stringField(item, "sport"),
		League:      stringField(item, "league"),
		MarketLabel: firstNonEmpty(stringField(item, "market_label"), stringField(item, "market")),
		Selection:   firstNonEmpty(stringField(item, "selection"), stringField(item, "pick")),
		Odds:        safeDecimal(item["odds"]),
		Stake:       safeDecimal(item["stake"]),
		Payout:      safeDecimal(payout),
		Status:      normalizeStatus(stringField(item, "status")),
		IsLive:      truthy(item["is_live"]),
	}
}

func firstPresent(item map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := item[k]; ok {
			return v
		}
	}
	return nil
}

func stringField(item map[string]any, key string) string {
	v, ok := item[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case bool:
		if !t {
			return ""
		}
		return "true"
	case float64:
		if t == 0 {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

func safeDecimal(v any) *decimal.Decimal {
	var d decimal.Decimal
	switch t := v.(type) {
	case nil:
		return nil
	case float64:
		d = decimal.NewFromFloat(t)
	case int:
		d = decimal.NewFromInt(int64(t))
	case json.Number:
		parsed, err := decimal.NewFromString(t.String())
		if err != nil {
			return nil
		}
		d = parsed
	case string:
		parsed, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(t), ",", "."))
		if err != nil {
			return nil
		}
		d = parsed
	default:
		return nil
	}
	return &d
}

func normalizeStatus(s string) string {
	switch strings.ToLower(s) {
	case "won", "lost", "void", "half_win", "half_loss":
		return strings.ToLower(s)
	default:
		return "open"
	}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		return err == nil && b
	default:
		return false
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func capitalize(s string) string {
	for i := range s {
		if i > 0 {
			return strings.ToUpper(s[:i]) + s[i:]
		}
	}
	return strings.ToUpper(s)
}
