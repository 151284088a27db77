package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOCRResponseFencedArray(t *testing.T) {
	raw := "Here you go:\n```json\n[\n" +
		`{"home_team":"Sparta","away_team":"Slavia","odds":2.22,"stake":50,"payout":111,"status":"won"},` +
		`{"home_team":"Plzeň","away_team":"Baník","odds":1.9,"stake":100,"status":"open","is_live":true}` +
		"\n]\n```"
	res := ParseOCRResponse(raw)
	require.Len(t, res.Tickets, 2)
	assert.InDelta(t, 0.4, res.Confidence, 1e-9)
	assert.Equal(t, raw, res.RawText)

	first := res.Tickets[0]
	assert.Equal(t, "Sparta", first.HomeTeam)
	assert.Equal(t, "2.22", first.Odds.String())
	assert.Equal(t, "111", first.Payout.String())
	assert.Equal(t, "won", first.Status)
	assert.True(t, res.Tickets[1].IsLive)
	assert.Nil(t, res.Tickets[1].Payout)
}

func TestParseOCRResponseConfidenceCap(t *testing.T) {
	raw := `[{"odds":1.5},{"odds":1.5},{"odds":1.5},{"odds":1.5},{"odds":1.5}]`
	res := ParseOCRResponse(raw)
	require.Len(t, res.Tickets, 5)
	assert.Equal(t, 0.8, res.Confidence)
}

func TestParseOCRResponseNothingFound(t *testing.T) {
	res := ParseOCRResponse("")
	assert.Empty(t, res.Tickets)
	assert.NotNil(t, res.Tickets)
	assert.Zero(t, res.Confidence)
}

func TestNormalizeCandidateAliases(t *testing.T) {
	items := ExtractItems(`Result: {"market":"Více než 2.5","pick":"Ano","odds":"1,85","stake":100,"vyhra":185,"status":"WON","is_live":"true"}`)
	require.Len(t, items, 1)

	c := NormalizeCandidate(items[0])
	assert.Equal(t, "Více než 2.5", c.MarketLabel)
	assert.Equal(t, "Ano", c.Selection)
	assert.Equal(t, "1.85", c.Odds.String())
	assert.Equal(t, "100", c.Stake.String())
	assert.Equal(t, "185", c.Payout.String())
	assert.Equal(t, "won", c.Status)
	assert.True(t, c.IsLive)
}

func TestNormalizeCandidateBadValues(t *testing.T) {
	c := NormalizeCandidate(map[string]any{"odds": "n/a", "stake": nil, "status": "cashout", "home_team": nil})
	assert.Nil(t, c.Odds)
	assert.Nil(t, c.Stake)
	assert.Equal(t, "open", c.Status)
	assert.Empty(t, c.HomeTeam)
}

func TestExtractFlatObjects(t *testing.T) {
	// Two objects side by side are not valid JSON as a whole.
	text := `{"home_team":"A","odds":2.0} junk {"note":"skip me"} {"stake":10}`
	items := ExtractItems(text)
	require.Len(t, items, 2)
	assert.Equal(t, "A", items[0]["home_team"])
}

func TestExtractPlainText(t *testing.T) {
	text := "Sparta - Slavia kurz: 2,15 vklad 100 výhra 215 fotbal ✅"
	items := ExtractItems(text)
	require.Len(t, items, 1)

	c := NormalizeCandidate(items[0])
	assert.Equal(t, "Sparta", c.HomeTeam)
	assert.Equal(t, "2.15", c.Odds.String())
	assert.Equal(t, "100", c.Stake.String())
	assert.Equal(t, "215", c.Payout.String())
	assert.Equal(t, "Fotbal", c.Sport)
	assert.Equal(t, "won", c.Status)
}
