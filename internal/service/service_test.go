package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bettracker/internal/analytics"
	"bettracker/internal/cache"
	"bettracker/internal/llm"
	"bettracker/internal/models"
	"bettracker/internal/repository/memrepo"
)

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func strPtr(s string) *string { return &s }

func u64(v uint64) *uint64 { return &v }

func fixture() *memrepo.Repo {
	r := memrepo.New()
	r.Bookmakers = []models.Bookmaker{{ID: 1, Name: "Tipsport"}, {ID: 2, Name: "Fortuna"}}
	r.Sports = []models.Sport{{ID: 1, Name: "Fotbal"}, {ID: 2, Name: "Hokej"}}
	r.Leagues = []models.League{{ID: 1, SportID: 1, Name: "Chance Liga"}}
	r.MarketTypes = []models.MarketType{
		{ID: 1, Name: "Výsledek zápasu", IsActive: true, Sports: []models.Sport{{ID: 1, Name: "Fotbal"}}},
		{ID: 2, Name: "Handicap", IsActive: true, Sports: []models.Sport{{ID: 2, Name: "Hokej"}}},
	}
	return r
}

func validInput() TicketInput {
	return TicketInput{
		BookmakerID: 1,
		SportID:     1,
		HomeTeam:    " Sparta ",
		AwayTeam:    "Slavia",
		Odds:        dec("2.00"),
		Stake:       dec("100"),
	}
}

func ticketService(r *memrepo.Repo) *TicketService {
	return &TicketService{Repo: r, Now: func() time.Time { return fixedNow }}
}

func TestCreateTicketDefaultsAndSettles(t *testing.T) {
	svc := ticketService(fixture())
	ctx := context.Background()

	open, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusOpen, open.Status)
	assert.Equal(t, models.TicketTypeSolo, open.TicketType)
	assert.Equal(t, models.TicketSourceManual, open.Source)
	assert.Equal(t, "Sparta", open.HomeTeam)
	assert.Nil(t, open.Profit)
	assert.Nil(t, open.SettledAt)
	require.NotNil(t, open.Bookmaker)
	assert.Equal(t, "Tipsport", open.Bookmaker.Name)

	in := validInput()
	in.Status = models.TicketStatusLost
	lost, err := svc.Create(ctx, in)
	require.NoError(t, err)
	require.NotNil(t, lost.Profit)
	assert.True(t, dec("-100").Equal(*lost.Profit))
	assert.True(t, decimal.Zero.Equal(*lost.Payout))
	require.NotNil(t, lost.SettledAt)
	assert.True(t, fixedNow.Equal(*lost.SettledAt))

	in = validInput()
	in.Status = models.TicketStatusWon
	in.Payout = decPtr("250")
	won, err := svc.Create(ctx, in)
	require.NoError(t, err)
	assert.True(t, dec("150").Equal(*won.Profit))
}

func TestCreateTicketValidation(t *testing.T) {
	svc := ticketService(fixture())
	ctx := context.Background()

	cases := []struct {
		name  string
		edit  func(*TicketInput)
		field string
	}{
		{"odds below one", func(in *TicketInput) { in.Odds = dec("0.50") }, "odds"},
		{"zero stake", func(in *TicketInput) { in.Stake = decimal.Zero }, "stake"},
		{"blank team", func(in *TicketInput) { in.AwayTeam = "  " }, "away_team"},
		{"unknown status", func(in *TicketInput) { in.Status = "maybe" }, "status"},
		{"unknown bookmaker", func(in *TicketInput) { in.BookmakerID = 9 }, "bookmaker_id"},
		{"unknown league", func(in *TicketInput) { in.LeagueID = u64(42) }, "league_id"},
		{"unknown market type", func(in *TicketInput) { in.MarketTypeID = u64(42) }, "market_type_id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.edit(&in)
			_, err := svc.Create(ctx, in)
			require.Error(t, err)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tc.field, ve.Field)
		})
	}
}

func TestUpdateTicketRecomputesSettlement(t *testing.T) {
	r := fixture()
	svc := ticketService(r)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	won, err := svc.Update(ctx, created.ID, TicketUpdate{
		Status: strPtr(models.TicketStatusWon),
		Payout: Some(dec("180")),
	})
	require.NoError(t, err)
	require.NotNil(t, won.Profit)
	assert.True(t, dec("80").Equal(*won.Profit))
	require.NotNil(t, won.SettledAt)

	half, err := svc.Update(ctx, created.ID, TicketUpdate{Status: strPtr(models.TicketStatusHalfLoss)})
	require.NoError(t, err)
	assert.True(t, dec("-50").Equal(*half.Profit))
	assert.True(t, dec("50").Equal(*half.Payout))

	reopened, err := svc.Update(ctx, created.ID, TicketUpdate{Status: strPtr(models.TicketStatusOpen)})
	require.NoError(t, err)
	assert.Nil(t, reopened.Profit)
	assert.Nil(t, reopened.SettledAt)

	_, err = svc.Update(ctx, created.ID, TicketUpdate{HomeTeam: strPtr("  ")})
	assert.True(t, IsValidation(err))

	_, err = svc.Update(ctx, 999, TicketUpdate{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateTicketClearsNullableFields(t *testing.T) {
	svc := ticketService(fixture())
	ctx := context.Background()

	in := validInput()
	in.LeagueID = u64(1)
	in.MarketTypeID = u64(1)
	in.MarketLabel = strPtr("Výsledek zápasu: 1")
	created, err := svc.Create(ctx, in)
	require.NoError(t, err)
	require.NotNil(t, created.LeagueID)

	kept, err := svc.Update(ctx, created.ID, TicketUpdate{AwayTeam: strPtr("Bohemians")})
	require.NoError(t, err)
	require.NotNil(t, kept.LeagueID)
	assert.Equal(t, uint64(1), *kept.LeagueID)

	var u TicketUpdate
	require.NoError(t, json.Unmarshal([]byte(`{"league_id": null, "market_type_id": null, "market_label": null}`), &u))
	assert.True(t, u.LeagueID.Set)
	assert.False(t, u.Selection.Set)

	cleared, err := svc.Update(ctx, created.ID, u)
	require.NoError(t, err)
	assert.Nil(t, cleared.LeagueID)
	assert.Nil(t, cleared.MarketTypeID)
	assert.Nil(t, cleared.MarketLabel)
	assert.Equal(t, "Bohemians", cleared.AwayTeam)

	stats := analytics.ByLeague([]models.Ticket{*cleared})
	require.Len(t, stats, 1)
	assert.Equal(t, analytics.LabelOther, stats[0].Label)
}

func TestUpdateTicketToWinNeedsFreshPayout(t *testing.T) {
	svc := ticketService(fixture())
	ctx := context.Background()

	in := validInput()
	in.Status = models.TicketStatusLost
	lost, err := svc.Create(ctx, in)
	require.NoError(t, err)
	require.True(t, dec("0").Equal(*lost.Payout))

	_, err = svc.Update(ctx, lost.ID, TicketUpdate{Status: strPtr(models.TicketStatusWon)})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "payout", ve.Field)

	_, err = svc.Update(ctx, lost.ID, TicketUpdate{Status: strPtr(models.TicketStatusWon), Payout: Some(dec("0"))})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "payout", ve.Field)

	won, err := svc.Update(ctx, lost.ID, TicketUpdate{Status: strPtr(models.TicketStatusWon), Payout: Some(dec("200"))})
	require.NoError(t, err)
	assert.True(t, dec("100").Equal(*won.Profit))

	in = validInput()
	in.Status = models.TicketStatusHalfWin
	in.Payout = decPtr("0")
	_, err = svc.Create(ctx, in)
	assert.True(t, IsValidation(err))
}

func TestDeleteAndGetTicket(t *testing.T) {
	svc := ticketService(fixture())
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), ErrNotFound)
	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListTicketsPagesAndCounts(t *testing.T) {
	svc := ticketService(fixture())
	ctx := context.Background()
	for _, odds := range []string{"3.10", "1.45", "2.20"} {
		in := validInput()
		in.Odds = dec(odds)
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}

	items, total, err := svc.List(ctx, TicketQuery{SortBy: "odds", SortDir: "asc", Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, items, 2)
	assert.True(t, dec("1.45").Equal(items[0].Odds))
	assert.True(t, dec("2.20").Equal(items[1].Odds))

	floor := dec("2.00")
	items, total, err = svc.List(ctx, TicketQuery{Filter: analytics.Filter{OddsMin: &floor}})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, items, 2)
}

func seedSettled(t *testing.T, r *memrepo.Repo) {
	t.Helper()
	svc := ticketService(r)
	ctx := context.Background()
	rows := []struct {
		status string
		payout string
		mt     uint64
	}{
		{models.TicketStatusWon, "200", 1},
		{models.TicketStatusHalfWin, "150", 1},
		{models.TicketStatusLost, "", 1},
		{models.TicketStatusLost, "", 1},
		{models.TicketStatusWon, "300", 2},
	}
	for _, row := range rows {
		in := validInput()
		in.Status = row.status
		in.MarketTypeID = u64(row.mt)
		if row.payout != "" {
			in.Payout = decPtr(row.payout)
		}
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}
}

func TestStatsOverviewSeedsBookmakers(t *testing.T) {
	r := fixture()
	seedSettled(t, r)
	svc := &StatsService{Repo: r, Now: func() time.Time { return fixedNow.Add(time.Hour) }}

	out, err := svc.Overview(context.Background(), analytics.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 5, out.Overall.BetsCount)
	assert.True(t, dec("150").Equal(out.Overall.ProfitTotal))
	assert.Equal(t, 5, out.Weekly.CurrentWeek.BetsCount)
	assert.Equal(t, 0, out.Weekly.LastWeek.BetsCount)

	labels := map[string]int{}
	for _, g := range out.ByBookmaker {
		labels[g.Label] = g.BetsCount
	}
	assert.Equal(t, map[string]int{"Tipsport": 5, "Fortuna": 0}, labels)

	series, err := svc.Timeseries(context.Background(), analytics.Filter{})
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.True(t, dec("150").Equal(series[0].CumulativeProfit))
}

func TestMarketTypeStatsAndTop(t *testing.T) {
	r := fixture()
	svc := &MarketTypeService{Repo: r}
	ctx := context.Background()

	top, err := svc.Top(ctx, u64(2), 5)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "Handicap", top[0].Name)

	seedSettled(t, r)
	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, uint64(1), stats[0].ID)
	assert.Equal(t, 4, stats[0].BetsCount)
	assert.Equal(t, 37.5, stats[0].WinRate)
	assert.True(t, dec("-50").Equal(stats[0].Profit))
	assert.Equal(t, 1, stats[1].BetsCount)
	assert.Equal(t, 100.0, stats[1].WinRate)

	top, err = svc.Top(ctx, nil, 5)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, uint64(1), top[0].ID)
}

func TestMarketTypeLifecycle(t *testing.T) {
	r := fixture()
	svc := &MarketTypeService{Repo: r}
	ctx := context.Background()

	created, err := svc.Create(ctx, MarketTypeInput{Name: " Počet gólů "})
	require.NoError(t, err)
	assert.Equal(t, "Počet gólů", created.Name)
	assert.True(t, created.IsActive)
	assert.Len(t, created.Sports, 2)

	_, err = svc.Create(ctx, MarketTypeInput{Name: "Handicap"})
	assert.True(t, IsValidation(err))

	updated, err := svc.Update(ctx, created.ID, MarketTypeUpdate{SportIDs: []uint64{2}})
	require.NoError(t, err)
	require.Len(t, updated.Sports, 1)
	assert.Equal(t, uint64(2), updated.Sports[0].ID)

	described, err := svc.Update(ctx, created.ID, MarketTypeUpdate{Description: Some("Součet gólů v zápase")})
	require.NoError(t, err)
	require.NotNil(t, described.Description)
	cleared, err := svc.Update(ctx, created.ID, MarketTypeUpdate{Description: Null[string]()})
	require.NoError(t, err)
	assert.Nil(t, cleared.Description)

	_, err = svc.Update(ctx, created.ID, MarketTypeUpdate{Name: strPtr("Handicap")})
	assert.True(t, IsValidation(err))

	deleted, err := svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	seedSettled(t, r)
	deleted, err = svc.Delete(ctx, 1)
	require.NoError(t, err)
	assert.False(t, deleted)
	mt, err := r.GetMarketType(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, mt)
	assert.False(t, mt.IsActive)

	_, err = svc.Delete(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAppSettingsBankroll(t *testing.T) {
	svc := &SystemSettingsService{Repo: fixture()}
	ctx := context.Background()

	got, err := svc.App(ctx)
	require.NoError(t, err)
	assert.Nil(t, got.Bankroll)

	got, err = svc.UpdateApp(ctx, AppSettings{Bankroll: decPtr("5000.50")})
	require.NoError(t, err)
	require.NotNil(t, got.Bankroll)
	assert.True(t, dec("5000.50").Equal(*got.Bankroll))

	_, err = svc.UpdateApp(ctx, AppSettings{Bankroll: decPtr("-1")})
	assert.True(t, IsValidation(err))

	got, err = svc.UpdateApp(ctx, AppSettings{})
	require.NoError(t, err)
	assert.Nil(t, got.Bankroll)
}

func TestFeatureSwitches(t *testing.T) {
	svc := &SystemSettingsService{Repo: fixture()}
	ctx := context.Background()

	require.NoError(t, svc.EnsureDefaultSwitches(ctx))
	assert.True(t, svc.IsEnabled(ctx, FeatureAIPrune, false))
	require.NoError(t, svc.SetEnabled(ctx, FeatureAIPrune, false))
	require.NoError(t, svc.EnsureDefaultSwitches(ctx))
	assert.False(t, svc.IsEnabled(ctx, FeatureAIPrune, true))
	assert.True(t, svc.IsEnabled(ctx, "feature.unknown", true))

	var nilSvc *SystemSettingsService
	assert.True(t, nilSvc.IsEnabled(ctx, FeatureAIPrune, true))
}

type fakeAnalyzer struct {
	text     string
	err      error
	question string
	calls    int
}

func (f *fakeAnalyzer) Analyze(_ context.Context, _ any, question string) (string, error) {
	f.calls++
	f.question = question
	return f.text, f.err
}

func (f *fakeAnalyzer) TextModel() string { return "mistral-small" }

func TestAIAnalyzeStoresExchange(t *testing.T) {
	r := fixture()
	seedSettled(t, r)
	model := &fakeAnalyzer{text: "Drž se fotbalu."}
	svc := &AIService{
		Repo:         r,
		Stats:        &StatsService{Repo: r, Now: func() time.Time { return fixedNow }},
		LLM:          model,
		HistoryLimit: 20,
		Now:          func() time.Time { return fixedNow },
	}
	ctx := context.Background()

	sport := uint64(1)
	res, err := svc.Analyze(ctx, AnalyzeRequest{Filters: analytics.Filter{SportID: &sport}, Question: strPtr("  Co zlepšit? ")})
	require.NoError(t, err)
	assert.Equal(t, "Drž se fotbalu.", res.AnalysisText)
	assert.Equal(t, "Co zlepšit?", model.question)
	assert.Equal(t, 5, res.AggregatesSummary.Overall.BetsCount)

	require.Len(t, r.Analyses, 1)
	stored := r.Analyses[0]
	assert.Equal(t, "mistral-small", stored.ModelName)
	assert.JSONEq(t, `{"sport_id":1}`, string(stored.Context))
	assert.NotEmpty(t, stored.Aggregates)

	history, err := svc.History(ctx, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Nil(t, history[0].Aggregates)

	model.err = errors.New("ollama down")
	_, err = svc.Analyze(ctx, AnalyzeRequest{})
	require.Error(t, err)
	assert.Len(t, r.Analyses, 1)
}

func TestAIPrune(t *testing.T) {
	r := fixture()
	r.Analyses = []models.AiAnalysis{
		{ID: 1, CreatedAt: fixedNow.Add(-100 * 24 * time.Hour)},
		{ID: 2, CreatedAt: fixedNow.Add(-time.Hour)},
	}
	settings := &SystemSettingsService{Repo: r}
	svc := &AIService{Repo: r, Settings: settings, Retention: 90 * 24 * time.Hour, Now: func() time.Time { return fixedNow }}
	ctx := context.Background()

	n, err := svc.Prune(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	require.Len(t, r.Analyses, 1)
	assert.Equal(t, uint64(2), r.Analyses[0].ID)

	r.Analyses = append(r.Analyses, models.AiAnalysis{ID: 3, CreatedAt: fixedNow.Add(-200 * 24 * time.Hour)})
	require.NoError(t, settings.SetEnabled(ctx, FeatureAIPrune, false))
	n, err = svc.Prune(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, r.Analyses, 2)
}

type fakeReader struct {
	calls  int
	last   string
	result llm.OCRResult
}

func (f *fakeReader) ReadTicketImage(_ context.Context, b64 string, _ string) llm.OCRResult {
	f.calls++
	f.last = b64
	return f.result
}

func TestOCRCachesByImage(t *testing.T) {
	reader := &fakeReader{result: llm.OCRResult{
		Tickets:    []llm.TicketCandidate{{HomeTeam: "Sparta", AwayTeam: "Slavia", Odds: decPtr("1.85")}},
		Confidence: 0.2,
	}}
	store := cache.NewMemoryStore()
	svc := &OCRService{Reader: reader, Cache: store, TTL: time.Hour}
	ctx := context.Background()

	img := base64.StdEncoding.EncodeToString([]byte("fake png bytes"))
	first, err := svc.ParseBase64(ctx, "data:image/png;base64,"+img, "Tipsport")
	require.NoError(t, err)
	assert.Equal(t, img, reader.last)
	require.Len(t, first.Tickets, 1)

	second, err := svc.ParseBytes(ctx, []byte("fake png bytes"), "Tipsport")
	require.NoError(t, err)
	assert.Equal(t, 1, reader.calls)
	assert.Equal(t, "Sparta", second.Tickets[0].HomeTeam)
	assert.True(t, dec("1.85").Equal(*second.Tickets[0].Odds))

	_, err = svc.ParseBase64(ctx, "!!not base64!!", "")
	assert.True(t, IsValidation(err))
	_, err = svc.ParseBytes(ctx, nil, "")
	assert.True(t, IsValidation(err))
}

func TestOCRSkipsCachingEmptyResults(t *testing.T) {
	reader := &fakeReader{result: llm.OCRResult{RawText: "model call failed: timeout"}}
	store := cache.NewMemoryStore()
	svc := &OCRService{Reader: reader, Cache: store, TTL: time.Hour}
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := svc.ParseBytes(ctx, []byte("img"), "")
		require.NoError(t, err)
		assert.NotNil(t, res.Tickets)
		assert.Zero(t, res.Confidence)
	}
	assert.Equal(t, 2, reader.calls)
	assert.Equal(t, 0, store.Len())
}
