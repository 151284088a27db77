package llm

import (
	"fmt"
	"strings"
)

const analysisSystemPrompt = `Jsi analytik sportovního sázení.
Dostaneš statistická agregovaná data o sázkách jednoho sázkaře v JSONu.
Pracuj pouze s těmito daty, nic si nevymýšlej.
Identifikuj:
1) silné stránky (kde je ROI vysoká / stabilní),
2) slabiny a "leaky" (záporné ROI s velkým obratem),
3) konkrétní doporučení: co omezit, co rozvinout, na co si dát pozor,
4) případné upozornění na vysokou varianci.
Piš stručně, česky, v několika odstavcích a s odrážkami tam, kde se to hodí.`

func analysisUserPrompt(aggregatesJSON, question string) string {
	var b strings.Builder
	b.WriteString("Data:\n```json\n")
	b.WriteString(aggregatesJSON)
	b.WriteString("\n```\n")
	if q := strings.TrimSpace(question); q != "" {
		b.WriteString("\nDoplňující otázka od uživatele: ")
		b.WriteString(q)
		b.WriteString("\n")
	}
	return b.String()
}

const defaultBookmakerHint = "Tipsport"

func ocrPrompt(bookmaker string) string {
	bookmaker = strings.TrimSpace(bookmaker)
	if bookmaker == "" {
		bookmaker = defaultBookmakerHint
	}
	return fmt.Sprintf(`Podívej se na tento screenshot z české sázkové kanceláře %s.

ÚKOL: Najdi VŠECHNY sázkové tikety na obrázku a pro každý vypiš tyto informace ve formátu JSON.

Vrať POUZE platné JSON pole, žádný jiný text před ani za ním.
Formát:
[
  {
    "home_team": "název domácího týmu",
    "away_team": "název hostujícího týmu",
    "sport": "fotbal/hokej/basketbal/tenis",
    "league": "název ligy nebo prázdný string",
    "market_label": "typ sázky (např. Více než 2.5, Výsledek zápasu)",
    "selection": "co bylo vybráno",
    "odds": 2.22,
    "stake": 50,
    "payout": 111,
    "status": "won",
    "is_live": false
  }
]

PRAVIDLA:
- odds, stake, payout jsou ČÍSLA (ne text)
- status: "won" pokud zelená fajfka, "lost" pokud červený křížek, "open" pokud čeká
- Pokud vidíš "SÓLO" je to SÓLO tiket
- Vrať POUZE JSON pole, nic jiného`, bookmaker)
}
