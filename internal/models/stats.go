package models

// SetupAverage names a setup together with its mean R-multiple.
type SetupAverage struct {
	Name string  `json:"name"`
	AvgR float64 `json:"avgR"`
}

// StatsSummary is the journal-wide performance summary.
type StatsSummary struct {
	TotalTrades int          `json:"totalTrades"`
	WinRate     float64      `json:"winRate"`
	AvgR        float64      `json:"avgR"`
	BestSetup   SetupAverage `json:"bestSetup"`
	WorstSetup  SetupAverage `json:"worstSetup"`
}

// SetupBreakdown holds per-setup figures for reporting.
type SetupBreakdown struct {
	Name    string  `json:"name"`
	Trades  int     `json:"trades"`
	Closed  int     `json:"closed"`
	Wins    int     `json:"wins"`
	WinRate float64 `json:"winRate"`
	AvgR    float64 `json:"avgR"`
	Flagged int     `json:"flagged"`
}
