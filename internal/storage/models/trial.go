package models

import "time"

// TrialRun is one batch of simulated drafts sharing a configuration.
type TrialRun struct {
	ID           string    `json:"id" db:"id"`
	Strategy     string    `json:"strategy" db:"strategy"`
	Seed         int64     `json:"seed" db:"seed"`
	Seats        int       `json:"seats" db:"seats"`
	Phases       int       `json:"phases" db:"phases"`
	CardsPerPack int       `json:"cardsPerPack" db:"cards_per_pack"`
	Trials       int       `json:"trials" db:"trials"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// TrialDeck is the deck built from one seat's pool in one trial.
type TrialDeck struct {
	ID           int64    `json:"id" db:"id"`
	RunID        string   `json:"runId" db:"run_id"`
	Trial        int      `json:"trial" db:"trial"`
	Seat         int      `json:"seat" db:"seat"`
	MainColors   string   `json:"mainColors" db:"main_colors"`
	SplashColors string   `json:"splashColors,omitempty" db:"splash_colors"`
	Edges        int      `json:"edges" db:"edges"`
	AvgPower     float64  `json:"avgPower" db:"avg_power"`
	Nonlands     int      `json:"nonlands" db:"nonlands"`
	Cards        []string `json:"cards" db:"cards"`
}

// TrialSummary aggregates the decks of a run.
type TrialSummary struct {
	RunID        string  `json:"runId"`
	Decks        int     `json:"decks"`
	MeanEdges    float64 `json:"meanEdges"`
	MaxEdges     int     `json:"maxEdges"`
	MeanAvgPower float64 `json:"meanAvgPower"`
}
