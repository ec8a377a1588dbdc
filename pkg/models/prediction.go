package models

// HorizonMinutes is the fixed forecast horizon (24 hours)
const HorizonMinutes = 24 * 60

// Stance is the directional bucket of a per-asset prediction
type Stance string

const (
	StanceBullish Stance = "bullish"
	StanceBearish Stance = "bearish"
)

// Stances lists stance keys in the order they are read from a model response
var Stances = []Stance{StanceBullish, StanceBearish}

// Prediction is the raw record of one prediction run
type Prediction struct {
	ID             int64  `json:"id" db:"id"`
	TS             int64  `json:"ts" db:"ts"`
	HorizonMinutes int    `json:"horizon_minutes" db:"horizon_minutes"`
	Model          string `json:"model" db:"model"`
	RawJSON        string `json:"raw_json" db:"raw_json"`
	Text           string `json:"text" db:"text"`
}

// PredictionItem is a single per-asset claim derived from a Prediction
type PredictionItem struct {
	ID             int64  `json:"id" db:"id"`
	TS             int64  `json:"ts" db:"ts"`
	HorizonMinutes int    `json:"horizon_minutes" db:"horizon_minutes"`
	Model          string `json:"model" db:"model"`
	Asset          string `json:"asset" db:"asset"`
	Stance         Stance `json:"stance" db:"stance"`
	Text           string `json:"text" db:"text"`
}

// LLMQuery is the audit record of one outbound model call
type LLMQuery struct {
	ID         int64  `json:"id" db:"id"`
	TS         int64  `json:"ts" db:"ts"`
	Model      string `json:"model" db:"model"`
	Prompt     string `json:"prompt" db:"prompt"`
	Response   string `json:"response" db:"response"`
	TokensUsed *int64 `json:"tokens_used,omitempty" db:"tokens_used"`
	DurationMS int64  `json:"duration_ms" db:"duration_ms"`
}
