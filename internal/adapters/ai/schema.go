package ai

import "encoding/json"

// PredictionSchemaName names the strict response schema sent to the model
const PredictionSchemaName = "asset_prediction_result"

// PredictionSchema constrains the model to the prediction object shape
var PredictionSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"horizon_minutes": {"type": "integer"},
		"overall_sentiment": {"type": "string", "enum": ["bullish", "bearish", "neutral", "mixed"]},
		"bullish": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"asset": {"type": "string"},
					"prediction": {"type": "string"}
				},
				"required": ["asset", "prediction"]
			}
		},
		"bearish": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"asset": {"type": "string"},
					"prediction": {"type": "string"}
				},
				"required": ["asset", "prediction"]
			}
		}
	},
	"required": ["horizon_minutes", "overall_sentiment"],
	"additionalProperties": false
}`)
