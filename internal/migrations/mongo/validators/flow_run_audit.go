// Package validators holds the $jsonSchema documents applied to audit
// collections.
package validators

import (
	"go.mongodb.org/mongo-driver/bson"

	"ordernorm/pkg/model"
)

func str() bson.M { return bson.M{"bsonType": "string"} }

func date() bson.M { return bson.M{"bsonType": "date"} }

func boundedStr(lo, hi int) bson.M {
	return bson.M{"bsonType": "string", "minLength": lo, "maxLength": hi}
}

func enum(values ...string) bson.M { return bson.M{"enum": values} }

var stepSchema = bson.M{
	"bsonType": "object",
	"required": []string{"name", "status"},
	"properties": bson.M{
		"name":        str(),
		"status":      enum(model.StepStatusFinished, model.StepStatusFailed),
		"error":       str(),
		"started_at":  date(),
		"duration_ms": bson.M{"bsonType": []string{"int", "long"}, "minimum": 0},
	},
}

// FlowRunAuditValidator admits one flow run document. Run ids are UUIDs.
var FlowRunAuditValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "flow", "status", "steps", "started_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":         boundedStr(36, 36),
			"flow":        boundedStr(1, 100),
			"source":      str(),
			"request_id":  str(),
			"status":      enum(model.RunStatusRunning, model.RunStatusCompleted, model.RunStatusError),
			"steps":       bson.M{"bsonType": "array", "items": stepSchema},
			"error":       str(),
			"error_code":  str(),
			"failed_step": str(),
			"started_at":  date(),
			"finished_at": date(),
		},
	},
}
