package validators

import "go.mongodb.org/mongo-driver/bson"

var BlockedDateValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"room_id", "room_number", "date"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id":         bson.M{"bsonType": "string"},
			"room_id":     bson.M{"bsonType": "string", "minLength": 1},
			"room_number": bson.M{"bsonType": "string", "minLength": 1, "maxLength": 20},
			"date":        bson.M{"bsonType": "date"},
			"reason":      bson.M{"bsonType": "string", "maxLength": 200},
			"created_at":  bson.M{"bsonType": "date"},
		},
	},
}
