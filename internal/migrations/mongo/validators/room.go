package validators

import "go.mongodb.org/mongo-driver/bson"

var RoomValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"room_type", "room_id", "room_number"},
		"additionalProperties": true,

		"properties": bson.M{
			"room_type":   bson.M{"bsonType": "string", "minLength": 1},
			"room_id":     bson.M{"bsonType": "string", "minLength": 1},
			"room_number": bson.M{"bsonType": "string", "minLength": 1, "maxLength": 20},
		},
	},
}
