package validators

import "go.mongodb.org/mongo-driver/bson"

var ReservationValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"room_id",
			"check_in",
			"check_out",
			"total_nights",
			"status",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},

			"room_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"room_number": bson.M{
				"bsonType":  "string",
				"maxLength": 20,
			},

			"allocations": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"room_id", "room_number"},
					"properties": bson.M{
						"room_id":         bson.M{"bsonType": "string"},
						"room_number":     bson.M{"bsonType": "string", "maxLength": 20},
						"price_per_night": bson.M{"bsonType": []string{"double", "int", "long"}, "minimum": 0},
					},
				},
			},

			"check_in": bson.M{
				"bsonType": "date",
			},

			"check_out": bson.M{
				"bsonType": "date",
			},

			"total_nights": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending",
					"confirmed",
					"checked_in",
					"checked_out",
					"cancelled",
					"no_show",
				},
			},

			"check_out_time": bson.M{
				"bsonType": "string",
				"pattern":  `^([01]?[0-9]|2[0-3]):[0-5][0-9]$`,
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
