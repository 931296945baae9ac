package validators

import "go.mongodb.org/mongo-driver/bson"

var VenueValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"name", "location", "sport", "imageUrl"},
		"additionalProperties": true,

		"properties": bson.M{
			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 200,
			},
			"location": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},
			"sport": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},
			"imageUrl": bson.M{
				"bsonType": "string",
				"pattern":  "^https?://",
			},
			"amenities": bson.M{
				"bsonType": "array",
				"items":    bson.M{"bsonType": "string"},
			},
		},
	},
}
