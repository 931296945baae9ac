package validators

import "go.mongodb.org/mongo-driver/bson"

var paymentStatuses = []string{"pending", "success", "failed"}

var EventValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"description",
			"date",
			"slot",
			"price",
			"sportsName",
			"venueName",
			"location",
			"participantsLimit",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 200,
			},

			"date": bson.M{
				"bsonType": "date",
			},

			"slot": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"price": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"sportsName": bson.M{
				"bsonType": "string",
			},

			"participantsLimit": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},

			"currentParticipants": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},

			"slug": bson.M{
				"bsonType": "string",
			},

			"notified75": bson.M{
				"bsonType": "bool",
			},

			"notified100": bson.M{
				"bsonType": "bool",
			},

			"participants": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"name", "phone", "paymentStatus", "orderId", "quantity"},
					"properties": bson.M{
						"phone": bson.M{
							"bsonType": "string",
						},
						"paymentStatus": bson.M{
							"enum": paymentStatuses,
						},
						"orderId": bson.M{
							"bsonType":  "string",
							"minLength": 1,
						},
						"quantity": bson.M{
							"bsonType": []string{"int", "long"},
							"minimum":  1,
						},
					},
				},
			},
		},
	},
}
