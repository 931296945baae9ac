package validators

import "go.mongodb.org/mongo-driver/bson"

var RefundValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"eventId", "participantId", "paymentId", "tokenId", "accepted", "createdAt"},
		"additionalProperties": true,

		"properties": bson.M{
			"eventId": bson.M{
				"bsonType": "objectId",
			},
			"participantId": bson.M{
				"bsonType": "objectId",
			},
			"paymentId": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},
			"tokenId": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},
			"amount": bson.M{
				"bsonType": []string{"double", "int", "long"},
				"minimum":  0,
			},
			"accepted": bson.M{
				"bsonType": "bool",
			},
			"createdAt": bson.M{
				"bsonType": "date",
			},
		},
	},
}
