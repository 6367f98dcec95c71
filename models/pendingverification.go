package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// PendingVerification holds the structure for the pendingVerifications
// collection in mongo. Codes expire after 24 hours and are purged by the
// scheduler.
type PendingVerification struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id"`
	AccountID string             `json:"accountID" bson:"accountID"`
	Email     string             `json:"email" bson:"email"`
	Code      string             `json:"code" bson:"code"`
	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
}
