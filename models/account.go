package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Account holds the structure for the accounts collection in mongo. It is the
// credential record only; business data lives in the users collection under
// the same ID.
type Account struct {
	ID            string             `json:"_id" bson:"_id"`
	Email         string             `json:"email" bson:"email"`
	Password      string             `json:"-" bson:"password"`
	EmailVerified bool               `json:"emailVerified" bson:"emailVerified"`
	CreatedAt     primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt     primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}
