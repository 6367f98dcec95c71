package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Project statuses
const (
	ProjectStatusOpen   = "open"
	ProjectStatusClosed = "closed"
)

// Project holds the structure for the projects collection in mongo
type Project struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id"`
	Title        string             `json:"title" bson:"title"`
	Description  string             `json:"description" bson:"description"`
	Category     string             `json:"category" bson:"category"`
	City         string             `json:"city" bson:"city"`
	Budget       float64            `json:"budget" bson:"budget"`
	Status       string             `json:"status" bson:"status"`
	CustomerID   string             `json:"customerID" bson:"customerID"`
	CustomerName string             `json:"customerName" bson:"customerName"`
	Bids         []Bid              `json:"bids" bson:"bids"`
	CreatedAt    primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt    primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// Bid is a contractor's offer on a project, embedded in the project document
type Bid struct {
	ContractorID   string             `json:"contractorID" bson:"contractorID"`
	ContractorName string             `json:"contractorName" bson:"contractorName"`
	Amount         float64            `json:"amount" bson:"amount"`
	Note           string             `json:"note" bson:"note"`
	CreatedAt      primitive.DateTime `json:"createdAt" bson:"createdAt"`
}
