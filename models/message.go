package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Message holds the structure for the chats collection in mongo. Participants
// always contains exactly the sender and the recipient, so membership queries
// can use a single $all filter. Messages are immutable after insert except
// for the read flag.
type Message struct {
	ID            primitive.ObjectID `json:"_id" bson:"_id"`
	ProjectID     string             `json:"projectID" bson:"projectID"`
	SenderID      string             `json:"senderID" bson:"senderID"`
	SenderName    string             `json:"senderName" bson:"senderName"`
	SenderRole    string             `json:"senderRole" bson:"senderRole"`
	RecipientID   string             `json:"recipientID" bson:"recipientID"`
	RecipientName string             `json:"recipientName" bson:"recipientName"`
	RecipientRole string             `json:"recipientRole" bson:"recipientRole"`
	Participants  []string           `json:"participants" bson:"participants"`
	Message       string             `json:"message" bson:"message"`
	Timestamp     primitive.DateTime `json:"timestamp" bson:"timestamp"`
	Read          bool               `json:"read" bson:"read"`
}

// Conversation is a derived view over the chats collection, grouped by
// (projectID, counterpart). It is computed on read and never stored.
type Conversation struct {
	ProjectID       string             `json:"projectID"`
	CounterpartID   string             `json:"counterpartID"`
	CounterpartName string             `json:"counterpartName"`
	CounterpartRole string             `json:"counterpartRole"`
	LastMessage     string             `json:"lastMessage"`
	LastMessageTime primitive.DateTime `json:"lastMessageTime"`
	UnreadCount     int                `json:"unreadCount"`
}
