package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/chaman08/buildhub-sub001/api"
	"github.com/chaman08/buildhub-sub001/config"
	"github.com/chaman08/buildhub-sub001/databases"
	"github.com/chaman08/buildhub-sub001/models"
	"github.com/chaman08/buildhub-sub001/realtime"
)

// Chat exported for testing purposes
type Chat struct {
	DB  databases.ChatDatabase
	UDB databases.UserDatabase
	Hub *realtime.Hub
}

// ConversationsHandler returns the caller's conversation list: all chats
// where they are a participant, grouped by (project, counterpart), sorted by
// last-message time descending
func (c Chat) ConversationsHandler(w http.ResponseWriter, r *http.Request) {
	principal := api.Principal(r)
	if principal == nil {
		config.ErrorStatus("no active session", http.StatusUnauthorized, w, fmt.Errorf("missing principal"))
		return
	}
	viewerID := principal.ID()

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	messages, err := c.DB.Find(ctx, bson.M{"participants": viewerID})
	if err != nil {
		config.ErrorStatus("failed to get messages", http.StatusInternalServerError, w, err)
		return
	}

	conversations := GroupConversations(viewerID, messages)

	b, err := json.Marshal(conversations)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// GroupConversations folds raw messages into the derived conversation list
// for viewerID. Last message per group is the one with the maximum timestamp;
// unread counts only messages addressed to the viewer with read=false.
func GroupConversations(viewerID string, messages []models.Message) []models.Conversation {
	byKey := map[string]*models.Conversation{}

	for _, m := range messages {
		counterpartID := m.SenderID
		counterpartName := m.SenderName
		counterpartRole := m.SenderRole
		if m.SenderID == viewerID {
			counterpartID = m.RecipientID
			counterpartName = m.RecipientName
			counterpartRole = m.RecipientRole
		}

		key := m.ProjectID + "|" + counterpartID
		conv, ok := byKey[key]
		if !ok {
			conv = &models.Conversation{
				ProjectID:       m.ProjectID,
				CounterpartID:   counterpartID,
				CounterpartName: counterpartName,
				CounterpartRole: counterpartRole,
			}
			byKey[key] = conv
		}

		if m.Timestamp >= conv.LastMessageTime {
			conv.LastMessage = m.Message
			conv.LastMessageTime = m.Timestamp
			conv.CounterpartName = counterpartName
			conv.CounterpartRole = counterpartRole
		}
		if m.RecipientID == viewerID && !m.Read {
			conv.UnreadCount++
		}
	}

	conversations := make([]models.Conversation, 0, len(byKey))
	for _, conv := range byKey {
		conversations = append(conversations, *conv)
	}
	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].LastMessageTime > conversations[j].LastMessageTime
	})
	return conversations
}

// ThreadMessagesHandler returns the messages of one (project, counterpart)
// thread in ascending server-timestamp order
func (c Chat) ThreadMessagesHandler(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["project_id"]
	counterpartID := r.URL.Query().Get("counterpart")

	principal := api.Principal(r)
	if principal == nil {
		config.ErrorStatus("no active session", http.StatusUnauthorized, w, fmt.Errorf("missing principal"))
		return
	}
	if counterpartID == "" {
		config.ErrorStatus("counterpart is required", http.StatusBadRequest, w, fmt.Errorf("missing counterpart query parameter"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	messages, err := c.DB.Find(ctx,
		bson.M{
			"projectID":    projectID,
			"participants": bson.M{"$all": []string{principal.ID(), counterpartID}},
		},
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}}),
	)
	if err != nil {
		config.ErrorStatus("failed to get messages", http.StatusInternalServerError, w, err)
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}

	b, err := json.Marshal(messages)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// SendMessageHandler persists a new message with a server-assigned timestamp
// and pushes it to both participants' live connections. An empty or
// whitespace-only body is a silent no-op.
func (c Chat) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["project_id"]

	principal := api.Principal(r)
	if principal == nil {
		config.ErrorStatus("no active session", http.StatusUnauthorized, w, fmt.Errorf("missing principal"))
		return
	}

	var req struct {
		RecipientID string `json:"recipientID"`
		Message     string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		// empty bodies are dropped without a write
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if req.RecipientID == "" {
		config.ErrorStatus("recipientID is required", http.StatusBadRequest, w, fmt.Errorf("missing recipientID"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	sender, err := c.UDB.FindOne(ctx, bson.M{"_id": principal.ID()})
	if err != nil {
		config.ErrorStatus("failed to get sender profile", http.StatusNotFound, w, err)
		return
	}
	recipient, err := c.UDB.FindOne(ctx, bson.M{"_id": req.RecipientID})
	if err != nil {
		config.ErrorStatus("failed to get recipient profile", http.StatusNotFound, w, err)
		return
	}

	message := models.Message{
		ID:            primitive.NewObjectID(),
		ProjectID:     projectID,
		SenderID:      sender.ID,
		SenderName:    sender.Name,
		SenderRole:    sender.Role,
		RecipientID:   recipient.ID,
		RecipientName: recipient.Name,
		RecipientRole: recipient.Role,
		Participants:  []string{sender.ID, recipient.ID},
		Message:       req.Message,
		Timestamp:     primitive.NewDateTimeFromTime(time.Now()),
		Read:          false,
	}

	if _, err := c.DB.InsertOne(ctx, message); err != nil {
		config.ErrorStatus("failed to insert message", http.StatusInternalServerError, w, err)
		return
	}

	if c.Hub != nil {
		c.Hub.Publish([]string{sender.ID, recipient.ID}, realtime.Event{
			Type: realtime.EventMessageCreated,
			Data: message,
		})
	}

	b, err := json.Marshal(message)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// MarkThreadReadHandler acknowledges a thread: every message in the
// (project, counterpart) thread addressed to the caller is marked read
func (c Chat) MarkThreadReadHandler(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["project_id"]

	principal := api.Principal(r)
	if principal == nil {
		config.ErrorStatus("no active session", http.StatusUnauthorized, w, fmt.Errorf("missing principal"))
		return
	}

	var req struct {
		CounterpartID string `json:"counterpartID"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.CounterpartID == "" {
		config.ErrorStatus("counterpartID is required", http.StatusBadRequest, w, fmt.Errorf("missing counterpartID"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := c.DB.UpdateMany(ctx,
		bson.M{
			"projectID":   projectID,
			"senderID":    req.CounterpartID,
			"recipientID": principal.ID(),
			"read":        false,
		},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		config.ErrorStatus("failed to mark messages read", http.StatusInternalServerError, w, err)
		return
	}

	if c.Hub != nil && res != nil && res.ModifiedCount > 0 {
		c.Hub.Publish([]string{req.CounterpartID}, realtime.Event{
			Type: realtime.EventMessagesRead,
			Data: map[string]interface{}{
				"projectID": projectID,
				"readerID":  principal.ID(),
			},
		})
	}

	zap.S().Debugw("thread acknowledged",
		"projectID", projectID,
		"readerID", principal.ID())

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(fmt.Sprintf(`{"updated": %d}`, modifiedCount(res))))
}

func modifiedCount(res *mongo.UpdateResult) int64 {
	if res == nil {
		return 0
	}
	return res.ModifiedCount
}
