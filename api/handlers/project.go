package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/chaman08/buildhub-sub001/api"
	"github.com/chaman08/buildhub-sub001/config"
	"github.com/chaman08/buildhub-sub001/databases"
	"github.com/chaman08/buildhub-sub001/models"
)

// Project exported for testing purposes
type Project struct {
	DB  databases.ProjectDatabase
	UDB databases.UserDatabase
}

type createProjectRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	City        string  `json:"city"`
	Budget      float64 `json:"budget"`
}

// CreateProjectHandler lets a customer with a complete profile post a project
// and bumps their projectsPosted counter
func (p Project) CreateProjectHandler(w http.ResponseWriter, r *http.Request) {
	principal := api.Principal(r)
	if principal == nil {
		config.ErrorStatus("no active session", http.StatusUnauthorized, w, fmt.Errorf("missing principal"))
		return
	}

	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.Title == "" || req.Description == "" {
		config.ErrorStatus("title and description are required", http.StatusBadRequest, w, fmt.Errorf("missing fields"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	customer, err := p.UDB.FindOne(ctx, bson.M{"_id": principal.ID()})
	if err != nil {
		config.ErrorStatus("failed to get user by ID", http.StatusNotFound, w, err)
		return
	}
	if customer.Role != models.RoleCustomer {
		config.ErrorStatus("only customers can post projects", http.StatusForbidden, w, fmt.Errorf("role is %s", customer.Role))
		return
	}
	if !customer.IsComplete() {
		config.ErrorStatus("profile is incomplete", http.StatusForbidden, w, fmt.Errorf("missing fields: %v", customer.MissingFields()))
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	project := models.Project{
		ID:           primitive.NewObjectID(),
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		City:         req.City,
		Budget:       req.Budget,
		Status:       models.ProjectStatusOpen,
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
		Bids:         []models.Bid{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := p.DB.InsertOne(ctx, project); err != nil {
		config.ErrorStatus("failed to create project", http.StatusInternalServerError, w, err)
		return
	}

	if _, err := p.UDB.UpdateOne(ctx,
		bson.M{"_id": customer.ID},
		bson.M{"$inc": bson.M{"projectsPosted": 1}, "$set": bson.M{"updatedAt": now}},
	); err != nil {
		config.ErrorStatus("failed to update customer profile", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(project)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// ProjectsHandler lists open projects, optionally filtered by category and city
func (p Project) ProjectsHandler(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{"status": models.ProjectStatusOpen}
	if category := r.URL.Query().Get("category"); category != "" {
		filter["category"] = category
	}
	if city := r.URL.Query().Get("city"); city != "" {
		filter["city"] = city
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	projects, err := p.DB.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		config.ErrorStatus("failed to get projects", http.StatusInternalServerError, w, err)
		return
	}
	if projects == nil {
		projects = []models.Project{}
	}

	b, err := json.Marshal(projects)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ProjectByIDHandler returns a project given a projectID
func (p Project) ProjectByIDHandler(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["project_id"]

	pID, err := primitive.ObjectIDFromHex(projectID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	project, err := p.DB.FindOne(ctx, bson.M{"_id": pID})
	if err != nil {
		config.ErrorStatus("failed to get project by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(project)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

type placeBidRequest struct {
	Amount float64 `json:"amount"`
	Note   string  `json:"note"`
}

// PlaceBidHandler appends a contractor's bid to an open project
func (p Project) PlaceBidHandler(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["project_id"]

	principal := api.Principal(r)
	if principal == nil {
		config.ErrorStatus("no active session", http.StatusUnauthorized, w, fmt.Errorf("missing principal"))
		return
	}

	pID, err := primitive.ObjectIDFromHex(projectID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req placeBidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.Amount <= 0 {
		config.ErrorStatus("bid amount must be positive", http.StatusBadRequest, w, fmt.Errorf("amount %v", req.Amount))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	contractor, err := p.UDB.FindOne(ctx, bson.M{"_id": principal.ID()})
	if err != nil {
		config.ErrorStatus("failed to get user by ID", http.StatusNotFound, w, err)
		return
	}
	if contractor.Role != models.RoleContractor {
		config.ErrorStatus("only contractors can bid", http.StatusForbidden, w, fmt.Errorf("role is %s", contractor.Role))
		return
	}
	if !contractor.IsComplete() {
		config.ErrorStatus("profile is incomplete", http.StatusForbidden, w, fmt.Errorf("missing fields: %v", contractor.MissingFields()))
		return
	}

	project, err := p.DB.FindOne(ctx, bson.M{"_id": pID})
	if err != nil {
		config.ErrorStatus("failed to get project by ID", http.StatusNotFound, w, err)
		return
	}
	if project.Status != models.ProjectStatusOpen {
		config.ErrorStatus("project is not open for bids", http.StatusConflict, w, fmt.Errorf("status is %s", project.Status))
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	bid := models.Bid{
		ContractorID:   contractor.ID,
		ContractorName: contractor.Name,
		Amount:         req.Amount,
		Note:           req.Note,
		CreatedAt:      now,
	}

	if _, err := p.DB.UpdateOne(ctx,
		bson.M{"_id": pID},
		bson.M{"$push": bson.M{"bids": bid}, "$set": bson.M{"updatedAt": now}},
	); err != nil {
		config.ErrorStatus("failed to place bid", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(bid)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}
