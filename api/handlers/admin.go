package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"

	"github.com/chaman08/buildhub-sub001/api"
	"github.com/chaman08/buildhub-sub001/config"
	"github.com/chaman08/buildhub-sub001/databases"
	"github.com/chaman08/buildhub-sub001/models"
)

type adminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type adminLoginResponse struct {
	Token string `json:"token"`
	Admin struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"admin"`
}

// Admin represents the admin handler
type Admin struct {
	ADB databases.AccountDatabase
	UDB databases.UserDatabase
	PDB databases.ProjectDatabase
	CDB databases.ChatDatabase
}

// AdminLoginHandler handles admin login via email/password and returns a JWT.
// The isAdmin predicate comes from the profile document; a valid credential
// without it fails the same way a bad password does.
func (h Admin) AdminLoginHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req adminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid request"})
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || req.Password == "" {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "email and password required"})
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	account, err := h.ADB.FindOne(ctx, bson.M{"email": email})
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(models.ErrorResponse{
			Success: false,
			Error:   "Invalid credentials",
			Code:    "INVALID_CREDENTIALS",
		})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(req.Password)); err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(models.ErrorResponse{
			Success: false,
			Error:   "Invalid credentials",
			Code:    "INVALID_CREDENTIALS",
		})
		return
	}

	profile, err := h.UDB.FindOne(ctx, bson.M{"_id": account.ID})
	if err != nil || !profile.IsAdmin {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(models.ErrorResponse{
			Success: false,
			Error:   "Invalid credentials",
			Code:    "INVALID_CREDENTIALS",
		})
		return
	}

	jwtSecret := []byte(os.Getenv("JWT_SECRET"))
	if len(jwtSecret) == 0 {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "server misconfigured"})
		return
	}

	claims := jwt.MapClaims{
		"sub":   account.ID,
		"email": account.Email,
		"scope": "admin",
		"typ":   "access",
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(jwtSecret)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "token generation failed"})
		return
	}

	var resp adminLoginResponse
	resp.Token = signed
	resp.Admin.ID = account.ID
	resp.Admin.Email = account.Email

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

// AdminUsersHandler lists profiles, paginated via limit/page query params
func (h Admin) AdminUsersHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 || limit > 200 {
		limit = 50
	}
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page <= 0 {
		page = 1
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	profiles, err := h.UDB.FindPaginated(ctx, bson.M{}, limit, page)
	if err != nil {
		config.ErrorStatus("failed to get users", http.StatusInternalServerError, w, err)
		return
	}
	if profiles == nil {
		profiles = []models.UserProfile{}
	}

	b, err := json.Marshal(profiles)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// AdminStatsHandler returns marketplace counts
func (h Admin) AdminStatsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	customers, err := h.UDB.CountDocuments(ctx, bson.M{"role": models.RoleCustomer})
	if err != nil {
		config.ErrorStatus("failed to count customers", http.StatusInternalServerError, w, err)
		return
	}
	contractors, err := h.UDB.CountDocuments(ctx, bson.M{"role": models.RoleContractor})
	if err != nil {
		config.ErrorStatus("failed to count contractors", http.StatusInternalServerError, w, err)
		return
	}
	projects, err := h.PDB.CountDocuments(ctx, bson.M{})
	if err != nil {
		config.ErrorStatus("failed to count projects", http.StatusInternalServerError, w, err)
		return
	}
	messages, err := h.CDB.CountDocuments(ctx, bson.M{})
	if err != nil {
		config.ErrorStatus("failed to count messages", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(map[string]int64{
		"customers":   customers,
		"contractors": contractors,
		"projects":    projects,
		"messages":    messages,
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
