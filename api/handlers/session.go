package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/chaman08/buildhub-sub001/api"
	"github.com/chaman08/buildhub-sub001/config"
	"github.com/chaman08/buildhub-sub001/databases"
	"github.com/chaman08/buildhub-sub001/models"
	templates "github.com/chaman08/buildhub-sub001/templates/html"
)

// Session handles signup, email verification and the session endpoint
type Session struct {
	ADB  databases.AccountDatabase
	UDB  databases.UserDatabase
	PVDB databases.PendingVerificationDatabase
}

type signupRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	Name              string `json:"name"`
	Role              string `json:"role"`
	Phone             string `json:"phone"`
	City              string `json:"city"`
	CompanyName       string `json:"companyName"`
	ServiceCategory   string `json:"serviceCategory"`
	YearsOfExperience int    `json:"yearsOfExperience"`
}

// SignupHandler creates an account plus its profile document and mails a
// verification code. The profile is seeded with both verification flags false.
func (s Session) SignupHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		config.ErrorStatus("invalid email", http.StatusBadRequest, w, fmt.Errorf("malformed email"))
		return
	}
	if len(req.Password) < 6 {
		config.ErrorStatus("invalid password", http.StatusBadRequest, w, fmt.Errorf("password must be at least 6 characters"))
		return
	}
	if req.Role != models.RoleCustomer && req.Role != models.RoleContractor {
		config.ErrorStatus("invalid role", http.StatusBadRequest, w, fmt.Errorf("role must be customer or contractor"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	// duplicate email check
	if _, err := s.ADB.FindOne(ctx, bson.M{"email": req.Email}); err == nil {
		config.ErrorStatus("email already exists", http.StatusConflict, w, fmt.Errorf("duplicate email"))
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		config.ErrorStatus("failed to hash password", http.StatusInternalServerError, w, err)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	accountID := primitive.NewObjectID().Hex()

	account := models.Account{
		ID:            accountID,
		Email:         req.Email,
		Password:      string(hashedPassword),
		EmailVerified: false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := s.ADB.InsertOne(ctx, account); err != nil {
		config.ErrorStatus("failed to create account", http.StatusInternalServerError, w, err)
		return
	}

	// the profile shares the account ID and starts unverified
	profile := models.UserProfile{
		ID:                accountID,
		Email:             req.Email,
		Name:              req.Name,
		Role:              req.Role,
		Phone:             req.Phone,
		City:              req.City,
		IsEmailVerified:   false,
		IsPhoneVerified:   false,
		CompanyName:       req.CompanyName,
		ServiceCategory:   req.ServiceCategory,
		YearsOfExperience: req.YearsOfExperience,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if _, err := s.UDB.InsertOne(ctx, profile); err != nil {
		config.ErrorStatus("failed to create profile", http.StatusInternalServerError, w, err)
		return
	}

	if err := s.issueVerificationCode(ctx, accountID, req.Email); err != nil {
		// signup still succeeds; the code can be re-sent later
		zap.S().Errorw("failed to issue verification code", "email", req.Email, "error", err)
	}

	b, err := json.Marshal(profile)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// VerifyEmailHandler consumes a pending verification code and flips the
// account's emailVerified flag
func (s Session) VerifyEmailHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	pending, err := s.PVDB.FindOne(ctx, bson.M{"email": req.Email, "code": req.Code})
	if err != nil {
		config.ErrorStatus("invalid verification code", http.StatusBadRequest, w, err)
		return
	}
	if time.Since(pending.CreatedAt.Time()) > 24*time.Hour {
		config.ErrorStatus("verification code expired", http.StatusBadRequest, w, fmt.Errorf("code older than 24 hours"))
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	if _, err := s.ADB.UpdateOne(ctx,
		bson.M{"_id": pending.AccountID},
		bson.M{"$set": bson.M{"emailVerified": true, "updatedAt": now}},
	); err != nil {
		config.ErrorStatus("failed to update account", http.StatusInternalServerError, w, err)
		return
	}
	if _, err := s.PVDB.DeleteMany(ctx, bson.M{"email": req.Email}); err != nil {
		zap.S().Warnw("failed to clear pending verifications", "email", req.Email, "error", err)
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"success": true}`))
}

// ResendVerificationHandler re-issues a verification code for the caller.
// No-op when the account is already verified.
func (s Session) ResendVerificationHandler(w http.ResponseWriter, r *http.Request) {
	principal := api.Principal(r)
	if principal == nil {
		config.ErrorStatus("no active session", http.StatusUnauthorized, w, fmt.Errorf("missing principal"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	account, err := s.ADB.FindOne(ctx, bson.M{"_id": principal.ID()})
	if err != nil {
		config.ErrorStatus("failed to get account", http.StatusNotFound, w, err)
		return
	}
	if account.EmailVerified {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"success": true, "message": "email already verified"}`))
		return
	}

	if _, err := s.PVDB.DeleteMany(ctx, bson.M{"email": account.Email}); err != nil {
		zap.S().Warnw("failed to clear pending verifications", "email", account.Email, "error", err)
	}
	if err := s.issueVerificationCode(ctx, account.ID, account.Email); err != nil {
		config.ErrorStatus("failed to issue verification code", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"success": true}`))
}

// SessionHandler resolves the caller's session state and refreshes the
// profile. If the profile's isEmailVerified flag has drifted from the
// account's live flag it is overwritten and persisted; when the two already
// agree no write is performed.
func (s Session) SessionHandler(w http.ResponseWriter, r *http.Request) {
	principal := api.Principal(r)
	if principal == nil {
		config.ErrorStatus("no active session", http.StatusUnauthorized, w, fmt.Errorf("missing principal"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	account, err := s.ADB.FindOne(ctx, bson.M{"_id": principal.ID()})
	if err != nil {
		config.ErrorStatus("failed to get account", http.StatusNotFound, w, err)
		return
	}

	resp := models.SessionResponse{Account: *account}

	profile, err := s.UDB.FindOne(ctx, bson.M{"_id": account.ID})
	if err != nil {
		resp.State = models.SessionWithoutProfile
	} else {
		if profile.IsEmailVerified != account.EmailVerified {
			profile.IsEmailVerified = account.EmailVerified
			profile.UpdatedAt = primitive.NewDateTimeFromTime(time.Now())
			if _, err := s.UDB.UpdateOne(ctx,
				bson.M{"_id": account.ID},
				bson.M{"$set": bson.M{"isEmailVerified": account.EmailVerified, "updatedAt": profile.UpdatedAt}},
			); err != nil {
				config.ErrorStatus("failed to heal profile verification flag", http.StatusInternalServerError, w, err)
				return
			}
		}
		resp.State = models.SessionWithProfile
		resp.Profile = profile
	}

	b, err := json.Marshal(resp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// issueVerificationCode stores a 6-digit code and mails it in the background
func (s Session) issueVerificationCode(ctx context.Context, accountID, email string) error {
	code := fmt.Sprintf("%06d", 100000+rand.Intn(900000))

	pending := models.PendingVerification{
		ID:        primitive.NewObjectID(),
		AccountID: accountID,
		Email:     email,
		Code:      code,
		CreatedAt: primitive.NewDateTimeFromTime(time.Now()),
	}
	if _, err := s.PVDB.InsertOne(ctx, pending); err != nil {
		return err
	}

	// Send email with the code (non-blocking, in background)
	go func(email, code string) {
		defer func() {
			if rec := recover(); rec != nil {
				zap.S().Errorw("panic in sendVerificationEmail", "email", email, "panic", rec)
			}
		}()

		from := mail.NewEmail("BuildHub", "no-reply@buildhub.work")
		subject := "BuildHub Email Verification Code"
		to := mail.NewEmail("", email)
		plainTextContent := "Verification code: " + code + ". This code will expire in 24 hours."
		htmlContent := templates.RenderCode(code)
		message := mail.NewSingleEmail(from, subject, to, plainTextContent, htmlContent)
		client := sendgrid.NewSendClient(os.Getenv("SENDGRID_API_KEY"))
		if _, err := client.Send(message); err != nil {
			zap.S().Errorw("failed to send verification email", "email", email, "error", err)
		}
	}(email, code)

	return nil
}
