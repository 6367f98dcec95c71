package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/chaman08/buildhub-sub001/api"
	"github.com/chaman08/buildhub-sub001/api/scheduler"
	"github.com/chaman08/buildhub-sub001/config"
	"github.com/chaman08/buildhub-sub001/databases"
	"github.com/chaman08/buildhub-sub001/models"
	"github.com/chaman08/buildhub-sub001/realtime"
)

// App stores the router, db connection and realtime hub, so it can be reused
type App struct {
	Router    *mux.Router
	Config    config.Config
	dbHelper  databases.DatabaseHelper
	hub       *realtime.Hub
	uploader  ImageUploader
	scheduler *scheduler.Scheduler
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// setup go-guardian for middleware
	m := api.MiddlewareDB{DB: databases.NewAccountDatabase(a.dbHelper)}
	m.SetupGoGuardian()

	r := mux.NewRouter()

	s := Session{
		ADB:  databases.NewAccountDatabase(a.dbHelper),
		UDB:  databases.NewUserDatabase(a.dbHelper),
		PVDB: databases.NewPendingVerificationDatabase(a.dbHelper),
	}
	u := User{DB: databases.NewUserDatabase(a.dbHelper)}
	c := Chat{
		DB:  databases.NewChatDatabase(a.dbHelper),
		UDB: databases.NewUserDatabase(a.dbHelper),
		Hub: a.hub,
	}
	p := Project{
		DB:  databases.NewProjectDatabase(a.dbHelper),
		UDB: databases.NewUserDatabase(a.dbHelper),
	}
	up := Upload{
		UDB:      databases.NewUserDatabase(a.dbHelper),
		Uploader: a.uploader,
	}
	adm := Admin{
		ADB: databases.NewAccountDatabase(a.dbHelper),
		UDB: databases.NewUserDatabase(a.dbHelper),
		PDB: databases.NewProjectDatabase(a.dbHelper),
		CDB: databases.NewChatDatabase(a.dbHelper),
	}
	ws := WS{Hub: a.hub}
	content := Content{}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	// marketing sections, public and stateless
	r.HandleFunc("/content/hero", content.HeroHandler).Methods("GET")
	r.HandleFunc("/content/steps", content.StepsHandler).Methods("GET")
	r.HandleFunc("/content/pricing", content.PricingHandler).Methods("GET")
	r.HandleFunc("/content/testimonials", content.TestimonialsHandler).Methods("GET")
	r.HandleFunc("/content/faq", content.FAQHandler).Methods("GET")

	apiCreate := r.PathPrefix("/api/v1").Subrouter()

	apiCreate.Handle("/auth/signup", http.HandlerFunc(s.SignupHandler)).Methods("POST")
	apiCreate.Handle("/auth/token", http.HandlerFunc(m.CreateToken)).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(api.RevokeToken))).Methods("DELETE")
	apiCreate.Handle("/auth/verify-email", http.HandlerFunc(s.VerifyEmailHandler)).Methods("POST")
	apiCreate.Handle("/auth/resend-verification", api.Middleware(http.HandlerFunc(s.ResendVerificationHandler))).Methods("POST")

	apiCreate.Handle("/session", api.Middleware(http.HandlerFunc(s.SessionHandler))).Methods("GET")

	apiCreate.Handle("/user/profile-picture", api.Middleware(http.HandlerFunc(up.ProfilePictureHandler))).Methods("POST")
	apiCreate.Handle("/user/{user_id}/completion", api.Middleware(http.HandlerFunc(u.ProfileCompletionHandler))).Methods("GET")
	apiCreate.Handle("/user/{user_id}", api.Middleware(http.HandlerFunc(u.UserHandler))).Methods("GET")
	apiCreate.Handle("/user/{user_id}", api.Middleware(http.HandlerFunc(u.UpdateUserByIDHandler))).Methods("PUT")

	apiCreate.Handle("/conversations", api.Middleware(http.HandlerFunc(c.ConversationsHandler))).Methods("GET")
	apiCreate.Handle("/projects/{project_id}/messages", api.Middleware(http.HandlerFunc(c.ThreadMessagesHandler))).Methods("GET")
	apiCreate.Handle("/projects/{project_id}/messages", api.Middleware(http.HandlerFunc(c.SendMessageHandler))).Methods("POST")
	apiCreate.Handle("/projects/{project_id}/messages/read", api.Middleware(http.HandlerFunc(c.MarkThreadReadHandler))).Methods("PUT")

	apiCreate.Handle("/projects", api.Middleware(http.HandlerFunc(p.CreateProjectHandler))).Methods("POST")
	apiCreate.Handle("/projects", api.Middleware(http.HandlerFunc(p.ProjectsHandler))).Methods("GET")
	apiCreate.Handle("/projects/{project_id}/bids", api.Middleware(http.HandlerFunc(p.PlaceBidHandler))).Methods("POST")
	apiCreate.Handle("/projects/{project_id}", api.Middleware(http.HandlerFunc(p.ProjectByIDHandler))).Methods("GET")

	// token arrives via query param for browser websocket clients
	apiCreate.Handle("/ws", http.HandlerFunc(ws.SubscribeHandler)).Methods("GET")

	// admin routes never stream, so they get a hard request timeout
	adminRouter := apiCreate.PathPrefix("/admin").Subrouter()
	adminRouter.Use(api.TimeoutMiddleware(30 * time.Second))
	adminRouter.Handle("/login", http.HandlerFunc(adm.AdminLoginHandler)).Methods("POST")
	adminRouter.Handle("/users", api.AdminMiddleware(http.HandlerFunc(adm.AdminUsersHandler))).Methods("GET")
	adminRouter.Handle("/stats", api.AdminMiddleware(http.HandlerFunc(adm.AdminStatsHandler))).Methods("GET")

	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("buildhub-api has connected to the database")

	// blob storage for profile pictures, configured via CLOUDINARY_URL
	uploader, err := NewCloudinaryUploader()
	if err != nil {
		zap.S().With(err).Error("failed to create cloudinary uploader")
		return err
	}
	a.uploader = uploader

	a.hub = realtime.NewHub()

	a.scheduler = scheduler.NewScheduler(databases.NewPendingVerificationDatabase(a.dbHelper))
	a.scheduler.Start()

	// initialize api router
	a.initializeRoutes()
	return nil

}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
