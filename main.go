package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/chaman08/buildhub-sub001/api/handlers"
	"github.com/chaman08/buildhub-sub001/config"
	"github.com/chaman08/buildhub-sub001/logging"
)

func main() {
	logger := logging.New()

	a := handlers.App{}
	a.Config = *config.New()

	if err := a.Initialize(); err != nil { //initialize database, realtime hub and router
		log.Fatal(err)
	}

	port := os.Getenv("PORT")
	baseURL := os.Getenv("BASE_URL")
	logger.Infow("buildhub-api is up and running",
		"port", port,
		"url", baseURL,
	)
	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%v", port), a.Router))
}
