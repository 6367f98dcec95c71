package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chaman08/buildhub-sub001/api/handlers"
	"github.com/chaman08/buildhub-sub001/models"
)

func TestContent_StepsHandlerOrdered(t *testing.T) {
	req, err := http.NewRequest("GET", "/content/steps", nil)
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(handlers.Content{}.StepsHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var steps []models.Step
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &steps))
	assert.Len(t, steps, 4)
	for i, step := range steps {
		assert.Equal(t, i+1, step.Order)
		assert.NotEmpty(t, step.Title)
	}
}

func TestContent_HeroHandler(t *testing.T) {
	req, err := http.NewRequest("GET", "/content/hero", nil)
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(handlers.Content{}.HeroHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var hero models.HeroSection
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &hero))
	assert.NotEmpty(t, hero.Headline)
	assert.NotEmpty(t, hero.CTALabel)
}

func TestContent_PricingHandler(t *testing.T) {
	req, err := http.NewRequest("GET", "/content/pricing", nil)
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(handlers.Content{}.PricingHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var plans []models.PricingPlan
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &plans))
	assert.NotEmpty(t, plans)
	for _, plan := range plans {
		assert.NotEmpty(t, plan.Name)
		assert.NotEmpty(t, plan.Features)
	}
}
