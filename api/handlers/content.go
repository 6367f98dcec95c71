package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/chaman08/buildhub-sub001/config"
	"github.com/chaman08/buildhub-sub001/models"
)

// Content serves the static marketing sections. Nothing here is persisted.
type Content struct{}

var heroSection = models.HeroSection{
	Headline:    "Build your dream project with trusted contractors",
	Subheadline: "BuildHub connects homeowners and businesses with verified construction professionals. Post your project, compare bids, chat directly.",
	CTALabel:    "Post a project",
	CTAHref:     "/signup",
}

var steps = []models.Step{
	{Order: 1, Title: "Post your project", Description: "Describe the work, your city and your budget. It takes two minutes."},
	{Order: 2, Title: "Receive bids", Description: "Verified contractors in your area send offers with price and timeline."},
	{Order: 3, Title: "Chat and compare", Description: "Message contractors directly, check their profiles and verification badges."},
	{Order: 4, Title: "Hire with confidence", Description: "Pick the offer that fits. Your contractor's track record is on their profile."},
}

var pricingPlans = []models.PricingPlan{
	{Name: "Customer", Price: "Free", Features: []string{"Unlimited project posts", "Direct chat with contractors", "Compare bids side by side"}},
	{Name: "Contractor", Price: "Free", Features: []string{"Browse open projects", "Unlimited bids", "Profile with verification badge"}},
	{Name: "Contractor Pro", Price: "$29/mo", Features: []string{"Priority placement in search", "Early access to new projects", "Dedicated support"}},
}

var testimonials = []models.Testimonial{
	{Author: "Meera S.", Role: "Homeowner", Quote: "Posted my kitchen renovation on Monday, had four bids by Wednesday. The chat made comparing offers painless."},
	{Author: "Rajan K.", Role: "Contractor, RK Interiors", Quote: "BuildHub keeps my crew booked. The verification badge noticeably improved my win rate."},
	{Author: "Anita D.", Role: "Property manager", Quote: "We route all maintenance work through BuildHub now. One place for quotes, chat and history."},
}

var faqItems = []models.FAQItem{
	{Question: "Is BuildHub free for customers?", Answer: "Yes. Posting projects, receiving bids and chatting with contractors costs nothing."},
	{Question: "How are contractors verified?", Answer: "Contractors upload registration documents which our team reviews before awarding the verification badge."},
	{Question: "Can I message a contractor before accepting a bid?", Answer: "Yes. Every project thread has a built-in chat so you can clarify details first."},
	{Question: "What happens after I accept a bid?", Answer: "You and the contractor agree terms directly. BuildHub keeps the project thread available for reference."},
}

func writeContent(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	b, err := json.Marshal(v)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// HeroHandler returns the hero section
func (c Content) HeroHandler(w http.ResponseWriter, r *http.Request) {
	writeContent(w, heroSection)
}

// StepsHandler returns the how-it-works steps
func (c Content) StepsHandler(w http.ResponseWriter, r *http.Request) {
	writeContent(w, steps)
}

// PricingHandler returns the pricing plans
func (c Content) PricingHandler(w http.ResponseWriter, r *http.Request) {
	writeContent(w, pricingPlans)
}

// TestimonialsHandler returns the testimonials
func (c Content) TestimonialsHandler(w http.ResponseWriter, r *http.Request) {
	writeContent(w, testimonials)
}

// FAQHandler returns the FAQ entries
func (c Content) FAQHandler(w http.ResponseWriter, r *http.Request) {
	writeContent(w, faqItems)
}
