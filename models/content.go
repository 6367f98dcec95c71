package models

// HeroSection is the top marketing banner
type HeroSection struct {
	Headline    string `json:"headline"`
	Subheadline string `json:"subheadline"`
	CTALabel    string `json:"ctaLabel"`
	CTAHref     string `json:"ctaHref"`
}

// Step is one entry of the how-it-works section
type Step struct {
	Order       int    `json:"order"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// PricingPlan is one column of the pricing section
type PricingPlan struct {
	Name     string   `json:"name"`
	Price    string   `json:"price"`
	Features []string `json:"features"`
}

// Testimonial is one quote of the testimonials section
type Testimonial struct {
	Author string `json:"author"`
	Role   string `json:"role"`
	Quote  string `json:"quote"`
}

// FAQItem is one entry of the FAQ section
type FAQItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
