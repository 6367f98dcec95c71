package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Roles assignable to a profile
const (
	RoleCustomer   = "customer"
	RoleContractor = "contractor"
)

// UserProfile holds the structure for the users collection in mongo. The _id
// always equals the owning account's ID.
type UserProfile struct {
	ID                 string             `json:"_id" bson:"_id"`
	Email              string             `json:"email" bson:"email"`
	Name               string             `json:"name" bson:"name"`
	Role               string             `json:"role" bson:"role"`
	Phone              string             `json:"phone" bson:"phone"`
	City               string             `json:"city,omitempty" bson:"city,omitempty"`
	IsEmailVerified    bool               `json:"isEmailVerified" bson:"isEmailVerified"`
	IsPhoneVerified    bool               `json:"isPhoneVerified" bson:"isPhoneVerified"`
	IsDocumentVerified bool               `json:"isDocumentVerified,omitempty" bson:"isDocumentVerified,omitempty"`
	ProfilePicture     string             `json:"profilePicture,omitempty" bson:"profilePicture,omitempty"`
	IsAdmin            bool               `json:"isAdmin,omitempty" bson:"isAdmin,omitempty"`
	CompanyName        string             `json:"companyName,omitempty" bson:"companyName,omitempty"`
	ServiceCategory    string             `json:"serviceCategory,omitempty" bson:"serviceCategory,omitempty"`
	YearsOfExperience  int                `json:"yearsOfExperience,omitempty" bson:"yearsOfExperience,omitempty"`
	Documents          []string           `json:"documents,omitempty" bson:"documents,omitempty"`
	IsVerifiedBadge    bool               `json:"isVerifiedBadge,omitempty" bson:"isVerifiedBadge,omitempty"`
	ProjectsPosted     int                `json:"projectsPosted,omitempty" bson:"projectsPosted,omitempty"`
	CreatedAt          primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt          primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// MissingFields returns the names of required profile fields that are empty.
// Both roles need name, email, phone and city; contractors additionally need
// a company name and a service category before they can bid.
func (u UserProfile) MissingFields() []string {
	type field struct {
		name  string
		value string
	}
	required := []field{
		{"name", u.Name},
		{"email", u.Email},
		{"phone", u.Phone},
		{"city", u.City},
	}
	if u.Role == RoleContractor {
		required = append(required,
			field{"companyName", u.CompanyName},
			field{"serviceCategory", u.ServiceCategory},
		)
	}
	var missing []string
	for _, f := range required {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// IsComplete reports whether the profile passes the onboarding gate
func (u UserProfile) IsComplete() bool {
	return len(u.MissingFields()) == 0
}

// ProfileCompletion is the response body for the completion gate endpoint
type ProfileCompletion struct {
	Complete      bool     `json:"complete"`
	MissingFields []string `json:"missingFields,omitempty"`
}

// Completion returns the gate result for the profile
func (u UserProfile) Completion() ProfileCompletion {
	missing := u.MissingFields()
	return ProfileCompletion{Complete: len(missing) == 0, MissingFields: missing}
}
