package models

// ChatRole is the author of a mentor conversation turn.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is one turn of a mentor conversation. The client keeps the
// conversation and resends it in full with each request.
type ChatMessage struct {
	Role    ChatRole `json:"role" validate:"required,oneof=user assistant"`
	Content string   `json:"content" validate:"required,max=8000"`
}

// PersonalInfo is the contact block of a resume.
type PersonalInfo struct {
	Name     string `json:"name" validate:"max=200"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone,omitempty" validate:"max=50"`
	Location string `json:"location,omitempty" validate:"max=200"`
	LinkedIn string `json:"linkedin,omitempty" validate:"omitempty,url"`
}

// ExperienceEntry is raw work history as typed by the user.
type ExperienceEntry struct {
	Company     string `json:"company" validate:"max=200"`
	Role        string `json:"role" validate:"max=200"`
	Duration    string `json:"duration" validate:"max=100"`
	Description string `json:"description" validate:"max=4000"`
}

// ResumeRequest is the input to resume generation.
type ResumeRequest struct {
	PersonalInfo PersonalInfo      `json:"personalInfo" validate:"required"`
	Experience   []ExperienceEntry `json:"experience" validate:"max=20,dive"`
	Education    string            `json:"education" validate:"max=2000"`
	Skills       string            `json:"skills" validate:"max=2000"`
	TargetRole   string            `json:"targetRole" validate:"max=200"`
}

// ExperienceBullets is a rewritten experience entry.
type ExperienceBullets struct {
	Company  string   `json:"company"`
	Role     string   `json:"role"`
	Duration string   `json:"duration"`
	Bullets  []string `json:"bullets"`
}

// SkillCategory groups resume skills.
type SkillCategory struct {
	Category string   `json:"category"`
	Skills   []string `json:"skills"`
}

// Resume is the ATS-oriented resume returned by the writer.
type Resume struct {
	Summary           string              `json:"summary"`
	ExperienceBullets []ExperienceBullets `json:"experienceBullets"`
	SkillCategories   []SkillCategory     `json:"skillCategories"`
	Keywords          []string            `json:"keywords"`
	Tips              []string            `json:"tips"`
}

// JobType is the employment type of a listing.
type JobType string

const (
	JobTypeFullTime   JobType = "Full-time"
	JobTypePartTime   JobType = "Part-time"
	JobTypeInternship JobType = "Internship"
	JobTypeContract   JobType = "Contract"
	JobTypeRemote     JobType = "Remote"
)

// JobTypes lists every accepted JobType in display order.
var JobTypes = []JobType{JobTypeFullTime, JobTypePartTime, JobTypeInternship, JobTypeContract, JobTypeRemote}

// Valid reports whether t is a known job type.
func (t JobType) Valid() bool {
	for _, known := range JobTypes {
		if t == known {
			return true
		}
	}
	return false
}

// JobListing is one opportunity suggested by the job search.
type JobListing struct {
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	Type        JobType  `json:"type"`
	Experience  string   `json:"experience"`
	Skills      []string `json:"skills"`
	Platform    string   `json:"platform"`
	URL         string   `json:"url"`
	Description string   `json:"description"`
}

// Bounds on the number of listings in a job search response.
const (
	MinJobListings = 6
	MaxJobListings = 8
)
