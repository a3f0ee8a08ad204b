package ai

import (
	"fmt"
	"strings"

	"github.com/benvon/career-coach/internal/models"
)

const (
	// NewLearnerSummary is the planning summary for a user without skill records.
	NewLearnerSummary = "Brand new learner, no progress yet."
	// NoMentorProgress is the mentor progress text for a user without skill records.
	NoMentorProgress = "No progress tracked yet."
	// NoSkillSummary is the job search skill text for a user without skill records.
	NoSkillSummary = "Beginner level"
)

// ProgressSummary renders skills as "skill: N%" pairs for task planning.
func ProgressSummary(skills []models.SkillProgress) string {
	if len(skills) == 0 {
		return NewLearnerSummary
	}
	parts := make([]string, 0, len(skills))
	for _, s := range skills {
		parts = append(parts, fmt.Sprintf("%s: %d%%", s.SkillName, s.CompletionPercentage))
	}
	return strings.Join(parts, ", ")
}

// MentorProgress renders one line per skill with days and streak.
func MentorProgress(skills []models.SkillProgress) string {
	if len(skills) == 0 {
		return NoMentorProgress
	}
	lines := make([]string, 0, len(skills))
	for _, s := range skills {
		lines = append(lines, fmt.Sprintf("%s: %d%% (%d days, streak: %d)",
			s.SkillName, s.CompletionPercentage, s.DaysPracticed, s.CurrentStreak))
	}
	return strings.Join(lines, "\n")
}

// SkillSummary renders skill levels for job matching.
func SkillSummary(skills []models.SkillProgress) string {
	if len(skills) == 0 {
		return NoSkillSummary
	}
	return ProgressSummary(skills)
}

// BuildMentorSystemPrompt returns the mentor persona with the learner's context.
func BuildMentorSystemPrompt(mc MentorContext) string {
	name := mc.Name
	if name == "" {
		name = "Learner"
	}
	role := mc.Role
	if role == "" {
		role = "Not selected"
	}
	category := mc.Category
	if category == "" {
		category = "Not selected"
	}
	minutes := mc.DailyMinutes
	if minutes <= 0 {
		minutes = models.DefaultDailyMinutes
	}
	progress := mc.Progress
	if progress == "" {
		progress = NoMentorProgress
	}

	var b strings.Builder
	b.WriteString("You are J-AI Mentor, a friendly and knowledgeable career mentor.\n\n")
	fmt.Fprintf(&b, "User: %s\n", name)
	fmt.Fprintf(&b, "Target Role: %s\n", role)
	fmt.Fprintf(&b, "Category: %s\n", category)
	fmt.Fprintf(&b, "Daily learning time: %d minutes\n\n", minutes)
	fmt.Fprintf(&b, "Progress:\n%s\n\n", progress)
	b.WriteString("Help with career advice, skill guidance, resume tips, motivation and explaining concepts. ")
	b.WriteString("Keep answers concise and actionable, format with markdown, and recommend free resources.")
	return b.String()
}

// BuildResumePrompt returns the user prompt for resume generation.
func BuildResumePrompt(req models.ResumeRequest) string {
	target := strings.TrimSpace(req.TargetRole)
	if target == "" {
		target = "a tech role"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Create an ATS-optimized resume for %s.\n\n", target)
	fmt.Fprintf(&b, "Name: %s\n", req.PersonalInfo.Name)
	if req.PersonalInfo.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", req.PersonalInfo.Location)
	}
	if len(req.Experience) > 0 {
		b.WriteString("\nExperience:\n")
		for _, e := range req.Experience {
			fmt.Fprintf(&b, "- %s at %s (%s): %s\n", e.Role, e.Company, e.Duration, e.Description)
		}
	}
	if req.Education != "" {
		fmt.Fprintf(&b, "\nEducation: %s\n", req.Education)
	}
	if req.Skills != "" {
		fmt.Fprintf(&b, "\nSkills: %s\n", req.Skills)
	}
	b.WriteString("\nWrite a professional summary, rewrite each experience entry as strong action-verb bullets with measurable impact, ")
	b.WriteString("group skills into categories, list ATS keywords for the target role and give improvement tips.")
	return b.String()
}

// BuildJobPrompts returns the system and user prompts for a job search.
func BuildJobPrompts(req JobSearchRequest) (system, user string) {
	role := req.Role
	if role == "" {
		role = "software professional"
	}
	category := req.Category
	if category == "" {
		category = "General"
	}
	skills := req.SkillSummary
	if skills == "" {
		skills = NoSkillSummary
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		query = DefaultJobQuery(req.Role)
	}

	system = fmt.Sprintf("You are a job search assistant. The user is pursuing a career as a %q (%s category). "+
		"Their skill levels: %s. Suggest realistic, currently common job and internship opportunities that match their level. "+
		"Use well-known job platforms (LinkedIn, Indeed, Naukri, Internshala, Wellfound, Glassdoor) and link to a search page on that platform.",
		role, category, skills)
	user = fmt.Sprintf("Search for: %s. Return exactly %d-%d job opportunities.", query, models.MinJobListings, models.MaxJobListings)
	return system, user
}

// DefaultJobQuery is the search used when the user types nothing.
func DefaultJobQuery(role string) string {
	if role == "" {
		role = "software"
	}
	return role + " jobs and internships"
}
