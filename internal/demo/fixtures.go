// Package demo provides the fixed in-memory data source used when the
// server runs without an identity provider, database or model backend.
package demo

import (
	"github.com/benvon/career-coach/internal/models"
	"github.com/google/uuid"
)

// UserID identifies the single demo user.
var UserID = uuid.MustParse("00000000-0000-4000-8000-00000000de30")

// Demo identity and onboarding choices.
const (
	Email        = "demo@jai.app"
	FullName     = "Karthik Demo"
	RoleCategory = "Software & Development"
	SelectedRole = "Frontend Developer"
	DailyMinutes = 90
)

type taskFixture struct {
	title, description string
	taskType           models.TaskType
	minutes            int
	platform, url      string
	skill              string
	completed          bool
}

var taskFixtures = []taskFixture{
	{
		title:       "React Hooks Deep Dive",
		description: "Learn useMemo, useCallback, and custom hooks with practical examples.",
		taskType:    models.TaskTypeLearn, minutes: 45,
		platform: "YouTube", url: "https://www.youtube.com/",
		skill: "React Fundamentals", completed: true,
	},
	{
		title:       "Build a Task Tracker UI",
		description: "Create responsive cards, filters, and completion toggles in React + Tailwind.",
		taskType:    models.TaskTypePractice, minutes: 60,
		platform: "Frontend Mentor", url: "https://www.frontendmentor.io/",
		skill: "React Fundamentals", completed: true,
	},
	{
		title:       "TypeScript Utility Types",
		description: "Revise Pick, Omit, Partial, and Record with interview-style snippets.",
		taskType:    models.TaskTypeRevise, minutes: 30,
		platform: "TypeScript Docs", url: "https://www.typescriptlang.org/docs/",
		skill: "TypeScript",
	},
	{
		title:       "Portfolio Hero Redesign",
		description: "Design and implement an image-first hero section with strong typography.",
		taskType:    models.TaskTypePractice, minutes: 50,
		platform: "Dribbble", url: "https://dribbble.com/",
	},
}

type skillFixture struct {
	name                        string
	pct, days, current, longest int
}

var skillFixtures = []skillFixture{
	{name: "React Fundamentals", pct: 78, days: 18, current: 6, longest: 9},
	{name: "TypeScript", pct: 65, days: 14, current: 4, longest: 7},
	{name: "System Design Basics", pct: 42, days: 10, current: 3, longest: 5},
}

// Jobs is the fixed job search answer.
var Jobs = []models.JobListing{
	{
		Title:       "Junior Frontend Developer",
		Company:     "PixelForge Labs",
		Location:    "Remote",
		Type:        models.JobTypeFullTime,
		Experience:  "0-2 years",
		Skills:      []string{"React", "TypeScript", "Tailwind CSS", "Git"},
		Platform:    "LinkedIn",
		URL:         "https://www.linkedin.com/jobs/",
		Description: "Build user-facing features with React and collaborate with design and product teams.",
	},
	{
		Title:       "UI Engineer Intern",
		Company:     "Nimbus Studio",
		Location:    "Bengaluru",
		Type:        models.JobTypeInternship,
		Experience:  "Freshers",
		Skills:      []string{"HTML", "CSS", "JavaScript", "Figma"},
		Platform:    "Wellfound",
		URL:         "https://wellfound.com/jobs",
		Description: "Support UI implementation and improve performance for modern web applications.",
	},
	{
		Title:       "Frontend Developer",
		Company:     "ScaleCart",
		Location:    "Hyderabad",
		Type:        models.JobTypeRemote,
		Experience:  "1-3 years",
		Skills:      []string{"Next.js", "TypeScript", "REST APIs", "Testing"},
		Platform:    "Indeed",
		URL:         "https://in.indeed.com/",
		Description: "Own dashboard modules, integrate APIs, and optimize UX for e-commerce operations.",
	},
}

// Resume is the fixed resume answer.
var Resume = models.Resume{
	Summary: "Frontend Developer with practical experience in building performant, responsive web applications using React and TypeScript. " +
		"Strong focus on clean UI, component reusability, and business-oriented outcomes.",
	ExperienceBullets: []models.ExperienceBullets{
		{
			Company:  "ByteNest",
			Role:     "Frontend Developer Intern",
			Duration: "Jan 2023 - Jul 2023",
			Bullets: []string{
				"Developed 20+ reusable UI components, reducing implementation time across pages by 30%.",
				"Improved mobile page load speed by 24% through bundle and image optimizations.",
				"Collaborated with product and design teams to launch 3 user-facing modules on time.",
			},
		},
		{
			Company:  "Freelance",
			Role:     "Web Developer",
			Duration: "Aug 2023 - Present",
			Bullets: []string{
				"Built and deployed 8 responsive business websites with clear conversion-focused layouts.",
				"Integrated SEO metadata and semantic structure, improving discoverability for client pages.",
				"Delivered projects end-to-end, from wireframe to production support.",
			},
		},
	},
	SkillCategories: []models.SkillCategory{
		{Category: "Frontend", Skills: []string{"React", "TypeScript", "Tailwind CSS", "Vite"}},
		{Category: "Backend", Skills: []string{"Node.js", "Express", "PostgreSQL"}},
		{Category: "Tools", Skills: []string{"Git", "GitHub", "Figma", "Postman"}},
	},
	Keywords: []string{"React", "TypeScript", "Responsive Design", "Component Architecture", "Performance"},
	Tips: []string{
		"Keep each bullet point achievement-focused with measurable impact.",
		"Mirror role-specific keywords from job descriptions in your summary and skills.",
		"Use concise action verbs and keep formatting consistent across sections.",
	},
}

// User returns the identity every request is served as in demo mode.
func User() *models.User {
	name := FullName
	return &models.User{
		ID:            UserID,
		Email:         Email,
		Name:          &name,
		EmailVerified: true,
	}
}
