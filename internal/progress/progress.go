// Package progress derives display values from a user's XP and progress
// record. Everything here is pure.
package progress

import "github.com/atharvakonge/edustocks/internal/models"

// Milestone is the XP span the level bar fills over
const Milestone = 1000

// KnowledgeSeekerLessons is the completed-lesson count that unlocks Knowledge Seeker
const KnowledgeSeekerLessons = 5

type rankStep struct {
	min  int
	name string
}

// descending by min
var ranks = []rankStep{
	{5000, "Master"},
	{2500, "Expert"},
	{1000, "Advanced"},
	{500, "Intermediate"},
	{100, "Beginner"},
}

// RankOf returns the rank label for xp. Negative xp ranks as Novice.
func RankOf(xp int) string {
	for _, r := range ranks {
		if xp >= r.min {
			return r.name
		}
	}
	return "Novice"
}

// LevelOf is the proficiency level the backend assigns for xp
func LevelOf(xp int) models.Level {
	switch {
	case xp >= 5000:
		return models.Advanced
	case xp >= 2000:
		return models.Intermediate
	}
	return models.Beginner
}

// LevelProgress is the level bar fill in [0,100).
func LevelProgress(xp int) float64 {
	return float64(mod(xp)) / 10
}

// XPToNextMilestone is how much XP remains until the next multiple of Milestone.
func XPToNextMilestone(xp int) int {
	return Milestone - mod(xp)
}

func mod(xp int) int {
	m := xp % Milestone
	if m < 0 {
		m += Milestone
	}
	return m
}

// KnowledgeSeeker reports whether enough lessons are completed for the badge
func KnowledgeSeeker(completedLessons int) bool {
	return completedLessons >= KnowledgeSeekerLessons
}

// Achievement is a badge shown on the profile
type Achievement struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Achievements lists the badges for p. First Trade and First Lesson are
// always listed; Knowledge Seeker only once earned.
func Achievements(p *models.UserProgress) []Achievement {
	out := []Achievement{
		{Name: "First Trade", Description: "Complete your first trade"},
		{Name: "First Lesson", Description: "Complete your first lesson"},
	}
	if p != nil && KnowledgeSeeker(len(p.CompletedLessons)) {
		out = append(out, Achievement{Name: "Knowledge Seeker", Description: "Complete 5 lessons"})
	}
	return out
}
