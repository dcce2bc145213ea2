package models

import "time"

// MoodIDs lists the fixed mood taxonomy. Stats omit moods with zero
// occurrences; UI layers back-fill from this list if they want a full row.
var MoodIDs = []string{
	"calm", "happy", "disappointed", "frustrated",
	"surprised", "sad", "bored", "worried",
}

// MoodEntry is one mood record. At most one entry exists per user per UTC
// calendar day; SaveMood enforces this by read-before-write.
type MoodEntry struct {
	ID        string    `json:"id" firestore:"-"`
	UserID    string    `json:"userId" firestore:"userId"`
	MoodID    string    `json:"moodId" firestore:"moodId"`
	MoodLabel string    `json:"moodLabel" firestore:"moodLabel"`
	Date      time.Time `json:"date" firestore:"date"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// DayView is one slot of the rolling 7-day calendar. Mood is nil when the
// day has no entry.
type DayView struct {
	Date      time.Time  `json:"date"`
	Mood      *MoodEntry `json:"mood"`
	DayName   string     `json:"dayName"`
	DayNumber int        `json:"dayNumber"`
}

// MoodStat is one row of the percentage breakdown over a period.
type MoodStat struct {
	Mood       string `json:"mood"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}
