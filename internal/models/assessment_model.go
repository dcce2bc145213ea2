package models

// AssessmentOption is one selectable answer for an assessment question.
type AssessmentOption struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

// AssessmentQuestion is one question of the anxiety self-assessment.
type AssessmentQuestion struct {
	ID      int                `json:"id"`
	Text    string             `json:"text"`
	Options []AssessmentOption `json:"options"`
}

// AssessmentResult is the scored outcome of one assessment submission.
type AssessmentResult struct {
	Score    int    `json:"score"`
	MaxScore int    `json:"maxScore"`
	Severity string `json:"severity"`
}
