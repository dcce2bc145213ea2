package core

import (
	"errors"
	"fmt"

	"calmme-backend-go/internal/models"
)

// ErrInvalidAnswers is returned when a submission does not cover every
// question with an in-range option.
var ErrInvalidAnswers = errors.New("invalid assessment answers")

// Severity bands for the anxiety self-assessment score.
const (
	SeverityMinimal  = "Minimal Anxiety"
	SeverityMild     = "Mild Anxiety"
	SeverityModerate = "Moderate Anxiety"
	SeveritySevere   = "Severe Anxiety"
)

var assessmentOptions = []models.AssessmentOption{
	{Value: 0, Label: "Not at all"},
	{Value: 1, Label: "Several days"},
	{Value: 2, Label: "More than half the days"},
	{Value: 3, Label: "Nearly every day"},
}

var assessmentQuestions = []models.AssessmentQuestion{
	{ID: 1, Text: "Feeling nervous, anxious, or on edge", Options: assessmentOptions},
	{ID: 2, Text: "Not being able to stop or control worrying", Options: assessmentOptions},
	{ID: 3, Text: "Worrying too much about different things", Options: assessmentOptions},
	{ID: 4, Text: "Trouble relaxing", Options: assessmentOptions},
	{ID: 5, Text: "Being so restless that it is hard to sit still", Options: assessmentOptions},
	{ID: 6, Text: "Becoming easily annoyed or irritable", Options: assessmentOptions},
	{ID: 7, Text: "Feeling afraid, as if something awful might happen", Options: assessmentOptions},
}

// assessmentService implements the AssessmentService interface. It is
// stateless: results are computed, not stored.
type assessmentService struct{}

// NewAssessmentService creates a new AssessmentService instance.
func NewAssessmentService() AssessmentService {
	return &assessmentService{}
}

// Questions returns the fixed question set.
func (s *assessmentService) Questions() []models.AssessmentQuestion {
	return assessmentQuestions
}

// Evaluate sums the answers and maps the total to a severity band.
func (s *assessmentService) Evaluate(answers []int) (*models.AssessmentResult, error) {
	if len(answers) != len(assessmentQuestions) {
		return nil, fmt.Errorf("%w: expected %d answers, got %d", ErrInvalidAnswers, len(assessmentQuestions), len(answers))
	}

	score := 0
	for i, answer := range answers {
		if answer < 0 || answer > 3 {
			return nil, fmt.Errorf("%w: answer %d out of range at question %d", ErrInvalidAnswers, answer, i+1)
		}
		score += answer
	}

	severity := SeveritySevere
	switch {
	case score <= 4:
		severity = SeverityMinimal
	case score <= 9:
		severity = SeverityMild
	case score <= 14:
		severity = SeverityModerate
	}

	return &models.AssessmentResult{
		Score:    score,
		MaxScore: len(assessmentQuestions) * 3,
		Severity: severity,
	}, nil
}
