package validator

import (
	"fmt"
	"strings"

	apperrors "github.com/BIJODEV/BibleQZ/internal/errors"
	"github.com/BIJODEV/BibleQZ/internal/models"
)

// QuizValidator holds the share-time invariant checks for a quiz snapshot.
// Validation short-circuits: the first failing rule wins and is reported as a
// single human-readable reason. A quiz that fails any rule is never shareable.
type QuizValidator struct{}

func NewQuizValidator() *QuizValidator {
	return &QuizValidator{}
}

// ValidateForShare checks every invariant that must hold before a share link
// is issued. Returns nil when the snapshot is shareable.
func (v *QuizValidator) ValidateForShare(quiz *models.Quiz) *apperrors.ValidationError {
	if strings.TrimSpace(quiz.Title) == "" {
		return apperrors.NewValidationError("title", "please enter a quiz title", quiz.Title)
	}
	if strings.TrimSpace(quiz.Passage) == "" {
		return apperrors.NewValidationError("passage", "please enter a Bible passage", quiz.Passage)
	}
	if len(quiz.Questions) == 0 {
		return apperrors.NewValidationError("questions", "please add at least one question", 0)
	}
	if len(quiz.Questions) > models.MaxQuestions {
		return apperrors.NewValidationError("questions",
			fmt.Sprintf("maximum %d questions allowed per quiz", models.MaxQuestions), len(quiz.Questions))
	}

	for i := range quiz.Questions {
		if err := v.validateQuestion(&quiz.Questions[i], i); err != nil {
			return err
		}
	}
	return nil
}

func (v *QuizValidator) validateQuestion(q *models.Question, index int) *apperrors.ValidationError {
	field := fmt.Sprintf("questions[%d]", index)
	number := index + 1

	if strings.TrimSpace(q.Question) == "" {
		return apperrors.NewValidationError(field,
			fmt.Sprintf("please enter question %d", number), q.Question)
	}
	if q.NumberOfOptions < models.MinOptions || q.NumberOfOptions > models.MaxOptions {
		return apperrors.NewValidationError(field,
			fmt.Sprintf("question %d must have between %d and %d options", number, models.MinOptions, models.MaxOptions),
			q.NumberOfOptions)
	}
	if len(q.Options) < q.NumberOfOptions {
		return apperrors.NewValidationError(field,
			fmt.Sprintf("question %d is missing option slots", number), len(q.Options))
	}

	// Only active slots are validated; trailing inert slots may hold anything.
	for j, option := range q.ActiveOptions() {
		if strings.TrimSpace(option) == "" {
			return apperrors.NewValidationError(field,
				fmt.Sprintf("please enter all options for question %d", number), j)
		}
	}

	if q.CorrectAnswer < 0 || q.CorrectAnswer >= q.NumberOfOptions {
		return apperrors.NewValidationError(field,
			fmt.Sprintf("question %d has a correct answer outside its active options", number), q.CorrectAnswer)
	}
	return nil
}

// NearQuestionLimit reports whether the author should be warned that the quiz
// is approaching the hard question cap.
func (v *QuizValidator) NearQuestionLimit(quiz *models.Quiz) bool {
	return len(quiz.Questions) >= models.QuestionWarningThreshold
}
