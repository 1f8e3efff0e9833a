package progress

import (
	"context"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/example/studybot/internal/database"
	"github.com/example/studybot/internal/review"
	"github.com/example/studybot/pkg/errs"
	"github.com/example/studybot/pkg/models"
)

// DefaultPassThreshold marks a quiz as passed at 70% unless
// PASS_THRESHOLD overrides it.
const DefaultPassThreshold = 0.7

// SubmittedAnswer is one answer inside a quiz submission batch
type SubmittedAnswer struct {
	QuestionID int64         `validate:"required,gt=0"`
	OptionID   int64         `validate:"required,gt=0"`
	Latency    time.Duration `validate:"gte=0"`
}

// QuizSubmission is a batch of answers for one scored attempt
type QuizSubmission struct {
	StudentID   int64             `validate:"required,gt=0"`
	QuizID      int64             `validate:"required,gt=0"`
	SessionID   string            // UUID; assigned when empty
	Answers     []SubmittedAnswer `validate:"required,min=1,dive"`
	TimeSpent   int               `validate:"gte=0"` // Seconds
	SubmittedAt time.Time         `validate:"required"`
}

// Roller turns question-level outcomes into quiz attempts, quiz
// progress and lesson completion state, and appends the study history
// audit record for the session.
type Roller struct {
	recorder       *review.Recorder
	quizzes        *database.QuizRepository
	questions      *database.QuestionRepository
	attempts       *database.QuizAttemptRepository
	quizProgress   *database.QuizProgressRepository
	lessonProgress *database.LessonProgressRepository
	history        *database.StudyHistoryRepository
	tracker        *Tracker
	validate       *validator.Validate
	passThreshold  float64
}

// NewRoller creates a roller. The pass threshold comes from the
// PASS_THRESHOLD environment variable when set.
func NewRoller() *Roller {
	return &Roller{
		recorder:       review.NewRecorder(),
		quizzes:        database.NewQuizRepository(),
		questions:      database.NewQuestionRepository(),
		attempts:       database.NewQuizAttemptRepository(),
		quizProgress:   database.NewQuizProgressRepository(),
		lessonProgress: database.NewLessonProgressRepository(),
		history:        database.NewStudyHistoryRepository(),
		tracker:        NewTracker(),
		validate:       validator.New(),
		passThreshold:  passThresholdFromEnv(),
	}
}

func passThresholdFromEnv() float64 {
	if raw := os.Getenv("PASS_THRESHOLD"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 && v <= 1 {
			return v
		}
	}
	return DefaultPassThreshold
}

// SubmitQuiz scores one attempt and rolls it up. The score is the
// weighted fraction of correct answers rounded to two decimal places;
// questions left unanswered in the batch count as incorrect. Attempts
// beyond the quiz's allowance are rejected with QuotaExceededError
// before anything is written.
func (r *Roller) SubmitQuiz(ctx context.Context, sub QuizSubmission) (*models.QuizAttempt, error) {
	if err := r.validate.Struct(sub); err != nil {
		return nil, &errs.IntegrityError{Reason: fmt.Sprintf("malformed quiz submission: %v", err)}
	}
	if sub.SessionID == "" {
		sub.SessionID = uuid.NewString()
	}

	quiz, err := r.quizzes.GetByID(ctx, sub.QuizID)
	if err != nil {
		return nil, err
	}
	questions, err := r.questions.GetByQuiz(ctx, quiz.ID)
	if err != nil {
		return nil, err
	}

	totalWeight := 0.0
	for _, question := range questions {
		totalWeight += question.Weight
	}
	if totalWeight <= 0 {
		return nil, &errs.InvalidQuizError{QuizID: quiz.ID, Reason: "zero total question weight"}
	}

	// Validate and resolve every answer before anything is written
	prepared := make(map[int64]*review.Prepared, len(sub.Answers))
	for _, answer := range sub.Answers {
		p, err := r.recorder.Prepare(ctx, review.Submission{
			StudentID:   sub.StudentID,
			QuestionID:  answer.QuestionID,
			OptionID:    answer.OptionID,
			SubmittedAt: sub.SubmittedAt,
			Latency:     answer.Latency,
		})
		if err != nil {
			return nil, err
		}
		if p.Question.QuizID != quiz.ID {
			return nil, &errs.IntegrityError{
				Reason: fmt.Sprintf("question %d does not belong to quiz %d", p.Question.ID, quiz.ID),
			}
		}
		if _, dup := prepared[answer.QuestionID]; dup {
			return nil, &errs.IntegrityError{
				Reason: fmt.Sprintf("duplicate answer for question %d", answer.QuestionID),
			}
		}
		prepared[answer.QuestionID] = p
	}

	// Iterating the catalog's question order makes the score invariant
	// to the submission order of the batch
	correctWeight := 0.0
	for _, question := range questions {
		if p, ok := prepared[question.ID]; ok && p.Outcome.Correct {
			correctWeight += question.Weight
		}
	}
	score := roundScore(correctWeight / totalWeight)

	var attempt *models.QuizAttempt
	err = database.WithRetry(ctx, func() error {
		return database.WithTx(ctx, func(tx *sqlx.Tx) error {
			var txErr error
			attempt, txErr = r.applyAttemptTx(ctx, tx, quiz, sub, score, prepared)
			return txErr
		})
	})
	if err != nil {
		return nil, err
	}

	// The rollup is derived state; refresh it outside the attempt
	// transaction
	if err := r.tracker.Rebuild(ctx, sub.StudentID); err != nil {
		return nil, fmt.Errorf("attempt recorded but rollup refresh failed: %w", err)
	}
	return attempt, nil
}

// applyAttemptTx writes the attempt and every row it dirties inside
// one transaction. Repeat submissions of the same quiz serialize on
// the locked progress row; a first submission relies on the attempt
// number unique key and the transaction isolation level, both of
// which surface the race as a retryable conflict.
func (r *Roller) applyAttemptTx(ctx context.Context, tx *sqlx.Tx, quiz *models.Quiz, sub QuizSubmission, score float64, prepared map[int64]*review.Prepared) (*models.QuizAttempt, error) {
	progress, err := r.quizProgress.GetForUpdate(ctx, tx, sub.StudentID, quiz.ID)
	if err != nil {
		return nil, err
	}

	taken, err := r.attempts.Count(ctx, tx, sub.StudentID, quiz.ID)
	if err != nil {
		return nil, err
	}
	if quiz.AttemptsAllowed > 0 && taken >= quiz.AttemptsAllowed {
		return nil, &errs.QuotaExceededError{
			StudentID: sub.StudentID,
			QuizID:    quiz.ID,
			Allowed:   quiz.AttemptsAllowed,
		}
	}

	attempt := &models.QuizAttempt{
		StudentID:      sub.StudentID,
		QuizID:         quiz.ID,
		AttemptNumber:  taken + 1,
		Score:          score,
		CompletionDate: sub.SubmittedAt,
	}
	if err := r.attempts.Create(ctx, tx, attempt); err != nil {
		return nil, err
	}

	for _, p := range prepared {
		p.Submission.AttemptID = attempt.ID
		if _, err := r.recorder.CommitTx(ctx, tx, p); err != nil {
			return nil, err
		}
	}

	if progress == nil {
		progress = &models.QuizProgress{StudentID: sub.StudentID, QuizID: quiz.ID}
	}
	progress.AccuracyRate = runningMean(progress.AccuracyRate, progress.Attempts, score)
	progress.Attempts++
	progress.Score = score
	progress.TimeSpent += sub.TimeSpent
	progress.LastCompleted = sub.SubmittedAt
	if err := r.quizProgress.Upsert(ctx, tx, progress); err != nil {
		return nil, err
	}

	if quiz.LessonID != 0 {
		passed := score >= r.passThreshold
		if err := r.updateLessonTx(ctx, tx, sub.StudentID, quiz.LessonID, sub.SubmittedAt, passed, false); err != nil {
			return nil, err
		}
	}

	entry := &models.StudyHistory{
		SessionID:   sub.SessionID,
		StudentID:   sub.StudentID,
		LessonID:    quiz.LessonID,
		QuizID:      quiz.ID,
		ContentType: models.ContentQuiz,
		TimeSpent:   sub.TimeSpent,
		SuccessRate: score,
		SessionDate: sub.SubmittedAt,
	}
	if err := r.history.Create(ctx, tx, entry); err != nil {
		return nil, err
	}

	return attempt, nil
}

// MarkLessonViewed records the external "lesson content viewed" signal
// and re-evaluates full completion. Safe to call repeatedly.
func (r *Roller) MarkLessonViewed(ctx context.Context, studentID, lessonID int64, viewedAt time.Time) error {
	lessons := database.NewLessonRepository()
	if _, err := lessons.GetByID(ctx, lessonID); err != nil {
		return err
	}
	return database.WithRetry(ctx, func() error {
		return database.WithTx(ctx, func(tx *sqlx.Tx) error {
			return r.updateLessonTx(ctx, tx, studentID, lessonID, viewedAt, false, true)
		})
	})
}

// updateLessonTx folds a quiz pass or a lesson-viewed signal into the
// lesson progress row. The completion date is stamped exactly once, on
// the first transition to fully complete, and never overwritten.
func (r *Roller) updateLessonTx(ctx context.Context, tx *sqlx.Tx, studentID, lessonID int64, at time.Time, quizPassed, lessonViewed bool) error {
	progress, err := r.lessonProgress.GetForUpdate(ctx, tx, studentID, lessonID)
	if err != nil {
		return err
	}
	if progress == nil {
		progress = &models.LessonProgress{
			StudentID: studentID,
			LessonID:  lessonID,
			StartDate: at,
		}
	}
	if quizPassed {
		progress.QuizCompleted = true
	}
	if lessonViewed {
		progress.LessonCompleted = true
	}
	if progress.FullyComplete() && progress.CompletionDate == nil {
		stamp := at
		progress.CompletionDate = &stamp
	}
	return r.lessonProgress.Upsert(ctx, tx, progress)
}

// runningMean folds one more sample into a mean over n samples
func runningMean(mean float64, n int, sample float64) float64 {
	return (mean*float64(n) + sample) / float64(n+1)
}

// roundScore fixes scores to two decimal places
func roundScore(score float64) float64 {
	return math.Round(score*100) / 100
}
