package review

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/example/studybot/internal/database"
	"github.com/example/studybot/internal/spaced_repetition"
	"github.com/example/studybot/pkg/errs"
	"github.com/example/studybot/pkg/models"
)

// Submission is one answered-question event as received from the
// session boundary. Latency is optional; zero means not measured.
type Submission struct {
	StudentID   int64         `validate:"required,gt=0"`
	QuestionID  int64         `validate:"required,gt=0"`
	OptionID    int64         `validate:"required,gt=0"`
	AttemptID   int64         `validate:"gte=0"` // Quiz attempt linkage, zero for ad-hoc reviews
	SubmittedAt time.Time     `validate:"required"`
	Latency     time.Duration `validate:"gte=0"`
}

// Recorder validates answer submissions, derives review outcomes and
// applies them: one immutable answer row, the SM-2 schedule advance
// and the question tracking update, all in a single transaction per
// (student, question) pair.
type Recorder struct {
	students  *database.StudentRepository
	questions *database.QuestionRepository
	quizzes   *database.QuizRepository
	answers   *database.AnswerRepository
	schedules *database.ScheduleRepository
	tracking  *database.QuestionTrackingRepository
	validate  *validator.Validate
}

// NewRecorder creates a recorder over the shared repositories
func NewRecorder() *Recorder {
	return &Recorder{
		students:  database.NewStudentRepository(),
		questions: database.NewQuestionRepository(),
		quizzes:   database.NewQuizRepository(),
		answers:   database.NewAnswerRepository(),
		schedules: database.NewScheduleRepository(),
		tracking:  database.NewQuestionTrackingRepository(),
		validate:  validator.New(),
	}
}

// Prepared is a submission that passed validation and catalog lookup,
// ready to be committed.
type Prepared struct {
	Submission Submission
	Question   *models.Question
	Option     *models.Option
	Outcome    spaced_repetition.Outcome
}

// Prepare validates the submission against the catalog and derives
// the review outcome. No state is written.
func (r *Recorder) Prepare(ctx context.Context, sub Submission) (*Prepared, error) {
	if err := r.validate.Struct(sub); err != nil {
		return nil, &errs.IntegrityError{Reason: fmt.Sprintf("malformed submission: %v", err)}
	}

	if _, err := r.students.GetByID(ctx, sub.StudentID); err != nil {
		return nil, err
	}
	question, err := r.questions.GetByID(ctx, sub.QuestionID)
	if err != nil {
		return nil, err
	}
	option, err := r.questions.GetOptionByID(ctx, sub.OptionID)
	if err != nil {
		return nil, err
	}
	if option.QuestionID != question.ID {
		return nil, &errs.IntegrityError{
			Reason: fmt.Sprintf("option %d does not belong to question %d", option.ID, question.ID),
		}
	}

	quality := r.deriveQuality(ctx, question, option.IsCorrect, sub.Latency)

	return &Prepared{
		Submission: sub,
		Question:   question,
		Option:     option,
		Outcome: spaced_repetition.Outcome{
			StudentID:   sub.StudentID,
			QuestionID:  sub.QuestionID,
			Correct:     option.IsCorrect,
			Quality:     quality,
			SubmittedAt: sub.SubmittedAt,
		},
	}, nil
}

// deriveQuality maps raw correctness (and response latency, when
// measured) onto the 0-5 scale. Default policy: correct -> 4,
// incorrect -> 1. With latency and a per-question time budget from the
// quiz's estimated time, a fast correct answer rates 5 and a slow one 3.
func (r *Recorder) deriveQuality(ctx context.Context, question *models.Question, correct bool, latency time.Duration) spaced_repetition.Quality {
	if !correct {
		return spaced_repetition.QualityIncorrect
	}
	if latency <= 0 {
		return spaced_repetition.QualityCorrectHesitation
	}
	budget := r.questionBudget(ctx, question)
	if budget <= 0 {
		return spaced_repetition.QualityCorrectHesitation
	}
	switch {
	case latency <= budget/2:
		return spaced_repetition.QualityPerfect
	case latency > 2*budget:
		return spaced_repetition.QualityCorrectDifficult
	default:
		return spaced_repetition.QualityCorrectHesitation
	}
}

// questionBudget splits the quiz's estimated time evenly across its
// questions. Zero when the quiz carries no estimate.
func (r *Recorder) questionBudget(ctx context.Context, question *models.Question) time.Duration {
	quiz, err := r.quizzes.GetByID(ctx, question.QuizID)
	if err != nil || quiz.EstimatedTime <= 0 {
		return 0
	}
	questions, err := r.questions.GetByQuiz(ctx, quiz.ID)
	if err != nil || len(questions) == 0 {
		return 0
	}
	return time.Duration(quiz.EstimatedTime) * time.Minute / time.Duration(len(questions))
}

// CommitTx applies a prepared outcome inside the caller's transaction:
// appends the answer row, advances the schedule under the row lock and
// folds the tracking counters. The three writes land together or not
// at all.
func (r *Recorder) CommitTx(ctx context.Context, tx *sqlx.Tx, prepared *Prepared) (*models.Schedule, error) {
	prev, err := r.schedules.GetForUpdate(ctx, tx, prepared.Outcome.StudentID, prepared.Outcome.QuestionID)
	if err != nil {
		return nil, err
	}
	next := spaced_repetition.Advance(prev, prepared.Outcome)
	if err := r.schedules.Upsert(ctx, tx, &next); err != nil {
		return nil, err
	}

	answer := &models.Answer{
		AttemptID:  prepared.Submission.AttemptID,
		StudentID:  prepared.Outcome.StudentID,
		QuestionID: prepared.Outcome.QuestionID,
		OptionID:   prepared.Option.ID,
		IsCorrect:  prepared.Outcome.Correct,
		ReviewedAt: prepared.Outcome.SubmittedAt,
		NextReview: next.DueDate,
	}
	if err := r.answers.Create(ctx, tx, answer); err != nil {
		return nil, err
	}

	err = r.tracking.Apply(ctx, tx,
		prepared.Outcome.StudentID, prepared.Outcome.QuestionID,
		prepared.Outcome.Correct, prepared.Outcome.SubmittedAt, next.DueDate)
	if err != nil {
		return nil, err
	}
	return &next, nil
}

// RecordAnswer is the single-answer entry point: prepare, then commit
// in its own transaction with bounded retry on transient storage
// failures.
func (r *Recorder) RecordAnswer(ctx context.Context, sub Submission) (*spaced_repetition.Outcome, error) {
	prepared, err := r.Prepare(ctx, sub)
	if err != nil {
		return nil, err
	}
	err = database.WithRetry(ctx, func() error {
		return database.WithTx(ctx, func(tx *sqlx.Tx) error {
			_, err := r.CommitTx(ctx, tx, prepared)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return &prepared.Outcome, nil
}
