package duckdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mbebench/internal/evaluation"
	"mbebench/internal/question"
	"mbebench/internal/report"
)

// Ingest writes a run artifact into the database. Providers and questions are
// deduplicated by content fingerprint; re-ingesting the same run is a no-op.
func Ingest(ctx context.Context, db *sql.DB, results report.Results) error {
	if db == nil {
		return errors.New("duckdb: db is nil")
	}
	if results.RunID == "" {
		return errors.New("duckdb: run id is required")
	}
	if err := EnsureSchema(ctx, db); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ingest: %w", err)
	}
	if err := ingestTx(ctx, tx, results); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ingest: %w", err)
	}
	return nil
}

func ingestTx(ctx context.Context, tx execQuerier, results report.Results) error {
	if err := insertRun(ctx, tx, results); err != nil {
		return err
	}

	providerIDs := make(map[string]string, len(results.Providers))
	for _, info := range providersFor(results) {
		id, err := upsertProvider(ctx, tx, info)
		if err != nil {
			return err
		}
		providerIDs[info.ID] = id
	}

	questionIDs := make(map[int]string, len(results.Questions))
	answers := make(map[int]question.Letter, len(results.Questions))
	for _, item := range results.Questions {
		id, err := upsertQuestion(ctx, tx, item)
		if err != nil {
			return err
		}
		questionIDs[item.ID] = id
		answers[item.ID] = item.CorrectAnswer
	}

	for _, attempt := range results.Attempts {
		providerID, ok := providerIDs[attempt.ProviderID]
		if !ok {
			return fmt.Errorf("attempt references unknown provider %q", attempt.ProviderID)
		}
		questionID, ok := questionIDs[attempt.QuestionID]
		if !ok {
			return fmt.Errorf("attempt references unknown question %d", attempt.QuestionID)
		}
		if err := insertAttempt(ctx, tx, results.RunID, questionID, providerID, attempt, answers[attempt.QuestionID]); err != nil {
			return err
		}
	}

	for _, score := range results.Summary.Providers {
		providerID, ok := providerIDs[score.ProviderID]
		if !ok {
			continue
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO provider_scores
  (run_id, provider_id, correct, incorrect, errors, total, accuracy)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT DO NOTHING`,
			results.RunID, providerID, score.Correct, score.Incorrect, score.Errors, score.Total, score.Accuracy,
		); err != nil {
			return fmt.Errorf("insert provider score %s: %w", score.ProviderID, err)
		}
	}

	for _, subject := range results.Summary.Subjects {
		for _, score := range subject.Providers {
			providerID, ok := providerIDs[score.ProviderID]
			if !ok {
				continue
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO subject_scores
  (run_id, provider_id, subject, correct, total)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT DO NOTHING`,
				results.RunID, providerID, string(subject.Subject), score.Correct, score.Total,
			); err != nil {
				return fmt.Errorf("insert subject score %s/%s: %w", score.ProviderID, subject.Subject, err)
			}
		}
	}
	return nil
}

func insertRun(ctx context.Context, db execQuerier, results report.Results) error {
	_, err := db.ExecContext(ctx, `INSERT INTO runs
  (run_id, started_at, finished_at, title, questions_file, ingested_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT DO NOTHING`,
		results.RunID,
		nullableTime(results.StartedAt),
		nullableTime(results.FinishedAt),
		nullableString(results.Title),
		nullableString(results.QuestionsFile),
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", results.RunID, err)
	}
	return nil
}

// providersFor returns provider metadata, synthesizing entries from attempts
// for artifacts written without it.
func providersFor(results report.Results) []evaluation.ProviderInfo {
	if len(results.Providers) > 0 {
		return results.Providers
	}
	seen := map[string]struct{}{}
	out := []evaluation.ProviderInfo{}
	for _, attempt := range results.Attempts {
		if _, ok := seen[attempt.ProviderID]; ok {
			continue
		}
		seen[attempt.ProviderID] = struct{}{}
		out = append(out, evaluation.ProviderInfo{ID: attempt.ProviderID, Model: attempt.Model})
	}
	return out
}

func upsertProvider(ctx context.Context, db execQuerier, info evaluation.ProviderInfo) (string, error) {
	spec, err := CanonicalJSON(info)
	if err != nil {
		return "", err
	}
	key := fingerprintBytes(spec)
	if _, err := db.ExecContext(ctx, `INSERT INTO providers
  (provider_id, provider_key, name, model, mode, spec, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (provider_key) DO NOTHING`,
		uuid.NewString(), key, info.ID, nullableString(info.Model), nullableString(info.Mode), string(spec), time.Now().UTC(),
	); err != nil {
		return "", fmt.Errorf("upsert provider %s: %w", info.ID, err)
	}
	id, err := lookupID(ctx, db, "providers", "provider_id", "provider_key", key)
	if err != nil {
		return "", fmt.Errorf("lookup provider %s: %w", info.ID, err)
	}
	return id, nil
}

func upsertQuestion(ctx context.Context, db execQuerier, item question.Question) (string, error) {
	spec, err := CanonicalJSON(item)
	if err != nil {
		return "", err
	}
	key := fingerprintBytes(spec)
	if _, err := db.ExecContext(ctx, `INSERT INTO questions
  (question_id, question_key, number, subject, correct_answer, spec, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (question_key) DO NOTHING`,
		uuid.NewString(), key, item.ID, string(item.Subject), string(item.CorrectAnswer), string(spec), time.Now().UTC(),
	); err != nil {
		return "", fmt.Errorf("upsert question %d: %w", item.ID, err)
	}
	id, err := lookupID(ctx, db, "questions", "question_id", "question_key", key)
	if err != nil {
		return "", fmt.Errorf("lookup question %d: %w", item.ID, err)
	}
	return id, nil
}

func insertAttempt(ctx context.Context, db execQuerier, runID, questionID, providerID string, attempt evaluation.Attempt, expected question.Letter) error {
	_, err := db.ExecContext(ctx, `INSERT INTO attempts
  (attempt_id, run_id, question_id, provider_id, letter, correct, error, error_kind, raw_response, duration_ms)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (run_id, question_id, provider_id) DO NOTHING`,
		uuid.NewString(),
		runID,
		questionID,
		providerID,
		string(attempt.Letter),
		attempt.Correct(expected),
		nullableString(attempt.Error),
		nullableString(string(attempt.ErrorKind)),
		nullableString(attempt.RawResponse),
		float64(attempt.Duration)/float64(time.Millisecond),
	)
	if err != nil {
		return fmt.Errorf("insert attempt q%d/%s: %w", attempt.QuestionID, attempt.ProviderID, err)
	}
	return nil
}
