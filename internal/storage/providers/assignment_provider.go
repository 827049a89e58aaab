package providers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"evalboard/internal/domains"
	"evalboard/internal/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AssignmentProvider struct {
	db *pgxpool.Pool
}

func NewAssignmentProvider(db *pgxpool.Pool) *AssignmentProvider {
	return &AssignmentProvider{
		db: db,
	}
}

const assignmentColumns = `
    id, owner_id, template_id, snapshot_version, form_snapshot_json,
    title, target_user, department, status, anonymous,
    starts_at, ends_at, created_at`

func (s *AssignmentProvider) SaveAssignment(ctx context.Context, assignment domains.AssignmentToSave, generator domains.InviteTokenGenerator) (domains.Assignment, []domains.ReviewerInvitation, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return domains.Assignment{}, nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	insertAssignment := `
        INSERT INTO assignments (
            owner_id, template_id, snapshot_version, form_snapshot_json,
            title, target_user, department, status, anonymous, starts_at, ends_at
        )
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING` + assignmentColumns

	rows, err := tx.Query(ctx, insertAssignment,
		assignment.OwnerID,
		assignment.TemplateID,
		assignment.SnapshotVersion,
		assignment.FormSnapshotJSON,
		assignment.Title,
		assignment.TargetUser,
		assignment.Department,
		assignment.Status,
		assignment.Anonymous,
		assignment.StartsAt,
		assignment.EndsAt,
	)
	if err != nil {
		return domains.Assignment{}, nil, err
	}
	created, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.Assignment])
	if err != nil {
		return domains.Assignment{}, nil, fmt.Errorf("insert assignment: %w", err)
	}

	invitations := make([]domains.ReviewerInvitation, 0, len(assignment.Reviewers))
	insertInvite := `
        INSERT INTO reviewer_invites (assignment_id, full_name, email, state, invited_by)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id`

	for _, reviewer := range assignment.Reviewers {
		var inviteID int64
		if err := tx.QueryRow(ctx, insertInvite,
			created.ID,
			reviewer.FullName,
			reviewer.Email,
			"invited",
			assignment.OwnerID,
		).Scan(&inviteID); err != nil {
			return domains.Assignment{}, nil, fmt.Errorf("insert invite: %w", err)
		}

		token, hash, expiresAt, err := generator(domains.InviteTokenPayload{
			AssignmentID:       created.ID,
			InviteID:           inviteID,
			OwnerID:            created.OwnerID,
			AssignmentStartsAt: created.StartsAt,
			AssignmentEndsAt:   created.EndsAt,
			Reviewer:           reviewer,
		})
		if err != nil {
			return domains.Assignment{}, nil, fmt.Errorf("generate token: %w", err)
		}

		if _, err := tx.Exec(ctx,
			`UPDATE reviewer_invites SET token_hash = $1, token_expires_at = $2 WHERE id = $3`,
			hash, expiresAt, inviteID,
		); err != nil {
			return domains.Assignment{}, nil, fmt.Errorf("update invite token: %w", err)
		}

		invitations = append(invitations, domains.ReviewerInvitation{
			InviteID:  inviteID,
			Token:     token,
			ExpiresAt: expiresAt,
			FullName:  reviewer.FullName,
			Email:     reviewer.Email,
		})
	}

	if err := tx.Commit(ctx); err != nil {
		return domains.Assignment{}, nil, fmt.Errorf("commit: %w", err)
	}
	return created, invitations, nil
}

func (s *AssignmentProvider) GetAllAssignmentsByOwner(ctx context.Context, ownerID int64) ([]domains.Assignment, error) {
	rows, err := s.db.Query(ctx,
		`SELECT`+assignmentColumns+`
         FROM assignments
         WHERE owner_id = $1
         ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return pgx.CollectRows(rows, pgx.RowToStructByName[domains.Assignment])
}

func (s *AssignmentProvider) GetAssignmentByID(ctx context.Context, ownerID, assignmentID int64) (domains.Assignment, error) {
	rows, err := s.db.Query(ctx,
		`SELECT`+assignmentColumns+`
         FROM assignments
         WHERE id = $1 AND owner_id = $2`, assignmentID, ownerID)
	if err != nil {
		return domains.Assignment{}, err
	}
	defer rows.Close()

	assignment, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.Assignment])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.Assignment{}, storage.ErrNotFound
		}
		return domains.Assignment{}, err
	}
	return assignment, nil
}

func (s *AssignmentProvider) GetAssignmentAccessByInviteID(ctx context.Context, inviteID int64) (domains.AssignmentAccess, error) {
	invite, err := s.GetInviteByID(ctx, inviteID)
	if err != nil {
		return domains.AssignmentAccess{}, err
	}

	rows, err := s.db.Query(ctx,
		`SELECT`+assignmentColumns+`
         FROM assignments
         WHERE id = $1`, invite.AssignmentID)
	if err != nil {
		return domains.AssignmentAccess{}, err
	}
	defer rows.Close()

	assignment, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.Assignment])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.AssignmentAccess{}, storage.ErrNotFound
		}
		return domains.AssignmentAccess{}, err
	}

	return domains.AssignmentAccess{Assignment: assignment, Invite: invite}, nil
}

func (s *AssignmentProvider) GetInviteByID(ctx context.Context, inviteID int64) (domains.ReviewerInvite, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, assignment_id, full_name, email, state,
                token_expires_at, use_limit, used_count, token_hash
         FROM reviewer_invites
         WHERE id = $1`, inviteID)
	if err != nil {
		return domains.ReviewerInvite{}, err
	}
	defer rows.Close()

	invite, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.ReviewerInvite])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.ReviewerInvite{}, storage.ErrNotFound
		}
		return domains.ReviewerInvite{}, err
	}
	return invite, nil
}

func (s *AssignmentProvider) ListInvitesByAssignmentID(ctx context.Context, ownerID, assignmentID int64) ([]domains.ReviewerInvite, error) {
	rows, err := s.db.Query(ctx,
		`SELECT i.id, i.assignment_id, i.full_name, i.email, i.state,
                i.token_expires_at, i.use_limit, i.used_count, i.token_hash
         FROM reviewer_invites i
         JOIN assignments a ON a.id = i.assignment_id
         WHERE i.assignment_id = $1 AND a.owner_id = $2
         ORDER BY i.id`, assignmentID, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return pgx.CollectRows(rows, pgx.RowToStructByName[domains.ReviewerInvite])
}

func (s *AssignmentProvider) AddInvite(ctx context.Context, assignmentID, ownerID int64, reviewer domains.ReviewerCreate, generator domains.InviteTokenGenerator) (domains.ReviewerInvitation, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return domains.ReviewerInvitation{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var assignment domains.Assignment
	rows, err := tx.Query(ctx,
		`SELECT`+assignmentColumns+`
         FROM assignments
         WHERE id = $1 AND owner_id = $2`, assignmentID, ownerID)
	if err != nil {
		return domains.ReviewerInvitation{}, err
	}
	assignment, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.Assignment])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.ReviewerInvitation{}, storage.ErrNotFound
		}
		return domains.ReviewerInvitation{}, err
	}

	var inviteID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO reviewer_invites (assignment_id, full_name, email, state, invited_by)
         VALUES ($1,$2,$3,$4,$5)
         RETURNING id`,
		assignmentID, reviewer.FullName, reviewer.Email, "invited", ownerID,
	).Scan(&inviteID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domains.ReviewerInvitation{}, storage.ErrConflict
		}
		return domains.ReviewerInvitation{}, fmt.Errorf("insert invite: %w", err)
	}

	token, hash, expiresAt, err := generator(domains.InviteTokenPayload{
		AssignmentID:       assignment.ID,
		InviteID:           inviteID,
		OwnerID:            assignment.OwnerID,
		AssignmentStartsAt: assignment.StartsAt,
		AssignmentEndsAt:   assignment.EndsAt,
		Reviewer:           reviewer,
	})
	if err != nil {
		return domains.ReviewerInvitation{}, err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE reviewer_invites SET token_hash = $1, token_expires_at = $2 WHERE id = $3`,
		hash, expiresAt, inviteID,
	); err != nil {
		return domains.ReviewerInvitation{}, fmt.Errorf("update invite token: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domains.ReviewerInvitation{}, fmt.Errorf("commit: %w", err)
	}

	return domains.ReviewerInvitation{
		InviteID:  inviteID,
		Token:     token,
		ExpiresAt: expiresAt,
		FullName:  reviewer.FullName,
		Email:     reviewer.Email,
	}, nil
}

func (s *AssignmentProvider) RemoveInvite(ctx context.Context, assignmentID, ownerID, inviteID int64) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM reviewer_invites i
         USING assignments a
         WHERE i.id = $1 AND i.assignment_id = $2
           AND a.id = i.assignment_id AND a.owner_id = $3`,
		inviteID, assignmentID, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *AssignmentProvider) UpdateInviteToken(ctx context.Context, inviteID int64, hash []byte, expiresAt time.Time) error {
	_, err := s.db.Exec(ctx,
		`UPDATE reviewer_invites SET token_hash = $1, token_expires_at = $2 WHERE id = $3`,
		hash, expiresAt, inviteID)
	return err
}

func (s *AssignmentProvider) GetAssignmentStatistics(ctx context.Context, ownerID, assignmentID int64) (domains.AssignmentStatisticsCounts, error) {
	var counts domains.AssignmentStatisticsCounts
	err := s.db.QueryRow(ctx, `
        SELECT
            (SELECT COUNT(*) FROM reviewer_invites i
             WHERE i.assignment_id = a.id) AS invited,
            (SELECT COUNT(*) FROM submissions sub
             WHERE sub.assignment_id = a.id) AS started,
            (SELECT COUNT(*) FROM submissions sub
             WHERE sub.assignment_id = a.id AND sub.state = 'submitted') AS submitted
        FROM assignments a
        WHERE a.id = $1 AND a.owner_id = $2`,
		assignmentID, ownerID,
	).Scan(&counts.InvitedCount, &counts.SubmissionsStarted, &counts.SubmissionsSubmitted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.AssignmentStatisticsCounts{}, storage.ErrNotFound
		}
		return domains.AssignmentStatisticsCounts{}, err
	}
	return counts, nil
}

func (s *AssignmentProvider) StartSubmission(ctx context.Context, assignmentID, inviteID int64, channel string) (domains.Submission, error) {
	rows, err := s.db.Query(ctx, `
        INSERT INTO submissions (id, assignment_id, invite_id, state, channel, started_at)
        VALUES ($1, $2, $3, 'draft', $4, NOW())
        ON CONFLICT (invite_id) DO UPDATE SET channel = EXCLUDED.channel
        RETURNING id, assignment_id, state, channel, started_at, submitted_at`,
		uuid.New(), assignmentID, inviteID, channel)
	if err != nil {
		return domains.Submission{}, err
	}
	defer rows.Close()

	return pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.Submission])
}

// SaveDraftAnswers replaces the invite's draft answer set wholesale. Partial
// updates never happen: each save is a full snapshot of the current answers.
func (s *AssignmentProvider) SaveDraftAnswers(ctx context.Context, assignmentID, inviteID int64, answers []domains.Answer) (domains.SubmissionResult, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return domains.SubmissionResult{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	submission, err := s.upsertSubmission(ctx, tx, assignmentID, inviteID, "draft", nil)
	if err != nil {
		return domains.SubmissionResult{}, err
	}

	saved, err := s.replaceAnswers(ctx, tx, submission.ID, answers)
	if err != nil {
		return domains.SubmissionResult{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domains.SubmissionResult{}, fmt.Errorf("commit: %w", err)
	}
	return domains.SubmissionResult{Submission: submission, Answers: saved}, nil
}

func (s *AssignmentProvider) SubmitAnswers(ctx context.Context, payload domains.SubmissionToSave) (domains.SubmissionResult, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return domains.SubmissionResult{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	submittedAt := payload.SubmittedAt
	submission, err := s.upsertSubmission(ctx, tx, payload.AssignmentID, payload.InviteID, payload.State, &submittedAt)
	if err != nil {
		return domains.SubmissionResult{}, err
	}

	saved, err := s.replaceAnswers(ctx, tx, submission.ID, payload.Answers)
	if err != nil {
		return domains.SubmissionResult{}, err
	}

	if _, err := tx.Exec(ctx, `
        UPDATE reviewer_invites
        SET used_count = used_count + CASE WHEN $2 THEN 1 ELSE 0 END,
            state = CASE WHEN state IN ('invited','pending') THEN 'approved' ELSE state END
        WHERE id = $1`,
		payload.InviteID, payload.IncrementUsage,
	); err != nil {
		return domains.SubmissionResult{}, fmt.Errorf("update invite: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domains.SubmissionResult{}, fmt.Errorf("commit: %w", err)
	}
	return domains.SubmissionResult{Submission: submission, Answers: saved}, nil
}

func (s *AssignmentProvider) upsertSubmission(ctx context.Context, tx pgx.Tx, assignmentID, inviteID int64, state string, submittedAt *time.Time) (domains.Submission, error) {
	rows, err := tx.Query(ctx, `
        INSERT INTO submissions (id, assignment_id, invite_id, state, started_at, submitted_at)
        VALUES ($1, $2, $3, $4, NOW(), $5)
        ON CONFLICT (invite_id) DO UPDATE
            SET state = EXCLUDED.state, submitted_at = EXCLUDED.submitted_at
        RETURNING id, assignment_id, state, channel, started_at, submitted_at`,
		uuid.New(), assignmentID, inviteID, state, submittedAt)
	if err != nil {
		return domains.Submission{}, err
	}
	defer rows.Close()

	submission, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.Submission])
	if err != nil {
		return domains.Submission{}, fmt.Errorf("upsert submission: %w", err)
	}
	return submission, nil
}

func (s *AssignmentProvider) replaceAnswers(ctx context.Context, tx pgx.Tx, submissionID uuid.UUID, answers []domains.Answer) ([]domains.Answer, error) {
	if _, err := tx.Exec(ctx,
		`DELETE FROM submission_answers WHERE submission_id = $1`, submissionID); err != nil {
		return nil, fmt.Errorf("clear answers: %w", err)
	}

	saved := make([]domains.Answer, 0, len(answers))
	for _, answer := range answers {
		if answer.QuestionID == "" {
			continue
		}
		if _, err := tx.Exec(ctx, `
            INSERT INTO submission_answers (
                submission_id, question_id, value_bool, value_number,
                value_text, option_key, numeric_value
            ) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			submissionID,
			answer.QuestionID,
			answer.ValueBool,
			answer.ValueNumber,
			answer.ValueText,
			answer.OptionKey,
			answer.NumericValue,
		); err != nil {
			return nil, fmt.Errorf("insert answer: %w", err)
		}
		saved = append(saved, answer)
	}
	return saved, nil
}

func (s *AssignmentProvider) GetSubmissionByInviteID(ctx context.Context, inviteID int64) (domains.SubmissionResult, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, assignment_id, state, channel, started_at, submitted_at
         FROM submissions
         WHERE invite_id = $1`, inviteID)
	if err != nil {
		return domains.SubmissionResult{}, err
	}
	submission, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.Submission])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.SubmissionResult{}, storage.ErrNotFound
		}
		return domains.SubmissionResult{}, err
	}

	answers, err := s.listAnswers(ctx, submission.ID)
	if err != nil {
		return domains.SubmissionResult{}, err
	}
	return domains.SubmissionResult{Submission: submission, Answers: answers}, nil
}

func (s *AssignmentProvider) GetSubmissionAnswers(ctx context.Context, ownerID, assignmentID int64, submissionID uuid.UUID) ([]domains.Answer, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM submissions sub
            JOIN assignments a ON a.id = sub.assignment_id
            WHERE sub.id = $1 AND sub.assignment_id = $2 AND a.owner_id = $3
        )`, submissionID, assignmentID, ownerID).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, storage.ErrNotFound
	}
	return s.listAnswers(ctx, submissionID)
}

// ListSubmittedAnswerSets returns the answers of every submitted submission
// for the assignment, grouped per submission. The query deliberately selects
// no invite or reviewer columns: aggregate consumers work on de-identified
// answer streams.
func (s *AssignmentProvider) ListSubmittedAnswerSets(ctx context.Context, ownerID, assignmentID int64) ([][]domains.Answer, error) {
	rows, err := s.db.Query(ctx, `
        SELECT sub.id,
               ans.question_id, ans.value_bool, ans.value_number,
               ans.value_text, ans.option_key, ans.numeric_value
        FROM submissions sub
        JOIN assignments a ON a.id = sub.assignment_id
        LEFT JOIN submission_answers ans ON ans.submission_id = sub.id
        WHERE sub.assignment_id = $1 AND a.owner_id = $2 AND sub.state = 'submitted'
        ORDER BY sub.id`, assignmentID, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sets [][]domains.Answer
	var current uuid.UUID
	for rows.Next() {
		var submissionID uuid.UUID
		var questionID *string
		answer := domains.Answer{}
		if err := rows.Scan(&submissionID, &questionID,
			&answer.ValueBool, &answer.ValueNumber,
			&answer.ValueText, &answer.OptionKey, &answer.NumericValue); err != nil {
			return nil, err
		}
		if len(sets) == 0 || submissionID != current {
			sets = append(sets, []domains.Answer{})
			current = submissionID
		}
		if questionID == nil {
			continue
		}
		answer.QuestionID = *questionID
		sets[len(sets)-1] = append(sets[len(sets)-1], answer)
	}
	return sets, rows.Err()
}

func (s *AssignmentProvider) listAnswers(ctx context.Context, submissionID uuid.UUID) ([]domains.Answer, error) {
	rows, err := s.db.Query(ctx,
		`SELECT question_id, value_bool, value_number, value_text, option_key, numeric_value
         FROM submission_answers
         WHERE submission_id = $1
         ORDER BY id`, submissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return pgx.CollectRows(rows, pgx.RowToStructByName[domains.Answer])
}

func (s *AssignmentProvider) ActivateScheduledAssignments(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `
        UPDATE assignments
        SET status = 'open'
        WHERE status = 'draft' AND starts_at IS NOT NULL AND starts_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *AssignmentProvider) ArchiveExpiredAssignments(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `
        UPDATE assignments
        SET status = 'archived'
        WHERE status IN ('draft','open','closed') AND ends_at IS NOT NULL AND ends_at < $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
