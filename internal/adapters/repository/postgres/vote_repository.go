package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/hanvote/regionvote/internal/core/domain"
	"github.com/hanvote/regionvote/internal/core/ports"
)

type voteRepository struct {
	db *sql.DB
}

func NewVoteRepository(db *sql.DB) ports.VoteRepository {
	return &voteRepository{
		db: db,
	}
}

const voteColumns = `
	id, topic_id, option_id, user_id, guest_token, school_id,
	aggregate_school_id, birth_year, gender, province_code,
	municipality_code, merged_from_guest, created_at
`

func (r *voteRepository) Insert(ctx context.Context, vote *domain.Vote) error {
	query := `
		INSERT INTO votes (id, topic_id, option_id, user_id, guest_token,
			school_id, aggregate_school_id, birth_year, gender,
			province_code, municipality_code)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9, NULLIF($10, ''), NULLIF($11, ''))
	`
	_, err := r.db.ExecContext(ctx, query,
		vote.ID, vote.TopicID, vote.OptionID, vote.UserID, vote.GuestToken,
		vote.SchoolID, vote.AggregateSchoolID, vote.BirthYear, vote.Gender,
		vote.ProvinceCode, vote.MunicipalityCode,
	)
	if err != nil {
		if isUniqueViolation(err, "votes_topic_user_unique", "votes_topic_guest_unique") {
			return domain.ErrDuplicateVote
		}
		return fmt.Errorf("failed to save vote: %w", err)
	}
	return nil
}

func (r *voteRepository) FindByTopicAndUser(ctx context.Context, topicID, userID uuid.UUID) (*domain.Vote, error) {
	query := `
		SELECT ` + voteColumns + `
		FROM votes
		WHERE topic_id = $1 AND user_id = $2
	`
	vote, err := scanVote(r.db.QueryRowContext(ctx, query, topicID, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrVoteNotFound
		}
		return nil, fmt.Errorf("failed to find vote: %w", err)
	}
	return vote, nil
}

func (r *voteRepository) FindByTopicAndGuest(ctx context.Context, topicID uuid.UUID, guestToken string) (*domain.Vote, error) {
	query := `
		SELECT ` + voteColumns + `
		FROM votes
		WHERE topic_id = $1 AND guest_token = $2
	`
	vote, err := scanVote(r.db.QueryRowContext(ctx, query, topicID, guestToken))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrVoteNotFound
		}
		return nil, fmt.Errorf("failed to find vote: %w", err)
	}
	return vote, nil
}

func (r *voteRepository) ListByGuest(ctx context.Context, guestToken string) ([]*domain.Vote, error) {
	query := `
		SELECT ` + voteColumns + `
		FROM votes
		WHERE guest_token = $1
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, guestToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list guest votes: %w", err)
	}
	defer rows.Close()

	var votes []*domain.Vote
	for rows.Next() {
		vote, err := scanVote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		votes = append(votes, vote)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating votes: %w", err)
	}
	return votes, nil
}

func (r *voteRepository) Reassign(ctx context.Context, voteID, userID uuid.UUID) error {
	query := `
		UPDATE votes
		SET user_id = $2, guest_token = NULL, merged_from_guest = TRUE
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, voteID, userID)
	if err != nil {
		if isUniqueViolation(err, "votes_topic_user_unique") {
			return domain.ErrDuplicateVote
		}
		return fmt.Errorf("failed to reassign vote: %w", err)
	}
	return nil
}

func (r *voteRepository) Delete(ctx context.Context, voteID uuid.UUID) error {
	query := `DELETE FROM votes WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, voteID)
	if err != nil {
		return fmt.Errorf("failed to delete vote: %w", err)
	}
	return nil
}

// ListPageByTopic joins each vote with its school's region codes. The join
// always yields at most one school row per vote, so aggregation consumes
// a single optional code pair.
func (r *voteRepository) ListPageByTopic(ctx context.Context, topicID uuid.UUID, limit, offset int) ([]ports.VoteWithSchoolRegion, error) {
	query := `
		SELECT v.id, v.topic_id, v.option_id, v.user_id, v.guest_token,
			v.school_id, v.aggregate_school_id, v.birth_year, v.gender,
			v.province_code, v.municipality_code, v.merged_from_guest, v.created_at,
			COALESCE(s.province_code, ''), COALESCE(s.municipality_code, '')
		FROM votes v
		LEFT JOIN schools s ON s.id = v.school_id
		WHERE v.topic_id = $1
		ORDER BY v.created_at, v.id
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, query, topicID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to page votes: %w", err)
	}
	defer rows.Close()

	var page []ports.VoteWithSchoolRegion
	for rows.Next() {
		var (
			vote         domain.Vote
			userID       uuid.NullUUID
			guestToken   sql.NullString
			province     sql.NullString
			municipality sql.NullString
			row          ports.VoteWithSchoolRegion
		)
		err := rows.Scan(
			&vote.ID, &vote.TopicID, &vote.OptionID, &userID, &guestToken,
			&vote.SchoolID, &vote.AggregateSchoolID, &vote.BirthYear,
			&vote.Gender, &province, &municipality, &vote.MergedFromGuest,
			&vote.CreatedAt, &row.SchoolProvinceCode, &row.SchoolMunicipalityCode,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vote page: %w", err)
		}
		if userID.Valid {
			vote.UserID = &userID.UUID
		}
		vote.GuestToken = guestToken.String
		vote.ProvinceCode = province.String
		vote.MunicipalityCode = municipality.String
		row.Vote = vote
		page = append(page, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vote page: %w", err)
	}
	return page, nil
}

func scanVote(row rowScanner) (*domain.Vote, error) {
	var (
		vote         domain.Vote
		userID       uuid.NullUUID
		guestToken   sql.NullString
		province     sql.NullString
		municipality sql.NullString
	)
	err := row.Scan(
		&vote.ID, &vote.TopicID, &vote.OptionID, &userID, &guestToken,
		&vote.SchoolID, &vote.AggregateSchoolID, &vote.BirthYear,
		&vote.Gender, &province, &municipality, &vote.MergedFromGuest,
		&vote.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		vote.UserID = &userID.UUID
	}
	vote.GuestToken = guestToken.String
	vote.ProvinceCode = province.String
	vote.MunicipalityCode = municipality.String
	return &vote, nil
}
