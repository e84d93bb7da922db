package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"devmatch-service/internal/models"
)

// UserRepository abstracts profile, swipe history and match list reads.
type UserRepository interface {
	GetUser(ctx context.Context, userID string) (models.User, error)
	GetSwipes(ctx context.Context, userID string) ([]models.SwipeRecord, error)
	GetMatchProfiles(ctx context.Context, userID string) ([]models.MatchProfile, error)
	GetParticipants(ctx context.Context, userIDs []string) ([]models.ParticipantView, error)
	FindCandidates(ctx context.Context, userID string, filter models.CandidateFilter, limit int) ([]models.Candidate, error)
	UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (models.User, error)
	SetProfilePicture(ctx context.Context, userID string, url string) (models.User, error)
	SetOnlineStatus(ctx context.Context, userID string, online bool, at time.Time) error
}

const userColumns = `id, first_name, last_name, email, age, bio, skills, profile_picture, location,
    github, linkedin, experience_level, job_title, company, looking_for, is_online, last_seen,
    created_at, updated_at`

const candidateColumns = `id, first_name, last_name, age, bio, skills, profile_picture, location,
    github, linkedin, experience_level, job_title, company, looking_for, is_online, last_seen`

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// GetUser fetches a user by id.
func (r *UserRepo) GetUser(ctx context.Context, userID string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) || pqCode(err) == pqInvalidText {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// GetSwipes returns the user's swipes in the order they were made.
func (r *UserRepo) GetSwipes(ctx context.Context, userID string) ([]models.SwipeRecord, error) {
	var swipes []models.SwipeRecord
	err := r.db.SelectContext(ctx, &swipes, `SELECT user_id, target_id, action, swiped_at
        FROM swipes WHERE user_id=$1 ORDER BY seq ASC`, userID)
	return swipes, err
}

// GetMatchProfiles resolves the user's match list to profile projections.
func (r *UserRepo) GetMatchProfiles(ctx context.Context, userID string) ([]models.MatchProfile, error) {
	profiles := []models.MatchProfile{}
	err := r.db.SelectContext(ctx, &profiles, `SELECT u.id, u.first_name, u.last_name, u.profile_picture, u.bio, u.age
        FROM matches m JOIN users u ON u.id = m.match_id
        WHERE m.user_id=$1
        ORDER BY m.created_at ASC`, userID)
	return profiles, err
}

// GetParticipants loads the public identity of each id that exists.
func (r *UserRepo) GetParticipants(ctx context.Context, userIDs []string) ([]models.ParticipantView, error) {
	if len(userIDs) == 0 {
		return []models.ParticipantView{}, nil
	}
	var users []models.ParticipantView
	err := r.db.SelectContext(ctx, &users, `SELECT id, first_name, last_name, profile_picture, is_online, last_seen
        FROM users WHERE id = ANY($1)`, pq.Array(userIDs))
	return users, err
}

// FindCandidates returns users the caller has not swiped on yet that satisfy the filter.
func (r *UserRepo) FindCandidates(ctx context.Context, userID string, filter models.CandidateFilter, limit int) ([]models.Candidate, error) {
	query, args := buildCandidateQuery(userID, filter, limit)
	candidates := []models.Candidate{}
	err := r.db.SelectContext(ctx, &candidates, query, args...)
	return candidates, err
}

func buildCandidateQuery(userID string, filter models.CandidateFilter, limit int) (string, []any) {
	args := []any{userID}
	where := []string{
		"u.id <> $1",
		"NOT EXISTS (SELECT 1 FROM swipes s WHERE s.user_id = $1 AND s.target_id = u.id)",
	}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.MinAge > 0 {
		where = append(where, "u.age >= "+arg(filter.MinAge))
	}
	if filter.MaxAge > 0 {
		where = append(where, "u.age <= "+arg(filter.MaxAge))
	}
	if len(filter.Skills) > 0 {
		where = append(where, "u.skills && "+arg(pq.Array(filter.Skills))+"::text[]")
	}
	if filter.ExperienceLevel != "" {
		where = append(where, "u.experience_level = "+arg(string(filter.ExperienceLevel)))
	}
	if filter.Location != "" {
		where = append(where, "u.location ILIKE '%' || "+arg(escapeLike(filter.Location))+" || '%'")
	}
	if filter.LookingFor != "" {
		where = append(where, "u.looking_for = "+arg(string(filter.LookingFor)))
	}

	query := `SELECT ` + prefixColumns("u.", candidateColumns) + ` FROM users u WHERE ` +
		strings.Join(where, " AND ") +
		` ORDER BY u.created_at ASC, u.id ASC LIMIT ` + arg(limit)
	return query, args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func prefixColumns(prefix, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = prefix + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

// UpdateProfile applies the non-nil fields of update and returns the new profile.
func (r *UserRepo) UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (models.User, error) {
	if update.Empty() {
		return r.GetUser(ctx, userID)
	}

	args := []any{userID}
	var sets []string
	set := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s=$%d", column, len(args)))
	}
	if update.Bio != nil {
		set("bio", *update.Bio)
	}
	if update.Skills != nil {
		set("skills", pq.Array(*update.Skills))
	}
	if update.Location != nil {
		set("location", strings.TrimSpace(*update.Location))
	}
	if update.Github != nil {
		set("github", strings.TrimSpace(*update.Github))
	}
	if update.Linkedin != nil {
		set("linkedin", strings.TrimSpace(*update.Linkedin))
	}
	if update.ExperienceLevel != nil {
		set("experience_level", string(*update.ExperienceLevel))
	}
	if update.JobTitle != nil {
		set("job_title", strings.TrimSpace(*update.JobTitle))
	}
	if update.Company != nil {
		set("company", strings.TrimSpace(*update.Company))
	}
	if update.LookingFor != nil {
		set("looking_for", string(*update.LookingFor))
	}
	sets = append(sets, "updated_at=NOW()")

	var user models.User
	query := `UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE id=$1 RETURNING ` + userColumns
	err := r.db.GetContext(ctx, &user, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// SetProfilePicture stores the picture URL and returns the updated profile.
func (r *UserRepo) SetProfilePicture(ctx context.Context, userID string, url string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `UPDATE users SET profile_picture=$2, updated_at=NOW()
        WHERE id=$1 RETURNING `+userColumns, userID, url)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// SetOnlineStatus persists the presence flag and last-seen time.
func (r *UserRepo) SetOnlineStatus(ctx context.Context, userID string, online bool, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET is_online=$2, last_seen=$3 WHERE id=$1`, userID, online, at)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrUserNotFound
	}
	return nil
}
