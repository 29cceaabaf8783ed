package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Salo-Quispe/backend-poli-path/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

const uniqueViolation = "23505"

// userColumns omits password_hash; only GetByEmailWithPassword selects it.
const userColumns = `id, name, lastname, email, is_active, is_verified, roles,
	recover_password_token, profile_image_name, profile_image_url, register_date`

type UserRepository struct {
	db *Connection
}

func NewUserRepository(db *Connection) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

func scanUser(row pgx.Row) (model.User, error) {
	var user model.User
	var roles []string
	err := row.Scan(
		&user.ID, &user.Name, &user.Lastname, &user.Email, &user.IsActive, &user.IsVerified,
		&roles, &user.RecoverPasswordToken, &user.ProfileImageName, &user.ProfileImageURL,
		&user.RegisterDate,
	)
	if err != nil {
		return model.User{}, err
	}
	for _, r := range roles {
		user.Roles = append(user.Roles, model.Role(r))
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`

	user, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

func (r *UserRepository) GetByEmailWithPassword(ctx context.Context, email string) (model.User, error) {
	var user model.User
	var roles []string
	query := `SELECT ` + userColumns + `, password_hash FROM users WHERE LOWER(email) = LOWER($1)`

	err := r.db.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Name, &user.Lastname, &user.Email, &user.IsActive, &user.IsVerified,
		&roles, &user.RecoverPasswordToken, &user.ProfileImageName, &user.ProfileImageURL,
		&user.RegisterDate, &user.PasswordHash,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}
	for _, role := range roles {
		user.Roles = append(user.Roles, model.Role(role))
	}

	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	query := `INSERT INTO users (id, name, lastname, email, password_hash, is_active, is_verified, roles, register_date)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING ` + userColumns

	saved, err := scanUser(r.db.QueryRow(ctx, query,
		user.ID, user.Name, user.Lastname, user.Email, user.PasswordHash,
		user.IsActive, user.IsVerified, model.RolesToStrings(user.Roles), user.RegisterDate,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.User{}, model.ErrEmailTaken
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return saved, nil
}

// Update writes only the fields set in the partial update. Unrelated
// columns are never touched.
func (r *UserRepository) Update(ctx context.Context, id uuid.UUID, update model.UserUpdate) (model.User, error) {
	var set []string
	var args []any

	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.PasswordHash != nil {
		add("password_hash", *update.PasswordHash)
	}
	if update.IsVerified != nil {
		add("is_verified", *update.IsVerified)
	}
	if update.IsActive != nil {
		add("is_active", *update.IsActive)
	}
	if update.Roles != nil {
		add("roles", model.RolesToStrings(update.Roles))
	}
	if update.ClearRecoverPasswordToken {
		set = append(set, "recover_password_token = NULL")
	} else if update.RecoverPasswordToken != nil {
		add("recover_password_token", *update.RecoverPasswordToken)
	}
	if update.ProfileImageName != nil {
		add("profile_image_name", *update.ProfileImageName)
	}
	if update.ProfileImageURL != nil {
		add("profile_image_url", *update.ProfileImageURL)
	}

	if len(set) == 0 {
		return r.GetByID(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING `+userColumns,
		strings.Join(set, ", "), len(args))

	user, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY register_date`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

// ListUnverifiedBefore returns accounts that never confirmed their email
// and were registered before the cutoff. Used by the cleanup sweep; the
// is_verified filter lives in the query so the sweep can never see a
// verified account.
func (r *UserRepository) ListUnverifiedBefore(ctx context.Context, cutoff time.Time) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE is_verified = FALSE AND register_date < $1`

	rows, err := r.db.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list unverified users: %w", err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

func collectUsers(rows pgx.Rows) ([]model.User, error) {
	var users []model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read users: %w", err)
	}
	return users, nil
}
