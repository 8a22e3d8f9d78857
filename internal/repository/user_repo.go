package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tam_website/internal/model"

	"github.com/jackc/pgx/v5"
)

// UserRepository defines operations for user data
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByPhone(ctx context.Context, phone string) (*model.User, error)
	FindByID(ctx context.Context, id int) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	UpdatePassword(ctx context.Context, id int, passwordHash string) error
	UpdateLastLogin(ctx context.Context, id int, at time.Time) error
	List(ctx context.Context, filters model.UserFilters) ([]model.User, int, error)
}

type userRepository struct {
	db DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `u.id, u.phone_number, u.password_hash, u.is_active, u.is_staff, u.is_superuser,
	u.is_author, u.is_seller, u.last_login, u.created_at, u.updated_at,
	p.id, p.kind, p.first_name, p.last_name`

const userFrom = ` FROM users u LEFT JOIN profiles p ON p.user_id = u.id`

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	var profileID *int
	var kind *string
	var firstName, lastName *string
	err := row.Scan(
		&u.ID, &u.PhoneNumber, &u.PasswordHash, &u.IsActive, &u.IsStaff, &u.IsSuperuser,
		&u.IsAuthor, &u.IsSeller, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt,
		&profileID, &kind, &firstName, &lastName,
	)
	if err != nil {
		return nil, err
	}
	if profileID != nil {
		u.Profile = &model.Profile{ID: *profileID, UserID: u.ID, FirstName: firstName, LastName: lastName}
		if kind != nil {
			u.Profile.Kind = *kind
		}
	}
	return u, nil
}

// Create inserts a user together with its single profile
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		sql := `INSERT INTO users (phone_number, password_hash, is_active, is_staff, is_superuser, is_author, is_seller)
	            VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at, updated_at`
		err := tx.QueryRow(ctx, sql, user.PhoneNumber, user.PasswordHash, user.IsActive, user.IsStaff,
			user.IsSuperuser, user.IsAuthor, user.IsSeller).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("failed to create user: %w", ErrDuplicate)
			}
			return fmt.Errorf("failed to create user: %w", err)
		}
		return upsertProfile(ctx, tx, user)
	})
}

func upsertProfile(ctx context.Context, tx pgx.Tx, user *model.User) error {
	if user.Profile == nil {
		user.Profile = &model.Profile{}
	}
	user.Profile.UserID = user.ID
	user.Profile.Kind = user.ProfileKind()

	sql := `INSERT INTO profiles (user_id, kind, first_name, last_name) VALUES ($1, $2, $3, $4)
	        ON CONFLICT (user_id) DO UPDATE SET kind = EXCLUDED.kind, first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name
	        RETURNING id`
	err := tx.QueryRow(ctx, sql, user.ID, user.Profile.Kind, user.Profile.FirstName, user.Profile.LastName).Scan(&user.Profile.ID)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// FindByPhone retrieves a user by their phone number
func (r *userRepository) FindByPhone(ctx context.Context, phone string) (*model.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+userFrom+` WHERE u.phone_number = $1`, phone))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by phone: %w", err)
	}
	return user, nil
}

// FindByID retrieves a user by their ID
func (r *userRepository) FindByID(ctx context.Context, id int) (*model.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+userFrom+` WHERE u.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return user, nil
}

// Update writes account fields and syncs the profile kind and names
func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		sql := `UPDATE users SET phone_number = $1, is_active = $2, is_staff = $3, is_superuser = $4,
	            is_author = $5, is_seller = $6, updated_at = NOW()
	            WHERE id = $7 RETURNING updated_at`
		err := tx.QueryRow(ctx, sql, user.PhoneNumber, user.IsActive, user.IsStaff, user.IsSuperuser,
			user.IsAuthor, user.IsSeller, user.ID).Scan(&user.UpdatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			if isUniqueViolation(err) {
				return fmt.Errorf("failed to update user: %w", ErrDuplicate)
			}
			return fmt.Errorf("failed to update user: %w", err)
		}
		return upsertProfile(ctx, tx, user)
	})
}

func (r *userRepository) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, id int, at time.Time) error {
	if _, err := r.db.Exec(ctx, `UPDATE users SET last_login = $1 WHERE id = $2`, at, id); err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

func userFilterBuilder(filters model.UserFilters) *filterBuilder {
	b := &filterBuilder{}
	if filters.UserType != nil {
		switch *filters.UserType {
		case model.UserTypeSuperuser:
			b.add("u.is_superuser = TRUE")
		case model.UserTypeAuthor:
			b.add("u.is_author = TRUE")
		case model.UserTypeSeller:
			b.add("u.is_seller = TRUE")
		case model.UserTypeNormal:
			b.add("u.is_superuser = FALSE AND u.is_author = FALSE AND u.is_seller = FALSE")
		}
	}
	if filters.IsActive != nil {
		b.add("u.is_active = $%d", *filters.IsActive)
	}
	if filters.Search != nil {
		for _, word := range strings.Fields(*filters.Search) {
			b.add("(u.phone_number ILIKE $%[1]d OR p.first_name ILIKE $%[1]d OR p.last_name ILIKE $%[1]d)", likePattern(word))
		}
	}
	return b
}

// List returns one page of users and the total count for the filters
func (r *userRepository) List(ctx context.Context, filters model.UserFilters) ([]model.User, int, error) {
	b := userFilterBuilder(filters)

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*)`+userFrom+b.where(), b.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	limit, args := b.limitOffset(filters.Page.Limit(), filters.Page.Offset())
	sql := `SELECT ` + userColumns + userFrom + b.where() + ` ORDER BY u.created_at DESC, u.id DESC` + limit

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, *u)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, total, nil
}
