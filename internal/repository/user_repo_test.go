package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"tam_website/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userColumnNames = []string{
	"id", "phone_number", "password_hash", "is_active", "is_staff", "is_superuser",
	"is_author", "is_seller", "last_login", "created_at", "updated_at",
	"profile_id", "kind", "first_name", "last_name",
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestUserRepository_FindByPhone(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	now := time.Now()

	mock.ExpectQuery("FROM users u LEFT JOIN profiles p ON p.user_id = u.id WHERE u.phone_number = \\$1").
		WithArgs("09121234567").
		WillReturnRows(pgxmock.NewRows(userColumnNames).AddRow(
			7, "09121234567", "hash", true, false, false,
			true, false, (*time.Time)(nil), now, now,
			intPtr(3), strPtr("author"), strPtr("Ali"), strPtr("Rezaei"),
		))

	user, err := repo.FindByPhone(context.Background(), "09121234567")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, 7, user.ID)
	assert.True(t, user.IsAuthor)
	require.NotNil(t, user.Profile)
	assert.Equal(t, model.ProfileKindAuthor, user.Profile.Kind)
	assert.Equal(t, "Ali Rezaei", user.Profile.FullName())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByPhone_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery("WHERE u.phone_number = \\$1").
		WithArgs("09120000000").
		WillReturnError(pgx.ErrNoRows)

	user, err := repo.FindByPhone(context.Background(), "09120000000")
	assert.NoError(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("09121234567", "hash", true, false, false, false, true).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(11, now, now))
	mock.ExpectQuery("INSERT INTO profiles").
		WithArgs(11, model.ProfileKindSeller, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectCommit()

	user := &model.User{PhoneNumber: "09121234567", PasswordHash: "hash", IsActive: true, IsSeller: true}
	err := repo.Create(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, 11, user.ID)
	require.NotNil(t, user.Profile)
	assert.Equal(t, 5, user.Profile.ID)
	assert.Equal(t, model.ProfileKindSeller, user.Profile.Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_DuplicatePhone(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &model.User{PhoneNumber: "09121234567", PasswordHash: "hash"})
	assert.True(t, errors.Is(err, ErrDuplicate))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdatePassword_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectExec("UPDATE users SET password_hash").
		WithArgs("newhash", 99).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdatePassword(context.Background(), 99, "newhash")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_List_WithFilters(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	now := time.Now()

	active := true
	search := "ali"
	userType := model.UserTypeAuthor
	filters := model.UserFilters{UserType: &userType, IsActive: &active, Search: &search, Page: model.NewPage(2, 5)}

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM users u LEFT JOIN profiles p ON p.user_id = u.id WHERE u.is_author = TRUE AND u.is_active = \\$1").
		WithArgs(true, "%ali%").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(6))
	mock.ExpectQuery("ORDER BY u.created_at DESC, u.id DESC LIMIT \\$3 OFFSET \\$4").
		WithArgs(true, "%ali%", 5, 5).
		WillReturnRows(pgxmock.NewRows(userColumnNames).AddRow(
			2, "09120000002", "hash", true, false, false,
			true, false, (*time.Time)(nil), now, now,
			nil, nil, nil, nil,
		))

	users, total, err := repo.List(context.Background(), filters)
	require.NoError(t, err)
	assert.Equal(t, 6, total)
	require.Len(t, users, 1)
	assert.Nil(t, users[0].Profile)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilterBuilder(t *testing.T) {
	b := &filterBuilder{}
	assert.Equal(t, "", b.where())

	b.add("a = $%d", 1)
	b.add("(b ILIKE $%[1]d OR c ILIKE $%[1]d)", "%x%")
	b.add("d IS NULL")

	assert.Equal(t, " WHERE a = $1 AND (b ILIKE $2 OR c ILIKE $2) AND d IS NULL", b.where())
	clause, args := b.limitOffset(8, 16)
	assert.Equal(t, " LIMIT $3 OFFSET $4", clause)
	assert.Equal(t, []interface{}{1, "%x%", 8, 16}, args)
	assert.Len(t, b.args, 2)
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, `%50\%\_off%`, likePattern("50%_off"))
}
