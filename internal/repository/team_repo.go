package repository

import (
	"context"
	"errors"
	"fmt"

	"tam_website/internal/model"

	"github.com/jackc/pgx/v5"
)

type TeamRepository interface {
	Create(ctx context.Context, team *model.Team) error
	Update(ctx context.Context, team *model.Team) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*model.Team, error)
	List(ctx context.Context, filters model.NameFilters) ([]model.Team, int, error)
	NameExists(ctx context.Context, lang, name string, excludeID int64) (bool, error)
	SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error)
}

type teamRepository struct {
	db DB
}

func NewTeamRepository(db DB) TeamRepository {
	return &teamRepository{db: db}
}

const teamColumns = `t.id, t.slug, t.image_key, t.image_url, t.created_at`

func scanTeam(row pgx.Row) (*model.Team, error) {
	t := &model.Team{Translations: model.Translations[model.NameTranslation]{}}
	if err := row.Scan(&t.ID, &t.Slug, &t.ImageKey, &t.ImageURL, &t.CreatedAt); err != nil {
		return nil, err
	}
	return t, nil
}

func saveNameTranslations(ctx context.Context, tx pgx.Tx, tt translationTable, id int64, tr model.Translations[model.NameTranslation]) error {
	for _, lang := range model.Languages {
		name := tr.Exact(lang)
		if err := tt.save(ctx, tx, id, lang, name.IsEmpty(), name.Name); err != nil {
			return err
		}
	}
	return nil
}

// loadNameTranslations returns the name translations of every id in ids.
func loadNameTranslations(ctx context.Context, db DB, tt translationTable, ids []int64) (map[int64]model.Translations[model.NameTranslation], error) {
	out := make(map[int64]model.Translations[model.NameTranslation], len(ids))
	err := tt.load(ctx, db, ids, func(rows pgx.Rows) error {
		var id int64
		var lang string
		var n model.NameTranslation
		if err := rows.Scan(&id, &lang, &n.Name); err != nil {
			return err
		}
		if out[id] == nil {
			out[id] = model.Translations[model.NameTranslation]{}
		}
		out[id][lang] = n
		return nil
	})
	return out, err
}

func (r *teamRepository) Create(ctx context.Context, team *model.Team) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		sql := `INSERT INTO teams (slug, image_key, image_url) VALUES ($1, $2, $3) RETURNING id, created_at`
		if err := tx.QueryRow(ctx, sql, team.Slug, team.ImageKey, team.ImageURL).Scan(&team.ID, &team.CreatedAt); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("failed to create team: %w", ErrDuplicate)
			}
			return fmt.Errorf("failed to create team: %w", err)
		}
		return saveNameTranslations(ctx, tx, teamTranslations, team.ID, team.Translations)
	})
}

func (r *teamRepository) Update(ctx context.Context, team *model.Team) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		sql := `UPDATE teams SET slug = $1, image_key = $2, image_url = $3 WHERE id = $4`
		cmdTag, err := tx.Exec(ctx, sql, team.Slug, team.ImageKey, team.ImageURL, team.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("failed to update team: %w", ErrDuplicate)
			}
			return fmt.Errorf("failed to update team: %w", err)
		}
		if cmdTag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return saveNameTranslations(ctx, tx, teamTranslations, team.ID, team.Translations)
	})
}

func (r *teamRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "teams", id)
}

func (r *teamRepository) FindByID(ctx context.Context, id int64) (*model.Team, error) {
	team, err := scanTeam(r.db.QueryRow(ctx, `SELECT `+teamColumns+` FROM teams t WHERE t.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find team by ID: %w", err)
	}
	translations, err := loadNameTranslations(ctx, r.db, teamTranslations, []int64{id})
	if err != nil {
		return nil, err
	}
	if tr, ok := translations[id]; ok {
		team.Translations = tr
	}
	return team, nil
}

func (r *teamRepository) List(ctx context.Context, filters model.NameFilters) ([]model.Team, int, error) {
	b := &filterBuilder{}
	if filters.Search != nil && *filters.Search != "" {
		b.add(teamTranslations.searchCondition("t", "name"), filters.Lang, likePattern(*filters.Search))
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM teams t`+b.where(), b.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count teams: %w", err)
	}

	limit, args := b.limitOffset(filters.Page.Limit(), filters.Page.Offset())
	rows, err := r.db.Query(ctx, `SELECT `+teamColumns+` FROM teams t`+b.where()+` ORDER BY t.created_at DESC, t.id DESC`+limit, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	var teams []model.Team
	var ids []int64
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan team row: %w", err)
		}
		teams = append(teams, *t)
		ids = append(ids, t.ID)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating team rows: %w", err)
	}
	rows.Close()

	translations, err := loadNameTranslations(ctx, r.db, teamTranslations, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range teams {
		if tr, ok := translations[teams[i].ID]; ok {
			teams[i].Translations = tr
		}
	}
	return teams, total, nil
}

func (r *teamRepository) NameExists(ctx context.Context, lang, name string, excludeID int64) (bool, error) {
	return teamTranslations.exists(ctx, r.db, "name", lang, name, excludeID)
}

func (r *teamRepository) SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	return slugExists(ctx, r.db, "teams", slug, excludeID)
}
