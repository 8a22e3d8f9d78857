package repository

import (
	"context"
	"errors"
	"fmt"

	"tam_website/internal/model"

	"github.com/jackc/pgx/v5"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	Update(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*model.Category, error)
	List(ctx context.Context, filters model.NameFilters) ([]model.Category, int, error)
	SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error)
}

type categoryRepository struct {
	db DB
}

func NewCategoryRepository(db DB) CategoryRepository {
	return &categoryRepository{db: db}
}

const categoryColumns = `c.id, c.slug, c.image_key, c.image_url, c.created_at`

func scanCategory(row pgx.Row) (*model.Category, error) {
	c := &model.Category{Translations: model.Translations[model.CategoryTranslation]{}}
	if err := row.Scan(&c.ID, &c.Slug, &c.ImageKey, &c.ImageURL, &c.CreatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *categoryRepository) saveTranslations(ctx context.Context, tx pgx.Tx, c *model.Category) error {
	for _, lang := range model.Languages {
		t := c.Translations.Exact(lang)
		if err := categoryTranslations.save(ctx, tx, c.ID, lang, t.IsEmpty(), t.Name, t.Description); err != nil {
			return err
		}
	}
	return nil
}

func (r *categoryRepository) loadTranslations(ctx context.Context, ids []int64) (map[int64]model.Translations[model.CategoryTranslation], error) {
	out := make(map[int64]model.Translations[model.CategoryTranslation], len(ids))
	err := categoryTranslations.load(ctx, r.db, ids, func(rows pgx.Rows) error {
		var id int64
		var lang string
		var t model.CategoryTranslation
		if err := rows.Scan(&id, &lang, &t.Name, &t.Description); err != nil {
			return err
		}
		if out[id] == nil {
			out[id] = model.Translations[model.CategoryTranslation]{}
		}
		out[id][lang] = t
		return nil
	})
	return out, err
}

func (r *categoryRepository) Create(ctx context.Context, category *model.Category) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		sql := `INSERT INTO categories (slug, image_key, image_url) VALUES ($1, $2, $3) RETURNING id, created_at`
		if err := tx.QueryRow(ctx, sql, category.Slug, category.ImageKey, category.ImageURL).Scan(&category.ID, &category.CreatedAt); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("failed to create category: %w", ErrDuplicate)
			}
			return fmt.Errorf("failed to create category: %w", err)
		}
		return r.saveTranslations(ctx, tx, category)
	})
}

func (r *categoryRepository) Update(ctx context.Context, category *model.Category) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		sql := `UPDATE categories SET slug = $1, image_key = $2, image_url = $3 WHERE id = $4`
		cmdTag, err := tx.Exec(ctx, sql, category.Slug, category.ImageKey, category.ImageURL, category.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("failed to update category: %w", ErrDuplicate)
			}
			return fmt.Errorf("failed to update category: %w", err)
		}
		if cmdTag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return r.saveTranslations(ctx, tx, category)
	})
}

func (r *categoryRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "categories", id)
}

func (r *categoryRepository) FindByID(ctx context.Context, id int64) (*model.Category, error) {
	category, err := scanCategory(r.db.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories c WHERE c.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find category by ID: %w", err)
	}
	translations, err := r.loadTranslations(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	if tr, ok := translations[id]; ok {
		category.Translations = tr
	}
	return category, nil
}

func (r *categoryRepository) List(ctx context.Context, filters model.NameFilters) ([]model.Category, int, error) {
	b := &filterBuilder{}
	if filters.Search != nil && *filters.Search != "" {
		b.add(categoryTranslations.searchCondition("c", "name"), filters.Lang, likePattern(*filters.Search))
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM categories c`+b.where(), b.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count categories: %w", err)
	}

	limit, args := b.limitOffset(filters.Page.Limit(), filters.Page.Offset())
	rows, err := r.db.Query(ctx, `SELECT `+categoryColumns+` FROM categories c`+b.where()+` ORDER BY c.created_at DESC, c.id DESC`+limit, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	var ids []int64
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan category row: %w", err)
		}
		categories = append(categories, *c)
		ids = append(ids, c.ID)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating category rows: %w", err)
	}
	rows.Close()

	translations, err := r.loadTranslations(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range categories {
		if tr, ok := translations[categories[i].ID]; ok {
			categories[i].Translations = tr
		}
	}
	return categories, total, nil
}

func (r *categoryRepository) SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	return slugExists(ctx, r.db, "categories", slug, excludeID)
}
