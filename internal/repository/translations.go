package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// translationTable describes a <entity>_translations table keyed by (fk, language_code).
type translationTable struct {
	table   string
	fk      string
	columns []string
}

var (
	articleTranslations  = translationTable{table: "article_translations", fk: "article_id", columns: []string{"title", "body"}}
	teamTranslations     = translationTable{table: "team_translations", fk: "team_id", columns: []string{"name"}}
	playerTranslations   = translationTable{table: "player_translations", fk: "player_id", columns: []string{"name"}}
	categoryTranslations = translationTable{table: "category_translations", fk: "category_id", columns: []string{"name", "description"}}
)

// save upserts the row for lang, or removes it when the translation is empty.
func (t translationTable) save(ctx context.Context, tx pgx.Tx, id int64, lang string, empty bool, values ...any) error {
	if empty {
		sql := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND language_code = $2`, t.table, t.fk)
		if _, err := tx.Exec(ctx, sql, id, lang); err != nil {
			return fmt.Errorf("failed to delete %s translation: %w", lang, err)
		}
		return nil
	}

	placeholders := make([]string, len(t.columns))
	updates := make([]string, len(t.columns))
	for i, col := range t.columns {
		placeholders[i] = fmt.Sprintf("$%d", i+3)
		updates[i] = col + " = EXCLUDED." + col
	}
	sql := fmt.Sprintf(`INSERT INTO %s (%s, language_code, %s) VALUES ($1, $2, %s)
	        ON CONFLICT (%s, language_code) DO UPDATE SET %s`,
		t.table, t.fk, strings.Join(t.columns, ", "), strings.Join(placeholders, ", "),
		t.fk, strings.Join(updates, ", "))

	args := append([]any{id, lang}, values...)
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("failed to save translation: %w", &DuplicateTranslationError{Lang: lang})
		}
		return fmt.Errorf("failed to save %s translation: %w", lang, err)
	}
	return nil
}

// load runs scan once per row; each row is (fk, language_code, columns...).
func (t translationTable) load(ctx context.Context, db DB, ids []int64, scan func(rows pgx.Rows) error) error {
	if len(ids) == 0 {
		return nil
	}
	sql := fmt.Sprintf(`SELECT %s, language_code, %s FROM %s WHERE %s = ANY($1)`,
		t.fk, strings.Join(t.columns, ", "), t.table, t.fk)

	rows, err := db.Query(ctx, sql, ids)
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", t.table, err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("failed to scan %s row: %w", t.table, err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating %s rows: %w", t.table, err)
	}
	return nil
}

// exists reports whether column equals value (case-insensitive) for another owner in lang.
func (t translationTable) exists(ctx context.Context, db DB, column, lang, value string, excludeID int64) (bool, error) {
	sql := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE language_code = $1 AND LOWER(%s) = LOWER($2) AND %s <> $3)`,
		t.table, column, t.fk)
	var exists bool
	if err := db.QueryRow(ctx, sql, lang, value, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check %s %s: %w", t.table, column, err)
	}
	return exists, nil
}

// searchCondition matches owners whose translation in lang contains the pattern.
func (t translationTable) searchCondition(alias, column string) string {
	return fmt.Sprintf(`EXISTS (SELECT 1 FROM %s tr WHERE tr.%s = %s.id AND tr.language_code = $%%d AND tr.%s ILIKE $%%d)`,
		t.table, t.fk, alias, column)
}

func slugExists(ctx context.Context, db DB, table, slug string, excludeID int64) (bool, error) {
	var exists bool
	sql := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE slug = $1 AND id <> $2)`, table)
	if err := db.QueryRow(ctx, sql, slug, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check %s slug: %w", table, err)
	}
	return exists, nil
}

func deleteByID(ctx context.Context, db DB, table string, id int64) error {
	cmdTag, err := db.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
