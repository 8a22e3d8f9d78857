package repository

import (
	"context"
	"errors"
	"fmt"

	"tam_website/internal/model"

	"github.com/jackc/pgx/v5"
)

type PlayerRepository interface {
	Create(ctx context.Context, player *model.Player) error
	Update(ctx context.Context, player *model.Player) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*model.Player, error)
	List(ctx context.Context, filters model.NameFilters) ([]model.Player, int, error)
	NameExists(ctx context.Context, lang, name string, excludeID int64) (bool, error)
}

type playerRepository struct {
	db DB
}

func NewPlayerRepository(db DB) PlayerRepository {
	return &playerRepository{db: db}
}

const playerColumns = `p.id, p.image_key, p.image_url, p.number, p.position, p.goals, p.games, p.created_at`

func scanPlayer(row pgx.Row) (*model.Player, error) {
	p := &model.Player{Translations: model.Translations[model.NameTranslation]{}}
	if err := row.Scan(&p.ID, &p.ImageKey, &p.ImageURL, &p.Number, &p.Position, &p.Goals, &p.Games, &p.CreatedAt); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *playerRepository) Create(ctx context.Context, player *model.Player) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		sql := `INSERT INTO players (image_key, image_url, number, position, goals, games)
	            VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`
		err := tx.QueryRow(ctx, sql, player.ImageKey, player.ImageURL, player.Number, player.Position,
			player.Goals, player.Games).Scan(&player.ID, &player.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create player: %w", err)
		}
		return saveNameTranslations(ctx, tx, playerTranslations, player.ID, player.Translations)
	})
}

func (r *playerRepository) Update(ctx context.Context, player *model.Player) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		sql := `UPDATE players SET image_key = $1, image_url = $2, number = $3, position = $4, goals = $5, games = $6
	            WHERE id = $7`
		cmdTag, err := tx.Exec(ctx, sql, player.ImageKey, player.ImageURL, player.Number, player.Position,
			player.Goals, player.Games, player.ID)
		if err != nil {
			return fmt.Errorf("failed to update player: %w", err)
		}
		if cmdTag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return saveNameTranslations(ctx, tx, playerTranslations, player.ID, player.Translations)
	})
}

func (r *playerRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "players", id)
}

func (r *playerRepository) FindByID(ctx context.Context, id int64) (*model.Player, error) {
	player, err := scanPlayer(r.db.QueryRow(ctx, `SELECT `+playerColumns+` FROM players p WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find player by ID: %w", err)
	}
	translations, err := loadNameTranslations(ctx, r.db, playerTranslations, []int64{id})
	if err != nil {
		return nil, err
	}
	if tr, ok := translations[id]; ok {
		player.Translations = tr
	}
	return player, nil
}

func (r *playerRepository) List(ctx context.Context, filters model.NameFilters) ([]model.Player, int, error) {
	b := &filterBuilder{}
	if filters.Position != nil && *filters.Position != "" {
		b.add("p.position = $%d", *filters.Position)
	}
	if filters.Search != nil && *filters.Search != "" {
		b.add(playerTranslations.searchCondition("p", "name"), filters.Lang, likePattern(*filters.Search))
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM players p`+b.where(), b.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count players: %w", err)
	}

	limit, args := b.limitOffset(filters.Page.Limit(), filters.Page.Offset())
	rows, err := r.db.Query(ctx, `SELECT `+playerColumns+` FROM players p`+b.where()+` ORDER BY p.number ASC, p.id ASC`+limit, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	var players []model.Player
	var ids []int64
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan player row: %w", err)
		}
		players = append(players, *p)
		ids = append(ids, p.ID)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating player rows: %w", err)
	}
	rows.Close()

	translations, err := loadNameTranslations(ctx, r.db, playerTranslations, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range players {
		if tr, ok := translations[players[i].ID]; ok {
			players[i].Translations = tr
		}
	}
	return players, total, nil
}

func (r *playerRepository) NameExists(ctx context.Context, lang, name string, excludeID int64) (bool, error) {
	return playerTranslations.exists(ctx, r.db, "name", lang, name, excludeID)
}
