package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"

	"tam_website/internal/model"
	"tam_website/internal/repository"
	"tam_website/internal/storage"
)

const (
	msgPlayerNumber    = "Player number must be between 1 and 99."
	msgInvalidPosition = "Invalid position."
)

var playerNameTaken = map[string]string{
	model.LangFa: "بازیکنی با این نام فارسی در سیستم موجود است.",
	model.LangEn: "بازیکنی با این نام انگلیسی در سیستم موجود است.",
}

// PlayerService manages the squad
type PlayerService interface {
	List(ctx context.Context, filters model.NameFilters) ([]model.Player, int, error)
	Get(ctx context.Context, id int64) (*model.Player, error)
	Create(ctx context.Context, req model.PlayerRequest, image *multipart.FileHeader) (*model.Player, error)
	Update(ctx context.Context, id int64, req model.PlayerRequest, image *multipart.FileHeader) (*model.Player, error)
	Delete(ctx context.Context, id int64) (*model.Player, error)
}

type playerService struct {
	repo   repository.PlayerRepository
	store  storage.Storage
	logger *slog.Logger
}

func NewPlayerService(repo repository.PlayerRepository, store storage.Storage, logger *slog.Logger) PlayerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &playerService{repo: repo, store: store, logger: logger}
}

func (s *playerService) List(ctx context.Context, filters model.NameFilters) ([]model.Player, int, error) {
	if filters.Position != nil && !model.IsValidPosition(*filters.Position) {
		filters.Position = nil
	}
	return s.repo.List(ctx, filters)
}

func (s *playerService) Get(ctx context.Context, id int64) (*model.Player, error) {
	player, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if player == nil {
		return nil, ErrPlayerNotFound
	}
	return player, nil
}

func applyPlayerFields(player *model.Player, req model.PlayerRequest) error {
	if req.Number != nil {
		player.Number = *req.Number
	}
	if player.Number < 1 || player.Number > 99 {
		return newValidationError("number", msgPlayerNumber)
	}
	if req.Position != nil {
		player.Position = *req.Position
	}
	if !model.IsValidPosition(player.Position) {
		return newValidationError("position", msgInvalidPosition)
	}
	if req.Goals != nil {
		player.Goals = *req.Goals
	}
	if req.Games != nil {
		player.Games = *req.Games
	}
	return nil
}

func (s *playerService) Create(ctx context.Context, req model.PlayerRequest, image *multipart.FileHeader) (*model.Player, error) {
	player := &model.Player{Translations: model.Translations[model.NameTranslation]{}}
	if err := applyNames(ctx, player.Translations, req.NameFa, req.NameEn, 0, s.repo.NameExists, playerNameTaken); err != nil {
		return nil, err
	}
	if err := applyPlayerFields(player, req); err != nil {
		return nil, err
	}
	if image == nil {
		return nil, newValidationError("image", msgRequired)
	}
	return s.save(ctx, player, image, true)
}

func (s *playerService) Update(ctx context.Context, id int64, req model.PlayerRequest, image *multipart.FileHeader) (*model.Player, error) {
	player, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyNames(ctx, player.Translations, req.NameFa, req.NameEn, player.ID, s.repo.NameExists, playerNameTaken); err != nil {
		return nil, err
	}
	if err := applyPlayerFields(player, req); err != nil {
		return nil, err
	}
	return s.save(ctx, player, image, false)
}

func (s *playerService) save(ctx context.Context, player *model.Player, image *multipart.FileHeader, isNew bool) (*model.Player, error) {
	swap, err := swapImage(ctx, s.store, s.logger, "players", image, &player.ImageKey, &player.ImageURL)
	if err != nil {
		return nil, err
	}

	if isNew {
		err = s.repo.Create(ctx, player)
	} else {
		err = s.repo.Update(ctx, player)
	}
	if err != nil {
		swap.Rollback(ctx)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlayerNotFound
		}
		if verr := duplicateNameError(err, playerNameTaken); verr != nil {
			return nil, verr
		}
		return nil, fmt.Errorf("failed to save player: %w", err)
	}
	swap.Commit(ctx)
	return player, nil
}

func (s *playerService) Delete(ctx context.Context, id int64) (*model.Player, error) {
	player, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	deleteImage(ctx, s.store, s.logger, player.ImageKey)
	return player, nil
}
