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

var teamNameTaken = map[string]string{
	model.LangFa: "تیمی با این نام فارسی در سیستم موجود است.",
	model.LangEn: "تیمی با این نام انگلیسی در سیستم موجود است.",
}

// TeamService manages teams and their logos
type TeamService interface {
	List(ctx context.Context, filters model.NameFilters) ([]model.Team, int, error)
	Get(ctx context.Context, id int64) (*model.Team, error)
	Create(ctx context.Context, req model.TeamRequest, image *multipart.FileHeader) (*model.Team, error)
	Update(ctx context.Context, id int64, req model.TeamRequest, image *multipart.FileHeader) (*model.Team, error)
	Delete(ctx context.Context, id int64) (*model.Team, error)
}

type teamService struct {
	repo   repository.TeamRepository
	store  storage.Storage
	logger *slog.Logger
}

func NewTeamService(repo repository.TeamRepository, store storage.Storage, logger *slog.Logger) TeamService {
	if logger == nil {
		logger = slog.Default()
	}
	return &teamService{repo: repo, store: store, logger: logger}
}

type nameChecker func(ctx context.Context, lang, name string, excludeID int64) (bool, error)

// applyNames merges the requested names into tr and checks both are set and free.
func applyNames(ctx context.Context, tr model.Translations[model.NameTranslation], nameFa, nameEn *string,
	excludeID int64, exists nameChecker, taken map[string]string) error {
	requested := map[string]*string{model.LangFa: nameFa, model.LangEn: nameEn}
	for _, lang := range model.Languages {
		if v := requested[lang]; v != nil {
			tr[lang] = model.NameTranslation{Name: *trimmed(v)}
		}
	}
	for _, lang := range model.Languages {
		name := tr.Exact(lang).Name
		if name == "" {
			return newValidationError("name_"+lang, msgRequired)
		}
		if requested[lang] == nil {
			continue
		}
		dup, err := exists(ctx, lang, name, excludeID)
		if err != nil {
			return err
		}
		if dup {
			return newValidationError("name_"+lang, taken[lang])
		}
	}
	return nil
}

func (s *teamService) List(ctx context.Context, filters model.NameFilters) ([]model.Team, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *teamService) Get(ctx context.Context, id int64) (*model.Team, error) {
	team, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, ErrTeamNotFound
	}
	return team, nil
}

func (s *teamService) Create(ctx context.Context, req model.TeamRequest, image *multipart.FileHeader) (*model.Team, error) {
	team := &model.Team{Translations: model.Translations[model.NameTranslation]{}}
	if err := applyNames(ctx, team.Translations, req.NameFa, req.NameEn, 0, s.repo.NameExists, teamNameTaken); err != nil {
		return nil, err
	}
	if image == nil {
		return nil, newValidationError("image", msgRequired)
	}
	return s.save(ctx, team, image, true, true)
}

func (s *teamService) Update(ctx context.Context, id int64, req model.TeamRequest, image *multipart.FileHeader) (*model.Team, error) {
	team, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	oldNameEn := team.Translations.Exact(model.LangEn).Name
	if err := applyNames(ctx, team.Translations, req.NameFa, req.NameEn, team.ID, s.repo.NameExists, teamNameTaken); err != nil {
		return nil, err
	}
	return s.save(ctx, team, image, false, team.Translations.Exact(model.LangEn).Name != oldNameEn)
}

// save writes the team; the slug follows name_en when reslug is set.
func (s *teamService) save(ctx context.Context, team *model.Team, image *multipart.FileHeader, isNew, reslug bool) (*model.Team, error) {
	if reslug {
		slug, err := uniqueSlug(ctx, team.Translations.Exact(model.LangEn).Name, team.ID, s.repo.SlugExists)
		if err != nil {
			return nil, err
		}
		team.Slug = slug
	}

	swap, err := swapImage(ctx, s.store, s.logger, "teams", image, &team.ImageKey, &team.ImageURL)
	if err != nil {
		return nil, err
	}

	if isNew {
		err = s.repo.Create(ctx, team)
	} else {
		err = s.repo.Update(ctx, team)
	}
	if err != nil {
		swap.Rollback(ctx)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTeamNotFound
		}
		if verr := duplicateNameError(err, teamNameTaken); verr != nil {
			return nil, verr
		}
		return nil, fmt.Errorf("failed to save team: %w", err)
	}
	swap.Commit(ctx)
	return team, nil
}

func (s *teamService) Delete(ctx context.Context, id int64) (*model.Team, error) {
	team, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	deleteImage(ctx, s.store, s.logger, team.ImageKey)
	return team, nil
}
