package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"

	"jobscout/internal/domain/user"
	"jobscout/internal/matcher"
	"jobscout/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// PreferenceView bundles preferences with the search titles derived from
// them.
type PreferenceView struct {
	Preferences user.Preferences `json:"preferences"`
	Titles      []string         `json:"extracted_titles"`
}

type PreferenceUsecase struct {
	prefs     repository.PreferenceRepository
	extractor *matcher.TitleExtractor
	log       *logrus.Logger
}

func NewPreferenceUsecase(prefs repository.PreferenceRepository, extractor *matcher.TitleExtractor, log *logrus.Logger) *PreferenceUsecase {
	return &PreferenceUsecase{prefs: prefs, extractor: extractor, log: log}
}

func (u *PreferenceUsecase) Get(ctx context.Context, userID uuid.UUID) (PreferenceView, error) {
	p, err := u.prefs.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrPreferencesNotFound) {
			return PreferenceView{}, ErrNotFound
		}
		return PreferenceView{}, err
	}

	view := PreferenceView{Preferences: p}
	if titles, err := u.prefs.GetTitles(ctx, userID); err == nil {
		view.Titles = titles.Titles
	}
	return view, nil
}

// Update stores the preferences and re-derives the search titles when roles
// or skills changed materially. Extraction failures keep the old titles.
func (u *PreferenceUsecase) Update(ctx context.Context, p user.Preferences) (PreferenceView, error) {
	if p.UserID == uuid.Nil || len(p.Roles) == 0 {
		return PreferenceView{}, ErrInvalidInput
	}

	previous, prevErr := u.prefs.Get(ctx, p.UserID)
	if prevErr != nil && !errors.Is(prevErr, repository.ErrPreferencesNotFound) {
		return PreferenceView{}, prevErr
	}

	saved, err := u.prefs.Upsert(ctx, p)
	if err != nil {
		return PreferenceView{}, err
	}

	view := PreferenceView{Preferences: saved}
	needsExtraction := prevErr != nil ||
		!sameSet(previous.Roles, saved.Roles) ||
		!sameSet(previous.Skills, saved.Skills)

	if needsExtraction && u.extractor != nil {
		titles, err := u.extractor.Extract(ctx, saved)
		if err != nil {
			u.log.WithError(err).WithField("user_id", p.UserID).Warn("title extraction failed, keeping previous titles")
		} else if err := u.prefs.SaveTitles(ctx, p.UserID, titles); err != nil {
			u.log.WithError(err).WithField("user_id", p.UserID).Warn("saving extracted titles failed")
		} else {
			view.Titles = titles
			return view, nil
		}
	}

	if titles, err := u.prefs.GetTitles(ctx, p.UserID); err == nil {
		view.Titles = titles.Titles
	}
	return view, nil
}

// sameSet compares case-insensitively and ignores order and duplicates.
func sameSet(a, b []string) bool {
	na, nb := normalizeSet(a), normalizeSet(b)
	if len(na) != len(nb) {
		return false
	}
	for i := range na {
		if na[i] != nb[i] {
			return false
		}
	}
	return true
}

func normalizeSet(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
