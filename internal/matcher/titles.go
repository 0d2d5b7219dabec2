package matcher

import (
	"context"
	"fmt"
	"strings"

	"jobscout/internal/domain/user"
	"jobscout/internal/llm"
)

const maxTitles = 3

const titleSystemPrompt = `You turn a candidate profile into job board search titles. ` +
	`Respond with up to three canonical job titles separated by commas, nothing else.`

// TitleExtractor derives the search keywords the scrapers use from a user's
// roles and skills.
type TitleExtractor struct {
	llm llm.Completer
}

func NewTitleExtractor(completer llm.Completer) *TitleExtractor {
	return &TitleExtractor{llm: completer}
}

func (e *TitleExtractor) Extract(ctx context.Context, p user.Preferences) ([]string, error) {
	prompt := fmt.Sprintf("Roles: %s\nSkills: %s\nYears of experience: %d",
		strings.Join(p.Roles, ", "),
		strings.Join(p.Skills, ", "),
		p.YearsOfExperience,
	)

	raw, err := e.llm.Complete(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: titleSystemPrompt},
		{Role: llm.RoleUser, Content: prompt},
	})
	if err != nil {
		return nil, err
	}

	titles := make([]string, 0, maxTitles)
	for _, part := range strings.Split(llm.StripFences(raw), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		titles = append(titles, part)
		if len(titles) == maxTitles {
			break
		}
	}
	if len(titles) == 0 {
		return nil, fmt.Errorf("%w: no titles in %q", ErrMalformedResponse, raw)
	}
	return titles, nil
}
