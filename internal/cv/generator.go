package cv

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"

	"jobscout/internal/domain/application"
	"jobscout/internal/llm"
	"jobscout/internal/repository"
)

const generatorSystemPrompt = `You are a professional CV writer. Using the candidate's CV and the target job description, ` +
	`produce a tailored CV as ONLY a JSON object with keys: "name", "email", "phone", "summary", ` +
	`"skills" (string array), "experience" (array of {"title","company","period","bullets" (string array)}), ` +
	`"education" (array of {"degree","institution","year"}) and "certifications" (string array).`

// Document is the structured CV the generator renders and stores.
type Document struct {
	Name           string      `json:"name"`
	Email          string      `json:"email"`
	Phone          string      `json:"phone"`
	Summary        string      `json:"summary"`
	Skills         []string    `json:"skills"`
	Experience     []Role      `json:"experience"`
	Education      []Education `json:"education"`
	Certifications []string    `json:"certifications"`
}

type Role struct {
	Title   string   `json:"title"`
	Company string   `json:"company"`
	Period  string   `json:"period"`
	Bullets []string `json:"bullets"`
}

type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        string `json:"year"`
}

// Generator produces a tailored CV for one application and stores both the
// JSON document and its rendered HTML.
type Generator struct {
	llm  llm.Completer
	cvs  repository.CVRepository
	tmpl *template.Template
}

func NewGenerator(completer llm.Completer, cvs repository.CVRepository) *Generator {
	return &Generator{
		llm:  completer,
		cvs:  cvs,
		tmpl: template.Must(template.New("cv").Parse(cvTemplate)),
	}
}

func (g *Generator) Generate(ctx context.Context, app application.Application, cvText, jobDescription string) (application.GeneratedCV, error) {
	raw, err := g.llm.Complete(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: generatorSystemPrompt},
		{Role: llm.RoleUser, Content: fmt.Sprintf("CV:\n%s\n\nJob description:\n%s", cvText, jobDescription)},
	})
	if err != nil {
		return application.GeneratedCV{}, err
	}

	cleaned := llm.StripFences(raw)
	var doc Document
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return application.GeneratedCV{}, fmt.Errorf("%w: %v", ErrMalformedAnalysis, err)
	}
	if doc.Name == "" {
		return application.GeneratedCV{}, fmt.Errorf("%w: missing name", ErrMalformedAnalysis)
	}

	html, err := g.Render(doc)
	if err != nil {
		return application.GeneratedCV{}, err
	}

	return g.cvs.InsertGeneratedCV(ctx, application.GeneratedCV{
		ApplicationID: app.ID,
		CVJSON:        []byte(cleaned),
		RenderedHTML:  html,
	})
}

func (g *Generator) Render(doc Document) (string, error) {
	var buf bytes.Buffer
	if err := g.tmpl.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("render cv: %w", err)
	}
	return buf.String(), nil
}

const cvTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Name}}</title></head>
<body>
<h1>{{.Name}}</h1>
<p>{{.Email}}{{if .Phone}} | {{.Phone}}{{end}}</p>
{{if .Summary}}<h2>Summary</h2><p>{{.Summary}}</p>{{end}}
{{if .Skills}}<h2>Skills</h2><ul>{{range .Skills}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{if .Experience}}<h2>Experience</h2>
{{range .Experience}}<h3>{{.Title}} - {{.Company}}</h3><p>{{.Period}}</p>
<ul>{{range .Bullets}}<li>{{.}}</li>{{end}}</ul>
{{end}}{{end}}
{{if .Education}}<h2>Education</h2>
<ul>{{range .Education}}<li>{{.Degree}}, {{.Institution}} ({{.Year}})</li>{{end}}</ul>{{end}}
{{if .Certifications}}<h2>Certifications</h2>
<ul>{{range .Certifications}}<li>{{.}}</li>{{end}}</ul>{{end}}
</body>
</html>`
