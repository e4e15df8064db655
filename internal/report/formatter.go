// Package report renders evaluations as self-contained HTML reports.
package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/fadilmartias/plan-analyzer/internal/evaluator"
)

//go:embed templates/*.html
var templateFS embed.FS

const dateLayout = "02/01/2006 à 15:04"

type tile struct {
	Label string
	Value int
}

type reportData struct {
	Student    string
	Project    string
	Date       string
	Score      int
	Tier       string
	ScoreColor template.CSS
	Model      string
	Seconds    int

	Summary         string
	Tiles           []tile
	Strengths       []string
	Improvements    []string
	Recommendations []string
	Degraded        bool

	Reason           string
	RequiredSections []string
}

type Formatter struct {
	tmpl  *template.Template
	model string
	now   func() time.Time
}

// NewFormatter parses the embedded templates. modelLabel names the grader in
// the report footer.
func NewFormatter(modelLabel string) (*Formatter, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse report templates: %w", err)
	}
	return &Formatter{tmpl: tmpl, model: modelLabel, now: time.Now}, nil
}

// ScoreTier bands an overall score: high from 80, medium from 60, low below.
func ScoreTier(score int) (tier string, color string) {
	switch {
	case score >= 80:
		return "high", "#4CAF50"
	case score >= 60:
		return "medium", "#FF9800"
	default:
		return "low", "#f44336"
	}
}

func (f *Formatter) Format(ev evaluator.Evaluation, studentName, projectTitle string, processingSeconds int) (string, error) {
	score := ev.ScoreGlobal
	if !ev.DocumentValid {
		score = 0
	}
	tier, color := ScoreTier(score)

	data := reportData{
		Student:    studentName,
		Project:    projectTitle,
		Date:       f.now().Format(dateLayout),
		Score:      score,
		Tier:       tier,
		ScoreColor: template.CSS(color),
		Model:      f.model,
		Seconds:    processingSeconds,
	}

	name := "accepted.html"
	if ev.DocumentValid {
		data.Summary = ev.ExecutiveSummary
		if data.Summary == "" {
			data.Summary = "Non disponible"
		}
		data.Tiles = []tile{
			{"Viabilité du Concept", ev.Scores.ConceptViability},
			{"Étude de Marché", ev.Scores.MarketStudy},
			{"Modèle Économique", ev.Scores.BusinessModel},
			{"Stratégie Marketing", ev.Scores.MarketingStrategy},
			{"Projections Financières", ev.Scores.FinancialProjections},
		}
		data.Strengths = ev.Strengths
		data.Improvements = ev.Improvements
		data.Recommendations = ev.Recommendations
		data.Degraded = ev.Fallback
	} else {
		name = "rejected.html"
		data.Reason = ev.RejectionReason
		data.RequiredSections = evaluator.RequiredSections
	}

	var buf bytes.Buffer
	if err := f.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
