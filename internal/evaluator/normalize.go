package evaluator

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

var ErrMalformedReply = errors.New("malformed model reply")

// Normalize turns a raw model reply into an Evaluation whose shape does not
// depend on how well the model followed the instructions.
func Normalize(reply string) (Evaluation, error) {
	reply = strings.TrimSpace(reply)
	if !gjson.Valid(reply) {
		return Evaluation{}, ErrMalformedReply
	}
	root := gjson.Parse(reply)
	if !root.IsObject() {
		return Evaluation{}, ErrMalformedReply
	}
	if err := validateReply(reply); err != nil {
		return Evaluation{}, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}

	if valid := root.Get("document_valide"); valid.Exists() && !valid.Bool() {
		return Rejection(stringField(root.Get("raison_rejet"))), nil
	}

	scores := root.Get("scores")
	ev := Evaluation{
		DocumentValid: true,
		Scores: Scores{
			ConceptViability:     subScore(scores.Get("viabilite_concept")),
			MarketStudy:          subScore(scores.Get("etude_marche")),
			BusinessModel:        subScore(scores.Get("modele_economique")),
			MarketingStrategy:    subScore(scores.Get("strategie_marketing")),
			FinancialProjections: subScore(scores.Get("projections_financieres")),
		},
		ExecutiveSummary: stringField(root.Get("resume_executif")),
		Strengths:        list(root.Get("points_forts")),
		Improvements:     list(root.Get("axes_amelioration")),
		Recommendations:  list(root.Get("recommandations")),
	}

	global, ok := coerceInt(root.Get("score_global"))
	if !ok {
		global = ev.Scores.Sum()
	}
	ev.ScoreGlobal = clamp(global, 0, MaxGlobalScore)

	return ev, nil
}

// subScore resolves one axis: absent keys get the neutral default, values
// that cannot be read as an integer get 0.
func subScore(r gjson.Result) int {
	if !r.Exists() {
		return missingSubScore
	}
	n, ok := coerceInt(r)
	if !ok {
		return 0
	}
	return clamp(n, 0, MaxSubScore)
}

// coerceInt reads numbers (truncated toward zero), integer strings and booleans.
func coerceInt(r gjson.Result) (int, bool) {
	switch r.Type {
	case gjson.Number:
		n := math.Trunc(r.Num)
		if n > math.MaxInt32 {
			return math.MaxInt32, true
		}
		if n < math.MinInt32 {
			return math.MinInt32, true
		}
		return int(n), true
	case gjson.String:
		n, err := strconv.Atoi(strings.TrimSpace(r.Str))
		if err != nil {
			return 0, false
		}
		return n, true
	case gjson.True:
		return 1, true
	case gjson.False:
		return 0, true
	default:
		return 0, false
	}
}

func stringField(r gjson.Result) string {
	if r.Type != gjson.String {
		return ""
	}
	return strings.TrimSpace(r.Str)
}

func list(r gjson.Result) []string {
	items := []string{}
	if !r.IsArray() {
		return items
	}
	for _, item := range r.Array() {
		if len(items) == MaxListItems {
			break
		}
		if s := stringField(item); s != "" {
			items = append(items, s)
		}
	}
	return items
}

func clamp(n, lo, hi int) int {
	return max(lo, min(n, hi))
}
