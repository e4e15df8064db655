package evaluator

const (
	// MaxListItems caps strengths, improvement areas and recommendations.
	MaxListItems = 3

	MaxSubScore    = 20
	MaxGlobalScore = 100

	missingSubScore = 10

	fallbackGlobalScore = 60
	fallbackSubScore    = 12
)

// Scores holds the five graded axes, each in [0,20].
type Scores struct {
	ConceptViability     int `json:"viabilite_concept"`
	MarketStudy          int `json:"etude_marche"`
	BusinessModel        int `json:"modele_economique"`
	MarketingStrategy    int `json:"strategie_marketing"`
	FinancialProjections int `json:"projections_financieres"`
}

func (s Scores) Sum() int {
	return s.ConceptViability + s.MarketStudy + s.BusinessModel + s.MarketingStrategy + s.FinancialProjections
}

// Evaluation is the normalized grading of one business plan.
type Evaluation struct {
	DocumentValid    bool     `json:"document_valide"`
	RejectionReason  string   `json:"raison_rejet,omitempty"`
	ScoreGlobal      int      `json:"score_global"`
	Scores           Scores   `json:"scores"`
	ExecutiveSummary string   `json:"resume_executif"`
	Strengths        []string `json:"points_forts"`
	Improvements     []string `json:"axes_amelioration"`
	Recommendations  []string `json:"recommandations"`

	// Fallback marks a degraded result produced when the model could not be used.
	Fallback bool `json:"-"`
}

const defaultRejectionReason = "Le document soumis ne correspond pas à un plan d'affaires."

// RequiredSections lists what a document needs to be graded at all.
var RequiredSections = []string{
	"Une description claire du produit ou du service proposé",
	"Une analyse du marché ou de la clientèle cible",
	"Un modèle économique expliquant comment le projet génère des revenus",
}

// Rejection builds the canonical Evaluation of a document that is not a business plan.
func Rejection(reason string) Evaluation {
	if reason == "" {
		reason = defaultRejectionReason
	}
	return Evaluation{
		DocumentValid:    false,
		RejectionReason:  reason,
		ScoreGlobal:      0,
		ExecutiveSummary: reason,
		Strengths:        []string{},
		Improvements: []string{
			"Soumettre un véritable plan d'affaires",
			"Inclure les sections minimales attendues",
			"Vérifier que le bon fichier a été envoyé",
		},
		Recommendations: []string{
			"Décrire clairement le produit ou le service",
			"Présenter une analyse du marché et de la clientèle cible",
			"Expliquer le modèle économique et les sources de revenus",
		},
	}
}

// FallbackEvaluation is returned whenever the model call or its reply cannot be used.
func FallbackEvaluation() Evaluation {
	return Evaluation{
		DocumentValid: true,
		ScoreGlobal:   fallbackGlobalScore,
		Scores: Scores{
			ConceptViability:     fallbackSubScore,
			MarketStudy:          fallbackSubScore,
			BusinessModel:        fallbackSubScore,
			MarketingStrategy:    fallbackSubScore,
			FinancialProjections: fallbackSubScore,
		},
		ExecutiveSummary: "Erreur lors de l'analyse automatique. Une révision manuelle est recommandée.",
		Strengths: []string{
			"Document soumis avec succès",
			"Format valide",
			"Informations complètes",
		},
		Improvements: []string{
			"Analyse automatique incomplète",
			"Révision manuelle recommandée",
			"Contactez le professeur si nécessaire",
		},
		Recommendations: []string{
			"Resoumettez si l'analyse semble incomplète",
			"Vérifiez le format du document",
			"Assurez-vous que le texte est lisible",
		},
		Fallback: true,
	}
}
