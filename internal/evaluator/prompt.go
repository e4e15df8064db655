package evaluator

import (
	"fmt"
	"strings"
)

const (
	maxWords           = 3000
	wordTruncationNote = "\n\n[Document tronqué pour l'analyse]"
)

const systemPrompt = `Tu es un évaluateur exigeant de plans d'affaires académiques.

ÉTAPE 1 - VALIDATION. Vérifie d'abord que le document est bien un plan d'affaires. Il doit contenir au minimum :
- une description du produit ou du service,
- une analyse du marché ou de la clientèle cible,
- un modèle économique ou une explication des revenus.
Si l'un de ces éléments manque, ou si le document n'est pas un plan d'affaires (recette, CV, devoir sans rapport...), réponds UNIQUEMENT avec :
{
    "document_valide": false,
    "raison_rejet": "explication courte de ce qui manque",
    "score_global": 0
}

ÉTAPE 2 - ÉVALUATION. Si le document est valide, réponds UNIQUEMENT avec un JSON de cette structure exacte :
{
    "document_valide": true,
    "resume_executif": "résumé en 2-3 phrases",
    "score_global": nombre entier entre 0 et 100,
    "scores": {
        "viabilite_concept": nombre entier entre 0 et 20,
        "etude_marche": nombre entier entre 0 et 20,
        "modele_economique": nombre entier entre 0 et 20,
        "strategie_marketing": nombre entier entre 0 et 20,
        "projections_financieres": nombre entier entre 0 et 20
    },
    "points_forts": ["point 1", "point 2", "point 3"],
    "axes_amelioration": ["axe 1", "axe 2", "axe 3"],
    "recommandations": ["reco 1", "reco 2", "reco 3"]
}

RÈGLES DE NOTATION :
- Sois strict. Un plan valide typique obtient entre 50 et 60 sur 100.
- Une section absente du document vaut 0 sur l'axe correspondant.
- score_global est la somme des cinq scores.
- Trois éléments au maximum par liste. Sois concis mais constructif.`

// TruncateWords keeps the first maxWords whitespace separated words of text
// and appends a truncation marker when anything was dropped.
func TruncateWords(text string) string {
	words := strings.Fields(text)
	if len(words) <= maxWords {
		return text
	}
	return strings.Join(words[:maxWords], " ") + wordTruncationNote
}

func buildUserPrompt(text, studentName, projectTitle string) string {
	return fmt.Sprintf("Plan d'affaires de %s - Projet: %s\n\n%s\n\nFournis l'analyse JSON.",
		studentName, projectTitle, TruncateWords(text))
}
