// Package locale holds the English and Spanish user-interface strings.
package locale

import (
	"github.com/hyperjump/kotae/internal/models"
)

// QuickQuestion is a suggested query with a short button label.
type QuickQuestion struct {
	Icon  string `json:"icon"`
	Label string `json:"label"`
	Query string `json:"query"`
}

// Strings is the text shown to the user in one language.
type Strings struct {
	Lang            string
	LanguageName    string
	Title           string
	Subtitle        string
	Tip             string
	CurrentLanguage string
	QuickHeading    string
	InputPrompt     string
	Placeholder     string
	Searching       string
	AnswerHeading   string
	NotFound        string
	NoAnswer        string
	EmptyQuery      string
	NotReady        string
	DistanceLabel   string
	StatsTopics     string
	StatsLanguages  string
	StatsVectorSize string
	Help            string
	Tiers           map[models.Tier]string
	QuickQuestions  []QuickQuestion
}

var english = &Strings{
	Lang:            models.LangEnglish,
	LanguageName:    "English",
	Title:           "Lambton College Ottawa - Campus Survival Guide",
	Subtitle:        "Bilingual Chatbot for International Students",
	Tip:             "Tip: You can ask questions in English or Spanish.",
	CurrentLanguage: "Current language: English",
	QuickHeading:    "Quick Questions",
	InputPrompt:     "Or type your own question:",
	Placeholder:     "Example: Where can I find affordable food?",
	Searching:       "Searching...",
	AnswerHeading:   "Answer:",
	NotFound:        "I don't have information about that topic in my database. Please ask about: housing, transportation, groceries, work permits, or UHIP.",
	NoAnswer:        "Sorry, I couldn't find a relevant answer. Try asking differently!",
	EmptyQuery:      "Please enter a question first!",
	NotReady:        "The guide is still loading. Please try again in a moment.",
	DistanceLabel:   "Distance",
	StatsTopics:     "FAQ Topics",
	StatsLanguages:  "Languages",
	StatsVectorSize: "Vector Size",
	Help:            "enter: ask • 1-6: quick question • tab: switch language • esc: quit",
	Tiers: map[models.Tier]string{
		models.High:     "High Confidence",
		models.Medium:   "Medium Confidence",
		models.Low:      "Low Confidence",
		models.NotFound: "Topic Not Found",
	},
	QuickQuestions: []QuickQuestion{
		{"📍", "Where is campus?", "Where is the campus located?"},
		{"🏠", "Housing cost?", "How much is housing?"},
		{"🚌", "Public transit?", "How does public transit work?"},
		{"🛒", "Cheap groceries?", "Where to buy cheap groceries?"},
		{"💼", "Can I work?", "Can I work while studying?"},
		{"🏥", "What is UHIP?", "What is UHIP?"},
	},
}

var spanish = &Strings{
	Lang:            models.LangSpanish,
	LanguageName:    "Español",
	Title:           "Lambton College Ottawa - Guía de Supervivencia del Campus",
	Subtitle:        "Chatbot Bilingüe para Estudiantes Internacionales",
	Tip:             "Consejo: Puedes hacer preguntas en inglés o español.",
	CurrentLanguage: "Idioma actual: Español",
	QuickHeading:    "Preguntas Rápidas",
	InputPrompt:     "O escribe tu propia pregunta:",
	Placeholder:     "Ejemplo: ¿Dónde puedo encontrar comida económica?",
	Searching:       "Buscando...",
	AnswerHeading:   "Respuesta:",
	NotFound:        "No tengo información sobre ese tema en mi base de datos. Por favor pregunta sobre: alojamiento, transporte, supermercados, permisos de trabajo, o UHIP.",
	NoAnswer:        "Lo siento, no encontré una respuesta relevante. ¡Intenta preguntar de otra forma!",
	EmptyQuery:      "¡Por favor ingresa una pregunta primero!",
	NotReady:        "La guía todavía se está cargando. Inténtalo de nuevo en un momento.",
	DistanceLabel:   "Distancia",
	StatsTopics:     "Temas",
	StatsLanguages:  "Idiomas",
	StatsVectorSize: "Tamaño del Vector",
	Help:            "enter: preguntar • 1-6: pregunta rápida • tab: cambiar idioma • esc: salir",
	Tiers: map[models.Tier]string{
		models.High:     "Confianza Alta",
		models.Medium:   "Confianza Media",
		models.Low:      "Confianza Baja",
		models.NotFound: "Tema No Encontrado",
	},
	QuickQuestions: []QuickQuestion{
		{"📍", "¿Dónde está el campus?", "¿Dónde está ubicado el campus?"},
		{"🏠", "¿Costo de alojamiento?", "¿Cuánto cuesta el alojamiento?"},
		{"🚌", "¿Transporte público?", "¿Cómo funciona el transporte público?"},
		{"🛒", "¿Supermercados baratos?", "¿Dónde comprar comida barata?"},
		{"💼", "¿Puedo trabajar?", "¿Puedo trabajar mientras estudio?"},
		{"🏥", "¿Qué es UHIP?", "¿Qué es UHIP?"},
	},
}

// For returns the strings for lang, falling back to English.
func For(lang string) *Strings {
	if lang == models.LangSpanish {
		return spanish
	}
	return english
}

// Languages returns the supported language codes in display order.
func Languages() []string {
	return []string{models.LangEnglish, models.LangSpanish}
}

// Next returns the language after lang, wrapping around.
func Next(lang string) string {
	if lang == models.LangSpanish {
		return models.LangEnglish
	}
	return models.LangSpanish
}

// TierLabel returns the localized confidence label.
func (s *Strings) TierLabel(t models.Tier) string {
	if l, ok := s.Tiers[t]; ok {
		return l
	}
	return t.String()
}

// TierIcon returns the traffic-light marker for a tier.
func TierIcon(t models.Tier) string {
	switch t {
	case models.High:
		return "🟢"
	case models.Medium:
		return "🟡"
	default:
		return "🔴"
	}
}

// DisplayAnswer returns the text to show for res: the corpus answer, or the
// localized out-of-domain message for NotFound.
func (s *Strings) DisplayAnswer(res *models.Resolution) string {
	if res.Tier == models.NotFound {
		return s.NotFound
	}
	return res.Answer
}
