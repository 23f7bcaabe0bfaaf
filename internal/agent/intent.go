package agent

import "strings"

// Intent is the classified purpose of a piece of conversation text.
type Intent string

const (
	IntentData     Intent = "data"
	IntentAnalysis Intent = "analysis"
	IntentReport   Intent = "report"
	IntentNone     Intent = "none"
)

// Classifier turns free text into a routing intent. The supervisor depends on
// this interface only, so routing is testable without real keyword lists.
type Classifier interface {
	// DataRequest reports whether an utterance asks for data, a report or
	// statistics, i.e. anything that needs the database queried first.
	DataRequest(utterance string) bool
	// Classify maps arbitrary text to the stage family it talks about.
	Classify(text string) Intent
}

// dataKeywords match user questions that need data fetched. Polish stems
// cover the primary user base, English equivalents keep mixed-language
// questions working.
var dataKeywords = []string{
	"raport", "analiz", "statyst", "pokaż", "wykorzyst", "aktywn",
	"użytkown", "aplikacj",
	"report", "analys", "statist", "show", "usage", "activ", "user",
	"application", "data",
}

var sqlContentKeywords = []string{"sql", "dane", "baz", "data", "database"}
var analysisContentKeywords = []string{"analiz", "statyst", "analys", "statist"}
var reportContentKeywords = []string{"raport", "podsumow", "report", "summar"}

// KeywordClassifier is the default substring-matching classifier.
type KeywordClassifier struct{}

func (KeywordClassifier) DataRequest(utterance string) bool {
	return containsAny(strings.ToLower(utterance), dataKeywords)
}

func (KeywordClassifier) Classify(text string) Intent {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, sqlContentKeywords):
		return IntentData
	case containsAny(lower, analysisContentKeywords):
		return IntentAnalysis
	case containsAny(lower, reportContentKeywords):
		return IntentReport
	default:
		return IntentNone
	}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
