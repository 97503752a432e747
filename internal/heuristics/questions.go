package heuristics

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

// MaxContextualQuestions caps ContextualQuestions.
const MaxContextualQuestions = 6

// ContextualQuestions derives questions from concrete details in text:
// amounts, dates, the named parties and a few notable clause kinds.
func ContextualQuestions(text string) []string {
	var questions []string

	if amounts := Amounts(text); len(amounts) > 0 {
		questions = append(questions,
			fmt.Sprintf("What does the amount %s represent?", amounts[0]),
			"Are there any additional fees or costs mentioned?",
		)
	}
	if dates := Dates(text); len(dates) > 0 {
		questions = append(questions,
			fmt.Sprintf("What is the significance of %s?", dates[0]),
			"What are all the important deadlines in this document?",
		)
	}
	if parties := Parties(text); len(parties) >= 2 {
		questions = append(questions,
			fmt.Sprintf("What are %s's main responsibilities?", parties[0]),
			fmt.Sprintf("What are %s's main obligations?", parties[1]),
		)
	}

	padded := normalise(text)
	clauses := []struct {
		keywords []string
		question string
	}{
		{[]string{"indemnify", "indemnification"}, "What are the indemnification provisions?"},
		{[]string{"force majeure"}, "What constitutes a force majeure event?"},
		{[]string{"arbitration"}, "What are the arbitration procedures?"},
		{[]string{"intellectual property"}, "How are intellectual property rights handled?"},
	}
	for _, c := range clauses {
		for _, kw := range c.keywords {
			if hasWord(padded, kw) {
				questions = append(questions, c.question)
				break
			}
		}
	}

	if len(questions) > MaxContextualQuestions {
		questions = questions[:MaxContextualQuestions]
	}
	return questions
}

// Summary describes the document in one sentence from its type and length.
func Summary(text string) string {
	words := len(strings.Fields(text))
	kind := DetectDocumentType(text)
	if kind != domain.DocumentTypeOther {
		return fmt.Sprintf("This appears to be %s %s containing %d words.", article(string(kind)), kind, words)
	}
	return fmt.Sprintf("This appears to be a legal document containing %d words.", words)
}

func article(noun string) string {
	if noun != "" && strings.ContainsRune("AEIOUaeiou", rune(noun[0])) {
		return "an"
	}
	return "a"
}
