// Package heuristics finds parties, dates, amounts, risks and key terms in
// contract text with regular expressions and keyword tables. It needs no
// model and backs the offline analysis fallback and `lexis inspect`.
package heuristics
