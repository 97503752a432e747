package extractors

import (
	"github.com/custodia-labs/lexis/internal/extractors/docx"
	"github.com/custodia-labs/lexis/internal/extractors/html"
	"github.com/custodia-labs/lexis/internal/extractors/markdown"
	"github.com/custodia-labs/lexis/internal/extractors/pdf"
	"github.com/custodia-labs/lexis/internal/extractors/plaintext"
	"github.com/custodia-labs/lexis/internal/extractors/tika"
)

// NewDefaultRegistry returns a registry with every built-in extractor.
// The Tika extractor is added only when tikaURL is set.
func NewDefaultRegistry(tikaURL string) *Registry {
	r := NewRegistry(
		plaintext.New(),
		markdown.New(),
		html.New(),
		docx.New(),
		pdf.New(),
	)
	if tikaURL != "" {
		r.Register(tika.New(tikaURL))
	}
	return r
}
