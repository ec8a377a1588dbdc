package telegram

import (
	"embed"
	"fmt"

	"github.com/selivandex/news-sentiment/pkg/templates"
)

//go:embed templates/*.tmpl
var replyFS embed.FS

var requiredTemplates = []string{
	"help.tmpl",
	"collect.tmpl",
	"predict.tmpl",
	"predictions.tmpl",
	"llm.tmpl",
}

// NewTemplateManager loads the embedded reply templates
func NewTemplateManager() (*templates.Manager, error) {
	manager, err := templates.NewManagerWithValidation(replyFS, requiredTemplates)
	if err != nil {
		return nil, fmt.Errorf("failed to load telegram templates: %w", err)
	}
	return manager, nil
}
