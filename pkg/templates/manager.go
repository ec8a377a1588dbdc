package templates

import (
	"bytes"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/selivandex/news-sentiment/pkg/logger"
)

// Renderer interface for template rendering (for dependency injection)
type Renderer interface {
	ExecuteTemplate(name string, data any) (string, error)
	TemplateExists(name string) bool
}

// Manager manages a set of named text templates
type Manager struct {
	templates *template.Template
}

// GetDefaultFuncMap returns common template helper functions
func GetDefaultFuncMap() template.FuncMap {
	return template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"truncate": func(n int, s string) string {
			if utf8.RuneCountInString(s) <= n {
				return s
			}
			return string([]rune(s)[:n]) + "…"
		},
		"oneline": func(s string) string {
			return strings.Join(strings.Fields(s), " ")
		},
	}
}

// NewManager parses every *.tmpl file in fsys, including one level of
// subdirectories. Templates are addressed by base file name.
func NewManager(fsys fs.FS) (*Manager, error) {
	tmpl := template.New("root").Funcs(GetDefaultFuncMap())

	for _, pattern := range []string{"*.tmpl", "*/*.tmpl"} {
		matches, err := fs.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("bad template pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			continue
		}
		if tmpl, err = tmpl.ParseFS(fsys, pattern); err != nil {
			return nil, fmt.Errorf("failed to parse templates: %w", err)
		}
	}

	// the unparsed "root" is not listed, only parsed files are
	templateCount := len(tmpl.Templates())
	if templateCount == 0 {
		return nil, fmt.Errorf("no templates found")
	}

	logger.Debug("templates loaded", zap.Int("count", templateCount))

	return &Manager{templates: tmpl}, nil
}

// NewManagerWithValidation creates manager and validates required templates exist
func NewManagerWithValidation(fsys fs.FS, requiredTemplates []string) (*Manager, error) {
	manager, err := NewManager(fsys)
	if err != nil {
		return nil, err
	}

	for _, name := range requiredTemplates {
		if manager.templates.Lookup(name) == nil {
			return nil, fmt.Errorf("required template not found: %s", name)
		}
	}

	return manager, nil
}

// ExecuteTemplate renders template with data
func (m *Manager) ExecuteTemplate(name string, data any) (string, error) {
	tmpl := m.templates.Lookup(name)
	if tmpl == nil {
		return "", fmt.Errorf("template %s not found", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return buf.String(), nil
}

// TemplateExists checks if template exists
func (m *Manager) TemplateExists(name string) bool {
	return m.templates.Lookup(name) != nil
}
