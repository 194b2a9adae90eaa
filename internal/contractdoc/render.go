package contractdoc

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"math"
	"strings"

	"driverent-backend/internal/domain"
	"driverent-backend/internal/utils"
)

//go:embed templates/contrato.html.tmpl
var templates embed.FS

type renderer struct {
	tmpl *template.Template
}

func newRenderer() (*renderer, error) {
	tmpl, err := template.New("contrato.html.tmpl").
		Option("missingkey=error").
		Funcs(template.FuncMap{
			"brl":  FormatBRL,
			"data": formatDate,
			"dias": dayUnit,
			"ou":   orDefault,
		}).
		ParseFS(templates, "templates/contrato.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse contract template: %w", err)
	}
	return &renderer{tmpl: tmpl}, nil
}

func (r *renderer) render(s domain.ContractSnapshot) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, s); err != nil {
		return "", fmt.Errorf("failed to render contract: %w", err)
	}
	return buf.String(), nil
}

// FormatBRL formats v as Brazilian currency, e.g. "R$ 1.234,50".
func FormatBRL(v float64) string {
	cents := int64(math.Round(v * 100))
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	units := fmt.Sprintf("%d", cents/100)

	var grouped strings.Builder
	for i, c := range units {
		if i > 0 && (len(units)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(c)
	}
	return fmt.Sprintf("%sR$ %s,%02d", sign, grouped.String(), cents%100)
}

// formatDate renders a yyyy-mm-dd date as dd/mm/yyyy. Unparseable input is
// printed unchanged.
func formatDate(s string) string {
	t, err := utils.ParseCalendarDay(s)
	if err != nil {
		return s
	}
	return t.Format("02/01/2006")
}

func dayUnit(n int) string {
	if n == 1 {
		return "dia"
	}
	return "dias"
}

func orDefault(v any, fallback string) string {
	s := strings.TrimSpace(fmt.Sprint(v))
	if s == "" || s == "0" {
		return fallback
	}
	return s
}
