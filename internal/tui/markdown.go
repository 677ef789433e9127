package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/shopspring/decimal"

	"github.com/powervision/estoque/internal/domain"
	"github.com/powervision/estoque/internal/money"
)

// ProductMarkdown describes one product as a markdown document.
func ProductMarkdown(p domain.Product) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", p.Name)
	if p.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", p.Description)
	}
	price := decimal.NewFromFloat(p.Price)
	total := price.Mul(decimal.NewFromInt(p.Quantity)).Round(2)

	sb.WriteString("| Campo | Valor |\n|---|---|\n")
	fmt.Fprintf(&sb, "| ID | `%s` |\n", p.ID)
	fmt.Fprintf(&sb, "| Preço | %s |\n", money.FormatBRL(price))
	fmt.Fprintf(&sb, "| Quantidade | %d |\n", p.Quantity)
	fmt.Fprintf(&sb, "| Total | %s |\n", money.FormatBRL(total))
	if p.ImageURL != nil && *p.ImageURL != "" {
		fmt.Fprintf(&sb, "| Imagem | %s |\n", *p.ImageURL)
	}
	if !p.CreatedAt.IsZero() {
		fmt.Fprintf(&sb, "| Criado em | %s |\n", p.CreatedAt.Local().Format("02/01/2006 15:04"))
	}
	if !p.UpdatedAt.IsZero() {
		fmt.Fprintf(&sb, "| Atualizado em | %s |\n", p.UpdatedAt.Local().Format("02/01/2006 15:04"))
	}
	return sb.String()
}

// RenderMarkdown renders md for a terminal of the given width. The source
// text is returned when rendering fails.
func RenderMarkdown(md string, width int) string {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width-4),
	)
	if err != nil {
		return md
	}
	rendered, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(rendered, "\n")
}
