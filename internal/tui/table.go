package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/shopspring/decimal"

	"github.com/powervision/estoque/internal/domain"
	"github.com/powervision/estoque/internal/money"
)

const (
	cursorMark  = "❯ "
	noCursor    = "  "
	columnGap   = "  "
	minNameCol  = 8
	priceColMin = 10
	qtyColMin   = 5
)

// ProductTable renders products as aligned columns. Widths are measured in
// terminal cells, so accented names line up. cursor is the highlighted row,
// or -1 for none. width 0 means no limit.
func ProductTable(products []domain.Product, cursor, width int) string {
	if len(products) == 0 {
		return hintStyle.Render("Nenhum produto cadastrado.")
	}

	prices := make([]string, len(products))
	nameW, descW, priceW, qtyW := runewidth.StringWidth("Nome"), runewidth.StringWidth("Descrição"), priceColMin, qtyColMin
	for i, p := range products {
		prices[i] = money.FormatBRL(decimal.NewFromFloat(p.Price))
		nameW = max(nameW, runewidth.StringWidth(p.Name))
		descW = max(descW, runewidth.StringWidth(firstLine(p.Description)))
		priceW = max(priceW, runewidth.StringWidth(prices[i]))
		qtyW = max(qtyW, len(strconv.FormatInt(p.Quantity, 10)))
	}

	if width > 0 {
		fixed := runewidth.StringWidth(cursorMark) + priceW + qtyW + 3*len(columnGap)
		avail := width - fixed
		if avail < nameW+descW {
			nameW = max(minNameCol, min(nameW, avail/2))
			descW = max(0, avail-nameW)
		}
	}

	row := func(mark, name, desc, price, qty string) string {
		var sb strings.Builder
		sb.WriteString(mark)
		sb.WriteString(cell(name, nameW))
		sb.WriteString(columnGap)
		sb.WriteString(cell(desc, descW))
		sb.WriteString(columnGap)
		sb.WriteString(runewidth.FillLeft(price, priceW))
		sb.WriteString(columnGap)
		sb.WriteString(runewidth.FillLeft(qty, qtyW))
		return strings.TrimRight(sb.String(), " ")
	}

	lines := []string{headerStyle.Render(row(noCursor, "Nome", "Descrição", "Preço", "Qtd"))}
	for i, p := range products {
		line := row(noCursor, p.Name, firstLine(p.Description), prices[i], strconv.FormatInt(p.Quantity, 10))
		if i == cursor {
			line = selectedStyle.Render(row(cursorMark, p.Name, firstLine(p.Description), prices[i], strconv.FormatInt(p.Quantity, 10)))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// cell truncates s to w cells and pads it to exactly w.
func cell(s string, w int) string {
	if w <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) > w {
		s = runewidth.Truncate(s, w, "…")
	}
	return runewidth.FillRight(s, w)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Bold(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)
)
