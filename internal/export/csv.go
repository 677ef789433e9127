// Package export renders the product list as CSV, writes it to a transient
// file and hands it to a share action.
package export

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/powervision/estoque/internal/domain"
	"github.com/powervision/estoque/internal/money"
)

var header = []string{"Nome", "Descrição", "Preço", "Quantidade"}

// CSV renders products in list order. Rows are separated by "\n" and the
// result has no trailing newline. Fields containing a comma, a quote or a
// line break are quoted.
func CSV(products []domain.Product) string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(header)
	for _, p := range products {
		_ = w.Write([]string{
			p.Name,
			p.Description,
			money.Plain(p.Price),
			strconv.FormatInt(p.Quantity, 10),
		})
	}
	w.Flush()
	return strings.TrimSuffix(buf.String(), "\n")
}
