package tui

import (
	"strings"
	"testing"

	"github.com/powervision/estoque/internal/domain"
)

func TestProductMarkdown(t *testing.T) {
	img := "https://img.example/cabo.png"
	md := ProductMarkdown(domain.Product{ID: "42", Name: "Cabo", Description: "USB", Price: 10.5, Quantity: 3, ImageURL: &img})
	for _, want := range []string{"# Cabo", "USB", "`42`", "R$ 10,50", "| Quantidade | 3 |", "R$ 31,50", img} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
	if strings.Contains(md, "Criado em") {
		t.Error("zero timestamps must be omitted")
	}
}

func TestRenderMarkdown_KeepsText(t *testing.T) {
	out := RenderMarkdown("# Cabo\n\nUSB", 60)
	if !strings.Contains(out, "Cabo") || !strings.Contains(out, "USB") {
		t.Errorf("rendered output lost text: %q", out)
	}
}
