package tui

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/crypto/bcrypt"

	"github.com/powervision/estoque/internal/api"
	"github.com/powervision/estoque/internal/domain"
	"github.com/powervision/estoque/internal/fakeapi"
	"github.com/powervision/estoque/internal/nav"
	"github.com/powervision/estoque/internal/screen"
	"github.com/powervision/estoque/internal/session"
)

func newTestApp(t *testing.T) (App, *fakeapi.Server, *bytes.Buffer) {
	t.Helper()
	fake := fakeapi.New(fakeapi.WithBcryptCost(bcrypt.MinCost))
	if _, err := fake.AddUser("admin", "admin"); err != nil {
		t.Fatal(err)
	}
	fake.Seed(domain.Product{ID: "1", Name: "Cabo", Description: "USB", Price: 9.9, Quantity: 2})
	srv := httptest.NewServer(fake.Handler())
	t.Cleanup(srv.Close)

	base, err := api.ParseBaseURL(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	store := session.New()
	client := api.NewClient(srv.Client(), base, store)
	alerts := &bytes.Buffer{}
	navigator := nav.New()
	deps := screen.Deps{
		Auth:     client,
		Products: client,
		Session:  store,
		Nav:      navigator,
		Alert:    NewPlainAlerter(alerts),
	}
	app := App{
		Nav:    navigator,
		Login:  screen.NewLogin(deps),
		List:   screen.NewProductList(deps),
		Detail: screen.NewProductDetail(deps),
	}
	navigator.Register(nav.Login, app.Login)
	navigator.Register(nav.Products, app.List)
	navigator.Register(nav.ProductInfo, app.Detail)
	return app, fake, alerts
}

// drain runs cmd to completion and returns the messages it produced,
// flattening batches. Spinner ticks are dropped.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	if _, ok := msg.(doneMsg); !ok {
		return nil
	}
	return []tea.Msg{msg}
}

// press sends key to m and feeds back every doneMsg the resulting command
// produces.
func press(t *testing.T, m Model, key tea.KeyMsg) Model {
	t.Helper()
	next, cmd := m.Update(key)
	m = next.(Model)
	for _, msg := range drain(cmd) {
		next, _ = m.Update(msg)
		m = next.(Model)
	}
	return m
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestModel_LoginAddDelete(t *testing.T) {
	app, fake, alerts := newTestApp(t)
	ctx := context.Background()
	m := NewModel(ctx, app, Config{BaseURL: "http://test", Username: "admin"})

	if err := app.Nav.Navigate(ctx, nav.Login, nil); err != nil {
		t.Fatal(err)
	}
	next, _ := m.Update(doneMsg{op: opStart})
	m = next.(Model)
	if m.route != nav.Login || !strings.Contains(m.View(), "Login") {
		t.Fatalf("route = %q", m.route)
	}

	m.login[1].SetValue("admin")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.route != nav.Products {
		t.Fatalf("after login route = %q, alerts %q", m.route, alerts.String())
	}
	if !strings.Contains(m.View(), "Cabo") {
		t.Errorf("product list not shown:\n%s", m.View())
	}

	m = press(t, m, runes("a"))
	if app.List.State() != screen.AddModalOpen {
		t.Fatalf("state = %v", app.List.State())
	}
	m.add[0].SetValue("Mouse")
	m.add[2].SetValue("25,90")
	m.add[3].SetValue("4")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if app.List.State() == screen.AddModalOpen {
		t.Fatalf("modal still open, alerts %q", alerts.String())
	}
	if got := len(app.List.Products()); got != 2 {
		t.Fatalf("products = %d, want 2", got)
	}
	if m.add[0].Value() != "" {
		t.Error("add inputs not reset")
	}

	m = press(t, m, runes("d"))
	if app.List.DeleteTarget() != "1" {
		t.Fatalf("delete target = %q", app.List.DeleteTarget())
	}
	m = press(t, m, runes("y"))
	if fake.Hits(http.MethodDelete, "/products/1") != 1 {
		t.Error("expected one DELETE /products/1")
	}
	if len(app.List.Products()) != 1 || alerts.Len() != 0 {
		t.Errorf("products %+v alerts %q", app.List.Products(), alerts.String())
	}
}

func TestModel_DetailEditAndBack(t *testing.T) {
	app, fake, alerts := newTestApp(t)
	ctx := context.Background()
	m := NewModel(ctx, app, Config{Username: "admin"})
	_ = app.Nav.Navigate(ctx, nav.Login, nil)
	next, _ := m.Update(doneMsg{op: opStart})
	m = next.(Model)
	m.login[1].SetValue("admin")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.route != nav.ProductInfo {
		t.Fatalf("route = %q, alerts %q", m.route, alerts.String())
	}
	if m.detail[2].Value() != "9,9" {
		t.Errorf("price field = %q, want 9,9", m.detail[2].Value())
	}

	// Focus quantity and type a non-digit: it is sanitized away.
	for i := 0; i < 3; i++ {
		m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	}
	m = press(t, m, runes("x"))
	if m.detail[3].Value() != "2" {
		t.Errorf("quantity field = %q, want 2", m.detail[3].Value())
	}
	m = press(t, m, runes("0"))
	if !strings.Contains(m.View(), "R$ 198,00") {
		t.Errorf("total not updated:\n%s", m.View())
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !strings.Contains(alerts.String(), screen.MsgUpdated) {
		t.Errorf("alerts = %q", alerts.String())
	}
	if got := fake.Products()[0].Quantity; got != 20 {
		t.Errorf("stored quantity = %d, want 20", got)
	}

	lists := fake.Hits(http.MethodGet, "/products")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.route != nav.Products {
		t.Fatalf("route after esc = %q", m.route)
	}
	if fake.Hits(http.MethodGet, "/products") != lists+1 {
		t.Error("returning to the list must refetch it")
	}
}

func TestModel_AlertBlocksKeysUntilDismissed(t *testing.T) {
	app, _, _ := newTestApp(t)
	m := NewModel(context.Background(), app, Config{})
	next, _ := m.Update(alertMsg{title: screen.TitleError, message: "boom"})
	m = next.(Model)
	if !strings.Contains(m.View(), "boom") {
		t.Fatal("alert not rendered")
	}
	m = press(t, m, runes("q"))
	if len(m.alerts) != 1 || m.quitting {
		t.Fatal("keys other than enter/esc must not pass through an alert")
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if len(m.alerts) != 0 {
		t.Fatal("enter should dismiss the alert")
	}
}

func TestProgramAlerter_QueuesUntilProgramSet(t *testing.T) {
	a := &ProgramAlerter{}
	a.Alert("Erro", "x")
	a.Alert("Erro", "y")
	if len(a.pending) != 2 {
		t.Fatalf("pending = %d", len(a.pending))
	}
}

func TestPlainAlerter(t *testing.T) {
	var buf bytes.Buffer
	NewPlainAlerter(&buf).Alert("Erro", "Falha ao buscar produtos.")
	if buf.String() != "Erro: Falha ao buscar produtos.\n" {
		t.Errorf("got %q", buf.String())
	}
}
