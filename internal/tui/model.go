package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/powervision/estoque/internal/nav"
	"github.com/powervision/estoque/internal/screen"
)

// ---------- messages ----------

type routeMsg struct{ route nav.Route }

type op int

const (
	opLogin op = iota
	opRefresh
	opAdd
	opDelete
	opSelect
	opUpdate
	opBack
	opExport
	opStart
)

// doneMsg reports the end of a controller call run as a tea.Cmd.
type doneMsg struct {
	op   op
	path string
	err  error
}

// App bundles the controllers the UI drives.
type App struct {
	Nav    *nav.Navigator
	Login  *screen.Login
	List   *screen.ProductList
	Detail *screen.ProductDetail
}

// Config carries display info for the header.
type Config struct {
	Version  string
	BaseURL  string
	Username string
}

// ---------- styles ----------

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("2")).
			Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			Width(12)

	totalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("2")).
			Bold(true)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)

	dangerModalStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("196")).
				Padding(0, 1)

	alertErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	alertOKStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("2")).
			Bold(true)
)

// ---------- Model ----------

// Model is the bubbletea model. Screen state lives in the controllers; the
// model keeps only the text inputs, the cursor and pending alerts.
type Model struct {
	app App
	cfg Config
	ctx context.Context

	route  nav.Route
	width  int
	height int

	spinner spinner.Model
	busy    bool

	login      []textinput.Model
	loginFocus int

	cursor   int
	add      []textinput.Model
	addFocus int

	detail      []textinput.Model
	detailFocus int

	alerts []alertMsg
	status string

	quitting bool
}

// NewModel creates the initial model. The first screen is opened by Init.
func NewModel(ctx context.Context, app App, cfg Config) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	login := []textinput.Model{
		newInput("usuário", false),
		newInput("senha", true),
	}
	login[0].SetValue(cfg.Username)
	login[0].Focus()

	return Model{
		app:     app,
		cfg:     cfg,
		ctx:     ctx,
		spinner: sp,
		login:   login,
		add: []textinput.Model{
			newInput("Nome do Produto", false),
			newInput("Descrição", false),
			newInput("Preço (ex: 10,50)", false),
			newInput("Quantidade", false),
		},
		detail: []textinput.Model{
			newInput("Nome", false),
			newInput("Descrição", false),
			newInput("Preço", false),
			newInput("Quantidade", false),
		},
	}
}

func newInput(placeholder string, secret bool) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	ti.CharLimit = 256
	ti.Width = 40
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	return ti
}

func (m Model) Init() tea.Cmd {
	app := m.app
	ctx := m.ctx
	return tea.Batch(textinput.Blink, m.spinner.Tick, func() tea.Msg {
		return doneMsg{op: opStart, err: app.Nav.Navigate(ctx, nav.Login, nil)}
	})
}

// run executes fn off the UI loop and reports back with a doneMsg.
func (m *Model) run(o op, fn func(ctx context.Context) (string, error)) tea.Cmd {
	m.busy = true
	m.status = ""
	ctx := m.ctx
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		path, err := fn(ctx)
		return doneMsg{op: o, path: path, err: err}
	})
}

func noPath(fn func(ctx context.Context) error) func(context.Context) (string, error) {
	return func(ctx context.Context) (string, error) { return "", fn(ctx) }
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case alertMsg:
		m.alerts = append(m.alerts, msg)
		return m, nil

	case routeMsg:
		m.route = msg.route
		return m, nil

	case doneMsg:
		m.busy = false
		m.afterDone(msg)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		if len(m.alerts) > 0 {
			switch msg.String() {
			case "enter", "esc", " ":
				m.alerts = m.alerts[1:]
			}
			return m, nil
		}
		if m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		switch m.route {
		case nav.Login:
			cmd = m.updateLogin(msg)
		case nav.Products:
			cmd = m.updateProducts(msg)
		case nav.ProductInfo:
			cmd = m.updateDetail(msg)
		}
		return m, cmd
	}
	return m, nil
}

func (m *Model) afterDone(msg doneMsg) {
	m.route = m.app.Nav.Current()
	switch msg.op {
	case opLogin:
		if msg.err == nil {
			m.login[1].SetValue("")
			m.cursor = 0
		}
	case opAdd:
		if m.app.List.State() != screen.AddModalOpen {
			resetInputs(m.add)
		}
	case opSelect:
		m.fillDetail()
	case opExport:
		if msg.path != "" {
			m.status = "CSV salvo em " + msg.path
			// A failed share is reported through an alert.
			if msg.err == nil {
				m.status += " (copiado para a área de transferência)"
			}
		}
	}
	if n := len(m.app.List.Products()); m.cursor >= n {
		m.cursor = max(0, n-1)
	}
}

// ---------- Login ----------

func (m *Model) updateLogin(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		m.loginFocus = focusInputs(m.login, 1-m.loginFocus)
		return nil
	case "enter":
		user := strings.TrimSpace(m.login[0].Value())
		pass := m.login[1].Value()
		login := m.app.Login
		return m.run(opLogin, noPath(func(ctx context.Context) error {
			return login.Submit(ctx, user, pass)
		}))
	case "esc":
		m.quitting = true
		return tea.Quit
	}
	var cmd tea.Cmd
	m.login[m.loginFocus], cmd = m.login[m.loginFocus].Update(msg)
	return cmd
}

// ---------- Products ----------

func (m *Model) updateProducts(msg tea.KeyMsg) tea.Cmd {
	list := m.app.List
	switch list.State() {
	case screen.AddModalOpen:
		return m.updateAddModal(msg)
	case screen.DeleteConfirmOpen:
		switch msg.String() {
		case "y", "s", "enter":
			return m.run(opDelete, noPath(list.ConfirmDelete))
		case "n", "esc":
			list.CancelDelete()
		}
		return nil
	}

	products := list.Products()
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(products)-1 {
			m.cursor++
		}
	case "enter":
		if m.cursor < len(products) {
			id := products[m.cursor].ID
			return m.run(opSelect, noPath(func(ctx context.Context) error {
				return list.Select(ctx, id)
			}))
		}
	case "a":
		list.OpenAdd()
		resetInputs(m.add)
		m.addFocus = focusInputs(m.add, 0)
	case "d", "delete":
		if m.cursor < len(products) {
			list.RequestDelete(products[m.cursor].ID)
		}
	case "r":
		return m.run(opRefresh, noPath(list.Refresh))
	case "e":
		return m.run(opExport, list.Export)
	case "q":
		m.quitting = true
		return tea.Quit
	}
	return nil
}

func (m *Model) updateAddModal(msg tea.KeyMsg) tea.Cmd {
	list := m.app.List
	switch msg.String() {
	case "esc":
		list.CancelAdd()
		resetInputs(m.add)
		return nil
	case "tab", "down":
		m.addFocus = focusInputs(m.add, (m.addFocus+1)%len(m.add))
		return nil
	case "shift+tab", "up":
		m.addFocus = focusInputs(m.add, (m.addFocus+len(m.add)-1)%len(m.add))
		return nil
	case "enter", "ctrl+s":
		if msg.String() == "enter" && m.addFocus < len(m.add)-1 {
			m.addFocus = focusInputs(m.add, m.addFocus+1)
			return nil
		}
		list.SetAddForm(screen.AddForm{
			Name:        m.add[0].Value(),
			Description: m.add[1].Value(),
			Price:       m.add[2].Value(),
			Quantity:    m.add[3].Value(),
		})
		return m.run(opAdd, noPath(list.SubmitAdd))
	}
	var cmd tea.Cmd
	m.add[m.addFocus], cmd = m.add[m.addFocus].Update(msg)
	return cmd
}

// ---------- ProductInfo ----------

func (m *Model) fillDetail() {
	f := m.app.Detail.Form()
	m.detail[0].SetValue(f.Name)
	m.detail[1].SetValue(f.Description)
	m.detail[2].SetValue(f.Price)
	m.detail[3].SetValue(f.Quantity)
	m.detailFocus = focusInputs(m.detail, 0)
}

func (m *Model) updateDetail(msg tea.KeyMsg) tea.Cmd {
	d := m.app.Detail
	switch msg.String() {
	case "esc":
		navigator := m.app.Nav
		return m.run(opBack, noPath(func(ctx context.Context) error {
			_, err := navigator.Back(ctx)
			return err
		}))
	case "tab", "down":
		m.detailFocus = focusInputs(m.detail, (m.detailFocus+1)%len(m.detail))
		return nil
	case "shift+tab", "up":
		m.detailFocus = focusInputs(m.detail, (m.detailFocus+len(m.detail)-1)%len(m.detail))
		return nil
	case "enter", "ctrl+s":
		return m.run(opUpdate, noPath(d.Update))
	}

	var cmd tea.Cmd
	i := m.detailFocus
	m.detail[i], cmd = m.detail[i].Update(msg)
	switch i {
	case 0:
		d.SetName(m.detail[0].Value())
	case 1:
		d.SetDescription(m.detail[1].Value())
	case 2:
		d.SetPrice(m.detail[2].Value())
		if v := d.Form().Price; v != m.detail[2].Value() {
			m.detail[2].SetValue(v)
		}
	case 3:
		d.SetQuantity(m.detail[3].Value())
		if v := d.Form().Quantity; v != m.detail[3].Value() {
			m.detail[3].SetValue(v)
		}
	}
	return cmd
}

// ---------- helpers ----------

// focusInputs focuses inputs[i], blurs the rest and returns i.
func focusInputs(inputs []textinput.Model, i int) int {
	for j := range inputs {
		if j == i {
			inputs[j].Focus()
		} else {
			inputs[j].Blur()
		}
	}
	return i
}

func resetInputs(inputs []textinput.Model) {
	for j := range inputs {
		inputs[j].SetValue("")
		inputs[j].Blur()
	}
}

// ---------- View ----------

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	switch m.route {
	case nav.Login:
		body = m.viewLogin()
	case nav.Products:
		body = m.viewProducts()
	case nav.ProductInfo:
		body = m.viewDetail()
	default:
		body = hintStyle.Render("Carregando…")
	}

	parts := []string{m.viewHeader(), "", body}
	if len(m.alerts) > 0 {
		parts = append(parts, "", m.viewAlert(m.alerts[0]))
	}
	parts = append(parts, "", m.viewFooter())
	return strings.Join(parts, "\n")
}

func (m Model) viewHeader() string {
	title := titleStyle.Render("Estoque")
	route := string(m.route)
	if route == "" {
		route = "…"
	}
	info := statusBarStyle.Render(fmt.Sprintf("%s │ %s", route, m.cfg.BaseURL))
	if m.cfg.Version != "" {
		info += statusBarStyle.Render("v" + m.cfg.Version)
	}
	return title + " " + info
}

func (m Model) viewFooter() string {
	if m.busy {
		return m.spinner.View() + hintStyle.Render(" aguarde…")
	}
	if m.status != "" {
		return hintStyle.Render(m.status)
	}
	return ""
}

func (m Model) viewAlert(a alertMsg) string {
	title := alertErrorStyle.Render(a.title)
	if a.title == screen.TitleSuccess {
		title = alertOKStyle.Render(a.title)
	}
	return modalStyle.Render(title + "\n" + a.message + "\n\n" + hintStyle.Render("enter para fechar"))
}

func (m Model) viewLogin() string {
	lines := []string{
		titleStyle.Render("Login"),
		"",
		labelStyle.Render("Usuário") + m.login[0].View(),
		labelStyle.Render("Senha") + m.login[1].View(),
		"",
		hintStyle.Render("tab alterna campos · enter entra · esc sai"),
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewProducts() string {
	list := m.app.List
	state := list.State()

	cursor := m.cursor
	if state != screen.Populated && state != screen.Idle {
		cursor = -1
	}
	lines := []string{
		titleStyle.Render("Produtos"),
		"",
		ProductTable(list.Products(), cursor, m.width),
		"",
	}

	switch state {
	case screen.AddModalOpen:
		labels := []string{"Nome", "Descrição", "Preço", "Quantidade"}
		form := []string{titleStyle.Render("Adicionar Novo Produto"), ""}
		for i, in := range m.add {
			form = append(form, labelStyle.Render(labels[i])+in.View())
		}
		form = append(form, "", hintStyle.Render("enter avança/adiciona · esc cancela"))
		lines = append(lines, modalStyle.Render(strings.Join(form, "\n")))
	case screen.DeleteConfirmOpen:
		name := string(list.DeleteTarget())
		for _, p := range list.Products() {
			if p.ID == list.DeleteTarget() {
				name = p.Name
			}
		}
		lines = append(lines, dangerModalStyle.Render(
			fmt.Sprintf("Excluir o produto %q?\n\n", name)+hintStyle.Render("y confirma · n cancela")))
	default:
		lines = append(lines, hintStyle.Render("↑/↓ seleciona · enter detalhes · a adiciona · d exclui · e exporta CSV · r atualiza · q sai"))
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewDetail() string {
	d := m.app.Detail
	if d.Loading() {
		return hintStyle.Render("Carregando produto…")
	}
	labels := []string{"Nome", "Descrição", "Preço", "Quantidade"}
	lines := []string{titleStyle.Render("Produto " + d.Form().ID.String()), ""}
	for i, in := range m.detail {
		lines = append(lines, labelStyle.Render(labels[i])+in.View())
	}
	lines = append(lines,
		"",
		labelStyle.Render("Total")+totalStyle.Render(d.TotalLabel()),
		"",
		hintStyle.Render("tab alterna campos · enter salva · esc volta"),
	)
	return strings.Join(lines, "\n")
}

// ---------- Run ----------

// Run starts the program and blocks until the user quits. alerter must be
// the Alerter the controllers in app were built with.
func Run(ctx context.Context, app App, cfg Config, alerter *ProgramAlerter) error {
	p := tea.NewProgram(NewModel(ctx, app, cfg), tea.WithAltScreen(), tea.WithContext(ctx))
	alerter.SetProgram(p)
	app.Nav.OnChange(func(r nav.Route) { p.Send(routeMsg{route: r}) })

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("terminal ui: %w", err)
	}
	return nil
}
