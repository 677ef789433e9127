package cmd

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/powervision/estoque/internal/domain"
	"github.com/powervision/estoque/internal/fakeapi"
)

type cliEnv struct {
	fake      *fakeapi.Server
	srv       *httptest.Server
	cfgPath   string
	exportDir string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	for _, k := range []string{"ESTOQUE_API_URL", "ESTOQUE_USERNAME", "ESTOQUE_PASSWORD", "ESTOQUE_LOG_LEVEL", "ESTOQUE_LOG_FILE", "ESTOQUE_EXPORT_DIR", "ESTOQUE_JOURNAL_PATH"} {
		t.Setenv(k, "")
	}

	fake := fakeapi.New(fakeapi.WithBcryptCost(bcrypt.MinCost))
	if _, err := fake.AddUser("admin", "admin"); err != nil {
		t.Fatal(err)
	}
	fake.Seed(domain.Product{ID: "1", Name: "Cabo", Description: "USB", Price: 9.9, Quantity: 2})
	srv := httptest.NewServer(fake.Handler())
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	exportDir := filepath.Join(dir, "export")
	if err := os.MkdirAll(exportDir, 0755); err != nil {
		t.Fatal(err)
	}
	cfg := "api:\n  base_url: " + srv.URL + "\n" +
		"auth:\n  username: admin\n  password: admin\n" +
		"export:\n  dir: " + exportDir + "\n  share: none\n" +
		"journal:\n  enabled: true\n  path: " + filepath.Join(dir, "journal.db") + "\n" +
		"log:\n  level: error\n  file: " + filepath.Join(dir, "estoque.log") + "\n"
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(cfg), 0600); err != nil {
		t.Fatal(err)
	}
	return &cliEnv{fake: fake, srv: srv, cfgPath: cfgPath, exportDir: exportDir}
}

func (e *cliEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCmd("test", "none", "unknown")
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", e.cfgPath}, args...))
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestProductsList_CSV(t *testing.T) {
	env := newCLIEnv(t)
	out, stderr, err := env.run(t, "products", "list", "--csv")
	if err != nil {
		t.Fatalf("list: %v (stderr %q)", err, stderr)
	}
	want := "Nome,Descrição,Preço,Quantidade\nCabo,USB,9.9,2\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestProductsList_Table(t *testing.T) {
	env := newCLIEnv(t)
	out, _, err := env.run(t, "products", "list")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Cabo") || !strings.Contains(out, "R$ 9,90") {
		t.Errorf("table output:\n%s", out)
	}
}

func TestProducts_WrongPassword(t *testing.T) {
	env := newCLIEnv(t)
	_, stderr, err := env.run(t, "products", "list", "--password", "nope")
	if err == nil {
		t.Fatal("expected an error")
	}
	var ae *domain.AuthError
	if !errors.As(err, &ae) || ae.Status != http.StatusUnauthorized {
		t.Errorf("expected a 401 auth error, got %v", err)
	}
	if !strings.HasPrefix(stderr, "Erro: ") {
		t.Errorf("stderr = %q", stderr)
	}
	if env.fake.Hits(http.MethodGet, "/products") != 0 {
		t.Error("no list request expected after a failed login")
	}
}

func TestProductsAddEditDelete(t *testing.T) {
	env := newCLIEnv(t)

	if _, stderr, err := env.run(t, "products", "add", "--name", "Mouse", "--price", "25,90", "--quantity", "4"); err != nil {
		t.Fatalf("add: %v (%s)", err, stderr)
	}
	if got := len(env.fake.Products()); got != 2 {
		t.Fatalf("products after add = %d", got)
	}

	out, stderr, err := env.run(t, "products", "edit", "1", "--quantity", "5")
	if err != nil {
		t.Fatalf("edit: %v (%s)", err, stderr)
	}
	if !strings.Contains(out, "R$ 49,50") {
		t.Errorf("edit output %q", out)
	}
	if q := env.fake.Products()[0].Quantity; q != 5 {
		t.Errorf("quantity = %d, want 5", q)
	}

	if _, stderr, err := env.run(t, "products", "delete", "1", "--yes"); err != nil {
		t.Fatalf("delete: %v (%s)", err, stderr)
	}
	if env.fake.Hits(http.MethodDelete, "/products/1") != 1 {
		t.Error("expected exactly one DELETE /products/1")
	}

	out, _, err = env.run(t, "history", "--limit", "10")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	for _, want := range []string{"delete", "update", "create", "login"} {
		if !strings.Contains(out, want) {
			t.Errorf("history missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "admin") {
		t.Error("history must not contain credentials")
	}
}

func TestProductsAdd_InvalidPrice(t *testing.T) {
	env := newCLIEnv(t)
	_, stderr, err := env.run(t, "products", "add", "--name", "Mouse", "--price", "abc", "--quantity", "4")
	if !domain.IsValidation(err) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if !strings.Contains(stderr, "Erro: ") {
		t.Errorf("stderr = %q", stderr)
	}
	if env.fake.Hits(http.MethodPost, "/products/") != 0 {
		t.Error("invalid input must not reach the API")
	}
}

func TestProductsDelete_NoConfirmationWithoutTerminal(t *testing.T) {
	env := newCLIEnv(t)
	out, _, err := env.run(t, "products", "delete", "1")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Cancelado") || env.fake.Hits(http.MethodDelete, "/products/1") != 0 {
		t.Errorf("delete without --yes must be cancelled, out %q", out)
	}
}

func TestProductsExport_WritesFile(t *testing.T) {
	env := newCLIEnv(t)
	out, stderr, err := env.run(t, "products", "export")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	path := strings.TrimSpace(out)
	if filepath.Dir(path) != env.exportDir {
		t.Fatalf("export path %q not in %q", path, env.exportDir)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "Nome,Descrição,Preço,Quantidade\nCabo,USB,9.9,2" {
		t.Errorf("file content %q", data)
	}
	if !strings.HasPrefix(stderr, "Aviso: ") {
		t.Errorf("share none should warn, stderr %q", stderr)
	}
}

func TestVersion(t *testing.T) {
	env := newCLIEnv(t)
	out, _, err := env.run(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "estoque test") {
		t.Errorf("got %q", out)
	}
}

func TestProductsGet_NotFound(t *testing.T) {
	env := newCLIEnv(t)
	_, stderr, err := env.run(t, "products", "get", "99", "--raw")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if !strings.Contains(err.Error(), "Produto não encontrado") {
		t.Errorf("error text %q", err)
	}
	if stderr != "" {
		t.Errorf("unexpected alerts %q", stderr)
	}
}

func TestProductsGet_Raw(t *testing.T) {
	env := newCLIEnv(t)
	out, _, err := env.run(t, "products", "get", "1", "--raw")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "# Cabo") || !strings.Contains(out, "R$ 19,80") {
		t.Errorf("markdown output:\n%s", out)
	}
}

func TestProducts_UnreachableServer(t *testing.T) {
	env := newCLIEnv(t)
	env.srv.Close()
	_, _, err := env.run(t, "products", "list")
	if !domain.IsTransport(err) {
		t.Fatalf("err = %v, want transport error", err)
	}
	if !strings.Contains(err.Error(), "cannot reach "+env.srv.URL) {
		t.Errorf("error text %q", err)
	}
}
