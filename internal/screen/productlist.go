package screen

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/powervision/estoque/internal/domain"
	"github.com/powervision/estoque/internal/export"
	"github.com/powervision/estoque/internal/journal"
	"github.com/powervision/estoque/internal/money"
	"github.com/powervision/estoque/internal/nav"
)

type ListState int

const (
	Idle ListState = iota
	Loading
	Populated
	AddModalOpen
	DeleteConfirmOpen
)

func (s ListState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Populated:
		return "populated"
	case AddModalOpen:
		return "add_modal_open"
	case DeleteConfirmOpen:
		return "delete_confirm_open"
	}
	return "idle"
}

// AddForm is the text typed into the add-product modal.
type AddForm struct {
	Name        string
	Description string
	Price       string
	Quantity    string
}

// ProductList is the controller of the products screen.
type ProductList struct {
	d   Deps
	seq Sequencer

	mu           sync.Mutex
	items        []domain.Product
	loading      bool
	loaded       bool
	addOpen      bool
	form         AddForm
	deleteOpen   bool
	deleteTarget domain.ProductID
}

func NewProductList(d Deps) *ProductList {
	return &ProductList{d: d.withDefaults()}
}

// Focus refetches the list every time the screen becomes visible.
func (l *ProductList) Focus(ctx context.Context, _ nav.Params) error {
	return l.Refresh(ctx)
}

// Refresh fetches the list. If another Refresh started after this one, the
// response (or failure) of this one is dropped.
func (l *ProductList) Refresh(ctx context.Context) error {
	ticket := l.seq.Next()
	l.mu.Lock()
	l.loading = true
	l.mu.Unlock()

	items, err := l.d.Products.ListProducts(ctx)

	l.mu.Lock()
	if !l.seq.Latest(ticket) {
		l.mu.Unlock()
		l.d.Log.Debug("product_list_stale_response_dropped", zap.Uint64("ticket", ticket), zap.Bool("failed", err != nil))
		return nil
	}
	l.loading = false
	if err != nil {
		l.mu.Unlock()
		l.d.Log.Warn("product_list_fetch_failed", zap.Error(err))
		l.d.Alert.Alert(TitleError, gatewayMessage(err, MsgListFailed, MsgListError))
		return err
	}
	l.items = items
	l.loaded = true
	l.mu.Unlock()

	l.d.Log.Debug("product_list_fetched", zap.Int("count", len(items)))
	return nil
}

// OpenAdd shows the add modal with an empty form.
func (l *ProductList) OpenAdd() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.addOpen = true
	l.form = AddForm{}
}

func (l *ProductList) SetAddForm(f AddForm) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.form = f
}

func (l *ProductList) CancelAdd() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.addOpen = false
	l.form = AddForm{}
}

// SubmitAdd validates the add form and creates the product. On success the
// modal closes, the form is cleared and the list is fetched once. On
// failure the modal stays open with the form untouched.
func (l *ProductList) SubmitAdd(ctx context.Context) error {
	l.mu.Lock()
	form := l.form
	l.mu.Unlock()

	draft, err := l.draft(form)
	if err != nil {
		msg := MsgInvalidNumber
		var ve *domain.ValidationError
		if errors.As(err, &ve) && ve.Field == "form" {
			msg = MsgFillProduct
		}
		l.d.Alert.Alert(TitleError, msg)
		return err
	}

	if err := l.d.Products.CreateProduct(ctx, draft); err != nil {
		l.d.Log.Warn("product_create_failed", zap.Error(err))
		l.d.record(ctx, journal.ActionCreate, "", err, "")
		l.d.Alert.Alert(TitleError, gatewayMessage(err, MsgCreateFailed, MsgCreateError))
		return err
	}
	l.d.record(ctx, journal.ActionCreate, "", nil, draft.Name)

	l.mu.Lock()
	l.addOpen = false
	l.form = AddForm{}
	l.mu.Unlock()

	_ = l.Refresh(ctx)
	return nil
}

func (l *ProductList) draft(f AddForm) (domain.ProductDraft, error) {
	name := strings.TrimSpace(f.Name)
	if name == "" || strings.TrimSpace(f.Price) == "" || strings.TrimSpace(f.Quantity) == "" {
		return domain.ProductDraft{}, domain.NewValidationError("form", "name, price and quantity are required")
	}
	price, ok := money.ParsePrice(strings.TrimSpace(f.Price))
	if !ok || price.IsNegative() {
		return domain.ProductDraft{}, domain.NewValidationError("price", "not a non-negative number")
	}
	qty, ok := money.ParseQuantity(strings.TrimSpace(f.Quantity))
	if !ok || qty < 0 {
		return domain.ProductDraft{}, domain.NewValidationError("quantity", "not a non-negative integer")
	}
	return domain.ProductDraft{
		Name:        name,
		Description: strings.TrimSpace(f.Description),
		Price:       money.Float(price),
		Quantity:    qty,
		UserID:      domain.OptionalString(l.d.Session.UserID()),
	}, nil
}

// RequestDelete opens the confirmation for id.
func (l *ProductList) RequestDelete(id domain.ProductID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.deleteOpen = true
	l.deleteTarget = id
}

func (l *ProductList) CancelDelete() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.deleteOpen = false
	l.deleteTarget = ""
}

// ConfirmDelete deletes the pending target. Only a successful delete closes
// the confirmation and refetches the list.
func (l *ProductList) ConfirmDelete(ctx context.Context) error {
	l.mu.Lock()
	open, id := l.deleteOpen, l.deleteTarget
	l.mu.Unlock()
	if !open || id == "" {
		return nil
	}

	if err := l.d.Products.DeleteProduct(ctx, id); err != nil {
		l.d.Log.Warn("product_delete_failed", zap.String("product_id", id.String()), zap.Error(err))
		l.d.record(ctx, journal.ActionDelete, id, err, "")
		l.d.Alert.Alert(TitleError, gatewayMessage(err, MsgDeleteFailed, MsgDeleteError))
		return err
	}
	l.d.record(ctx, journal.ActionDelete, id, nil, "")

	l.mu.Lock()
	l.deleteOpen = false
	l.deleteTarget = ""
	l.mu.Unlock()

	_ = l.Refresh(ctx)
	return nil
}

// Select opens the detail screen of id.
func (l *ProductList) Select(ctx context.Context, id domain.ProductID) error {
	return l.d.Nav.Navigate(ctx, nav.ProductInfo, nav.Params{nav.ParamProductID: id.String()})
}

// Export writes the current list as CSV and shares it. The file path is
// returned even when no share target is available.
func (l *ProductList) Export(ctx context.Context) (string, error) {
	items := l.Products()
	path, err := l.d.Exporter.Export(items)
	switch {
	case err == nil:
		l.d.record(ctx, journal.ActionExport, "", nil, path)
	case errors.Is(err, export.ErrShareUnavailable):
		l.d.record(ctx, journal.ActionExport, "", nil, path+" (not shared)")
		l.d.Alert.Alert(TitleInfo, MsgShareUnavailable)
	default:
		l.d.Log.Warn("product_export_failed", zap.Error(err))
		l.d.record(ctx, journal.ActionExport, "", err, "")
		l.d.Alert.Alert(TitleError, MsgExportFailed)
	}
	return path, err
}

// Products returns a copy of the last applied list.
func (l *ProductList) Products() []domain.Product {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.Product, len(l.items))
	copy(out, l.items)
	return out
}

// State reports the modal first, then the fetch status.
func (l *ProductList) State() ListState {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch {
	case l.addOpen:
		return AddModalOpen
	case l.deleteOpen:
		return DeleteConfirmOpen
	case l.loading:
		return Loading
	case l.loaded:
		return Populated
	}
	return Idle
}

func (l *ProductList) AddForm() AddForm {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.form
}

// DeleteTarget is the id awaiting confirmation, or "".
func (l *ProductList) DeleteTarget() domain.ProductID {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.deleteTarget
}

// gatewayMessage picks the alert text for a failed product call: one text
// for a server refusal, another for anything else.
func gatewayMessage(err error, failed, other string) string {
	var ge *domain.GatewayError
	if errors.As(err, &ge) {
		return failed
	}
	return other
}
