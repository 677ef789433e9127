package screen

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/powervision/estoque/internal/domain"
	"github.com/powervision/estoque/internal/journal"
	"github.com/powervision/estoque/internal/money"
	"github.com/powervision/estoque/internal/nav"
)

// DetailForm is the editable text of the detail screen. Price and Quantity
// hold what the user typed, after sanitizing.
type DetailForm struct {
	ID          domain.ProductID
	Name        string
	Description string
	Price       string
	Quantity    string
}

// ProductDetail is the controller of the product detail screen.
type ProductDetail struct {
	d   Deps
	seq Sequencer

	mu      sync.Mutex
	form    DetailForm
	loading bool
}

func NewProductDetail(d Deps) *ProductDetail {
	return &ProductDetail{d: d.withDefaults()}
}

// Focus loads the product named by the productId parameter.
func (p *ProductDetail) Focus(ctx context.Context, params nav.Params) error {
	return p.Load(ctx, domain.ProductID(params[nav.ParamProductID]))
}

// Load fetches id and fills the form. A load superseded by a later one is
// dropped, so a slow answer for a previous product never overwrites the
// current one.
func (p *ProductDetail) Load(ctx context.Context, id domain.ProductID) error {
	ticket := p.seq.Next()
	p.mu.Lock()
	p.loading = true
	p.form = DetailForm{ID: id}
	p.mu.Unlock()

	prod, err := p.d.Products.GetProduct(ctx, id)

	p.mu.Lock()
	if !p.seq.Latest(ticket) {
		p.mu.Unlock()
		p.d.Log.Debug("product_detail_stale_response_dropped", zap.String("product_id", id.String()))
		return nil
	}
	p.loading = false
	if err != nil {
		p.mu.Unlock()
		p.d.Log.Warn("product_detail_fetch_failed", zap.String("product_id", id.String()), zap.Error(err))
		msg := gatewayMessage(err, MsgDetailFailed, MsgDetailError)
		if errors.Is(err, domain.ErrNotFound) {
			msg = MsgNotFound
		}
		p.d.Alert.Alert(TitleError, msg)
		return err
	}
	p.form = DetailForm{
		ID:          id,
		Name:        prod.Name,
		Description: prod.Description,
		Price:       money.FormatField(prod.Price),
		Quantity:    strconv.FormatInt(prod.Quantity, 10),
	}
	p.mu.Unlock()
	return nil
}

func (p *ProductDetail) SetName(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.form.Name = s
}

func (p *ProductDetail) SetDescription(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.form.Description = s
}

// SetPrice stores text with everything but digits, comma and period removed.
func (p *ProductDetail) SetPrice(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.form.Price = money.Sanitize(text)
}

// SetQuantity sanitizes like SetPrice.
func (p *ProductDetail) SetQuantity(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.form.Quantity = money.Sanitize(text)
}

func (p *ProductDetail) Form() DetailForm {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.form
}

func (p *ProductDetail) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// Total is round(price * quantity, 2) over the current text, or zero.
func (p *ProductDetail) Total() decimal.Decimal {
	f := p.Form()
	return money.Total(f.Price, f.Quantity)
}

// TotalLabel is Total formatted as "R$ 31,50".
func (p *ProductDetail) TotalLabel() string {
	return money.FormatBRL(p.Total())
}

// Update sends all four fields. Non-numeric price or quantity is refused
// locally. The screen stays where it is and nothing is refetched.
func (p *ProductDetail) Update(ctx context.Context) error {
	f := p.Form()
	price, okPrice := money.ParsePrice(f.Price)
	qty, okQty := money.ParseQuantity(f.Quantity)
	if !okPrice || !okQty {
		p.d.Alert.Alert(TitleError, MsgInvalidNumber)
		return domain.NewValidationError("price/quantity", "not numeric")
	}

	patch := domain.ProductPatch{
		Name:        f.Name,
		Description: f.Description,
		Price:       money.Float(price),
		Quantity:    qty,
		UserID:      domain.OptionalString(p.d.Session.UserID()),
	}
	if err := p.d.Products.UpdateProduct(ctx, f.ID, patch); err != nil {
		p.d.Log.Warn("product_update_failed", zap.String("product_id", f.ID.String()), zap.Error(err))
		p.d.record(ctx, journal.ActionUpdate, f.ID, err, "")
		p.d.Alert.Alert(TitleError, gatewayMessage(err, MsgUpdateFailed, MsgUpdateError))
		return err
	}
	p.d.record(ctx, journal.ActionUpdate, f.ID, nil, f.Name)
	p.d.Alert.Alert(TitleSuccess, MsgUpdated)
	return nil
}
