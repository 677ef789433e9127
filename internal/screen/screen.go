// Package screen holds the controllers behind the Login, Products and
// ProductInfo screens. They own the form state and the call sequencing;
// rendering is left to the front ends (the terminal UI and the one-shot
// commands), which drive them through plain method calls.
package screen

import (
	"context"

	"go.uber.org/zap"

	"github.com/powervision/estoque/internal/domain"
	"github.com/powervision/estoque/internal/journal"
	"github.com/powervision/estoque/internal/nav"
)

// Alert titles and texts shown to the user.
const (
	TitleError   = "Erro"
	TitleSuccess = "Sucesso"
	TitleInfo    = "Aviso"

	MsgFillCredentials = "Por favor, preencha os campos usuário e senha"
	MsgAuthFailed      = "Autenticação falhou, tente novamente mais tarde"
	MsgLoginError      = "Aconteceu um erro, tente novamente mais tarde"

	MsgListFailed = "Falha ao buscar produtos."
	MsgListError  = "Ocorreu um erro ao buscar os produtos."

	MsgFillProduct   = "Preencha nome, preço e quantidade."
	MsgInvalidNumber = "Preço ou quantidade inválidos."
	MsgCreateFailed  = "Falha ao adicionar o produto."
	MsgCreateError   = "Ocorreu um erro ao adicionar o produto."
	MsgDeleteFailed  = "Falha ao excluir o produto."
	MsgDeleteError   = "Ocorreu um erro ao excluir o produto."

	MsgDetailFailed = "Falha ao buscar detalhes do produto."
	MsgDetailError  = "Ocorreu um erro ao buscar os detalhes do produto."
	MsgNotFound     = "Produto não encontrado."
	MsgUpdated      = "Produto atualizado com sucesso!"
	MsgUpdateFailed = "Falha ao atualizar o produto."
	MsgUpdateError  = "Ocorreu um erro ao atualizar o produto."

	MsgShareUnavailable = "Compartilhamento não disponível neste dispositivo."
	MsgExportFailed     = "Falha ao exportar os produtos."
)

// Alerter shows a blocking message to the user.
type Alerter interface {
	Alert(title, message string)
}

// AlertFunc adapts a function to Alerter.
type AlertFunc func(title, message string)

func (f AlertFunc) Alert(title, message string) { f(title, message) }

type AuthGateway interface {
	Login(ctx context.Context, username, password string) (domain.Token, error)
}

type ProductGateway interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id domain.ProductID) (domain.Product, error)
	CreateProduct(ctx context.Context, draft domain.ProductDraft) error
	UpdateProduct(ctx context.Context, id domain.ProductID, patch domain.ProductPatch) error
	DeleteProduct(ctx context.Context, id domain.ProductID) error
}

// Session is the part of the session store the screens use. Only Login
// writes to it.
type Session interface {
	SetToken(token string)
	SetUserID(id string)
	UserID() string
}

type Navigator interface {
	Navigate(ctx context.Context, route nav.Route, params nav.Params) error
}

type Exporter interface {
	Export(products []domain.Product) (string, error)
}

// Deps are the collaborators injected into every controller. Journal and
// Log may be nil.
type Deps struct {
	Auth     AuthGateway
	Products ProductGateway
	Session  Session
	Nav      Navigator
	Alert    Alerter
	Journal  journal.Recorder
	Exporter Exporter
	Log      *zap.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Journal == nil {
		d.Journal = journal.Nop{}
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Alert == nil {
		d.Alert = AlertFunc(func(string, string) {})
	}
	return d
}

// record writes a journal entry. Journal failures are logged and otherwise
// ignored.
func (d Deps) record(ctx context.Context, action journal.Action, id domain.ProductID, err error, detail string) {
	e := journal.Entry{Action: action, ProductID: id.String(), Outcome: journal.OutcomeOK, Detail: detail}
	if err != nil {
		e.Outcome = journal.OutcomeFailed
		e.Detail = err.Error()
	}
	if jerr := d.Journal.Record(ctx, e); jerr != nil {
		d.Log.Warn("journal_record_failed", zap.String("action", string(action)), zap.Error(jerr))
	}
}
