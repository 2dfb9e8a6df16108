// Package ussd turns one gateway request (session id, phone number and the
// accumulated input trail) into the next menu screen or a closing message.
package ussd

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"

	"pocket-ussd/catalog"
	"pocket-ussd/locale"
	"pocket-ussd/model"
	"pocket-ussd/store"
	"pocket-ussd/utils"
)

const serviceName = "ussd-service"

type Request struct {
	SessionId   string
	PhoneNumber string
	// Text is nil when the gateway did not send the field at all; an empty
	// string is a fresh session.
	Text *string
}

type Response struct {
	Action  string
	Message string
	// Err is the error kind behind a terminal error screen.
	Err     error
	TraceId string
}

func (r Response) String() string {
	return r.Action + " " + r.Message
}

type Resolver struct {
	sessions store.SessionStore
	ledger   store.LedgerStore
	catalog  *catalog.Catalog
}

func NewResolver(sessions store.SessionStore, ledger store.LedgerStore, cat *catalog.Catalog) *Resolver {
	return &Resolver{sessions: sessions, ledger: ledger, catalog: cat}
}

// request carries what one Resolve call has worked out so far.
type request struct {
	Request
	trail     trail
	lang      string
	menu      *catalog.Menu
	localizer *i18n.Localizer
}

// Resolve never returns a Go error: every failure ends the session with a
// message the subscriber can read, and Response.Err says which kind it was.
func (r *Resolver) Resolve(ctx context.Context, req Request) Response {
	if strings.TrimSpace(req.SessionId) == "" || strings.TrimSpace(req.PhoneNumber) == "" || req.Text == nil {
		return Response{Action: utils.ActionEnd, Message: locale.InvalidRequest, Err: ErrInvalidRequest}
	}

	session, err := r.sessions.GetSession(ctx, req.SessionId)
	if err != nil {
		traceId := utils.LogMessage("error", fmt.Sprintf("Resolve: get session %s failed, err: %v", req.SessionId, err), serviceName)
		return Response{Action: utils.ActionEnd, Message: locale.SystemError, Err: fmt.Errorf("%w: %v", ErrStoreUnavailable, err), TraceId: traceId}
	}
	if session == nil {
		session = &model.USSDSession{Id: req.SessionId, PhoneNumber: req.PhoneNumber, Language: model.LanguagePrimary}
	}

	rq := &request{Request: req, trail: parseTrail(*req.Text)}
	if rq.trail.empty() {
		r.saveSession(ctx, model.USSDSession{
			Id:          req.SessionId,
			PhoneNumber: req.PhoneNumber,
			LastInput:   *req.Text,
			Language:    session.Language,
		})
		return Response{Action: utils.ActionContinue, Message: locale.LanguageMenu}
	}

	rq.lang = rq.trail.language()
	menu, ok := r.catalog.Menu(rq.lang)
	if !ok {
		return Response{Action: utils.ActionEnd, Message: locale.InvalidLanguage, Err: fmt.Errorf("%w: %q", ErrInvalidLanguage, rq.lang)}
	}
	rq.menu = menu
	rq.localizer = locale.Localizer(menu.Locale)
	// a selection counts against the page that was on screen
	last := menu.LastPage(r.catalog.PageSize())
	rq.trail.page = min(rq.trail.page, last)
	rq.trail.servicePage = min(rq.trail.servicePage, last)

	resp, persist := r.dispatch(ctx, rq)
	if persist {
		r.saveSession(ctx, model.USSDSession{
			Id:          req.SessionId,
			PhoneNumber: req.PhoneNumber,
			LastInput:   rq.trail.raw,
			Language:    rq.lang,
			Page:        rq.trail.page,
		})
	}
	return resp
}

// dispatch picks the screen for the trail's menu depth. The second result is
// false for the balance inquiry and debit branches, which return without
// touching the session row.
func (r *Resolver) dispatch(ctx context.Context, rq *request) (Response, bool) {
	switch rq.trail.pos {
	case atServiceList:
		return r.serviceList(rq), true
	case atOptions:
		service, err := r.selectedService(rq)
		if err != nil {
			return r.fail(rq, err), true
		}
		lines := append([]string{service.Name}, service.Options...)
		return Response{Action: utils.ActionContinue, Message: strings.Join(lines, "\n")}, true
	case atAmount:
		return r.optionSelected(ctx, rq)
	case amountEntered:
		return r.amountEntered(ctx, rq)
	}
	return r.fail(rq, fmt.Errorf("%w: trail too deep", ErrInvalidRequest)), true
}

func (r *Resolver) serviceList(rq *request) Response {
	size := r.catalog.PageSize()
	names, hasPrev, hasNext := rq.menu.Window(rq.trail.page, size)
	lines := make([]string, 0, len(names)+2)
	for i, name := range names {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, name))
	}
	if hasPrev {
		lines = append(lines, utils.Localize(rq.localizer, "nav_previous", nil))
	}
	if hasNext {
		lines = append(lines, utils.Localize(rq.localizer, "nav_next", nil))
	}
	return Response{Action: utils.ActionContinue, Message: strings.Join(lines, "\n")}
}

func (r *Resolver) selectedService(rq *request) (catalog.Service, error) {
	pick, err := strconv.Atoi(rq.trail.service)
	if err != nil {
		return catalog.Service{}, fmt.Errorf("%w: service %q", ErrInvalidSelection, rq.trail.service)
	}
	index := rq.trail.servicePage*r.catalog.PageSize() + pick - 1
	service, ok := rq.menu.Service(index)
	if !ok || pick < 1 {
		return catalog.Service{}, fmt.Errorf("%w: service index %d", ErrInvalidSelection, index)
	}
	return service, nil
}

func (r *Resolver) selectedOption(rq *request) (catalog.Service, string, catalog.Action, error) {
	service, err := r.selectedService(rq)
	if err != nil {
		return service, "", catalog.ActionGeneric, err
	}
	label, ok := service.Option(rq.trail.option)
	if !ok || rq.trail.option == catalog.BackKey {
		return service, "", catalog.ActionGeneric, fmt.Errorf("%w: option %q of %q", ErrInvalidSelection, rq.trail.option, service.Name)
	}
	return service, label, r.catalog.Classify(service.Name, label), nil
}

func (r *Resolver) optionSelected(ctx context.Context, rq *request) (Response, bool) {
	service, label, action, err := r.selectedOption(rq)
	if err != nil {
		return r.fail(rq, err), true
	}
	switch {
	case action.NeedsAmount():
		msg := utils.Localize(rq.localizer, "amount_prompt", map[string]interface{}{"Service": service.Name})
		return Response{Action: utils.ActionContinue, Message: msg}, true
	case action == catalog.ActionBalanceInquiry:
		balance, err := r.ledger.GetBalance(ctx, rq.PhoneNumber)
		if err != nil {
			return r.fail(rq, fmt.Errorf("%w: get balance: %v", ErrStoreUnavailable, err)), false
		}
		msg := utils.Localize(rq.localizer, "balance_result", map[string]interface{}{"Amount": formatAmount(balance)})
		return Response{Action: utils.ActionEnd, Message: msg}, false
	}
	r.logTransaction(ctx, model.Transaction{
		PhoneNumber: rq.PhoneNumber,
		Service:     service.Name,
		SubService:  catalog.OptionText(label),
		Status:      model.TransactionProcessed,
	})
	msg := utils.Localize(rq.localizer, "action_done", map[string]interface{}{
		"Service": service.Name,
		"Option":  catalog.OptionText(label),
	})
	return Response{Action: utils.ActionEnd, Message: msg}, true
}

func (r *Resolver) amountEntered(ctx context.Context, rq *request) (Response, bool) {
	service, label, action, err := r.selectedOption(rq)
	if err != nil {
		return r.fail(rq, err), true
	}
	amount, err := parseAmount(rq.trail.amount)
	if err != nil {
		return r.fail(rq, fmt.Errorf("%w: %q", ErrInvalidAmount, rq.trail.amount)), true
	}
	tx := model.Transaction{
		PhoneNumber: rq.PhoneNumber,
		Service:     service.Name,
		SubService:  catalog.OptionText(label),
		Amount:      amount,
		Status:      model.TransactionSuccess,
	}
	switch action {
	case catalog.ActionDeposit:
		if err := r.ledger.AddBalance(ctx, rq.PhoneNumber, amount); err != nil {
			return r.fail(rq, fmt.Errorf("%w: add balance: %v", ErrStoreUnavailable, err)), true
		}
		r.logTransaction(ctx, tx)
		msg := utils.Localize(rq.localizer, "deposit_success", map[string]interface{}{"Amount": formatAmount(amount)})
		return Response{Action: utils.ActionEnd, Message: msg}, true
	case catalog.ActionBuyAirtime, catalog.ActionSendMoney:
		ok, err := r.ledger.DebitBalance(ctx, rq.PhoneNumber, amount)
		if err != nil {
			return r.fail(rq, fmt.Errorf("%w: debit balance: %v", ErrStoreUnavailable, err)), false
		}
		if !ok {
			return r.fail(rq, fmt.Errorf("%w: %s needs %s", ErrInsufficientBalance, rq.PhoneNumber, formatAmount(amount))), false
		}
		r.logTransaction(ctx, tx)
		msg := utils.Localize(rq.localizer, "debit_success", map[string]interface{}{
			"Service": service.Name,
			"Amount":  formatAmount(amount),
		})
		return Response{Action: utils.ActionEnd, Message: msg}, false
	}
	return r.fail(rq, fmt.Errorf("%w: %s takes no amount", ErrInvalidRequest, action)), true
}

// fail ends the session with the localized message for err's kind. Store
// failures are logged as errors, everything else is a subscriber mistake.
func (r *Resolver) fail(rq *request, err error) Response {
	level := "info"
	if Kind(err) == "store_unavailable" {
		level = "error"
	}
	traceId := utils.LogMessage(level, fmt.Sprintf("USSD session %s ended: %v", rq.SessionId, err), serviceName)
	return Response{
		Action:  utils.ActionEnd,
		Message: utils.Localize(rq.localizer, messageID(err), nil),
		Err:     err,
		TraceId: traceId,
	}
}

// saveSession is best-effort: the subscriber already has an answer, a lost
// session row only costs the stored copy of the trail.
func (r *Resolver) saveSession(ctx context.Context, session model.USSDSession) {
	if err := r.sessions.UpsertSession(ctx, session); err != nil {
		utils.LogMessage("error", fmt.Sprintf("saveSession: upsert %s failed, err: %v", session.Id, err), serviceName)
	}
}

// logTransaction is best-effort and is not tied to the balance write before
// it: a failure here leaves the balance changed with no log row.
func (r *Resolver) logTransaction(ctx context.Context, tx model.Transaction) {
	if err := r.ledger.LogTransaction(ctx, tx); err != nil {
		utils.LogMessage("critical", fmt.Sprintf("logTransaction: %s %s/%s failed, err: %v", tx.PhoneNumber, tx.Service, tx.SubService, err), serviceName)
	}
}

func parseAmount(value string) (float64, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if clean == "" {
		return 0, fmt.Errorf("empty")
	}
	amount, err := strconv.ParseFloat(clean, 64)
	if err != nil || amount <= 0 || math.IsInf(amount, 0) || math.IsNaN(amount) {
		return 0, fmt.Errorf("invalid")
	}
	return amount, nil
}

func formatAmount(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}
