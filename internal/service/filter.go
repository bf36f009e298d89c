package service

import "strings"

// defaultAllowedApps are the package identifiers of banking and payment apps
// whose notifications are worth classifying.
var defaultAllowedApps = []string{
	"com.nu.production",
	"com.itau",
	"com.itau.iti",
	"com.bradesco",
	"com.santander.app",
	"br.com.bb.android",
	"br.com.caixa.tem",
	"com.c6bank.app",
	"br.com.intermedium",
	"com.picpay",
	"com.mercadopago.wallet",
}

// defaultKeywords denote financial activity; any case-insensitive substring
// match lets a notification through. Portuguese first, English for apps that
// localize their pushes.
var defaultKeywords = []string{
	"compra",
	"pagamento",
	"transferência",
	"transferencia",
	"pix",
	"recebeu",
	"recebido",
	"fatura",
	"débito",
	"debito",
	"crédito",
	"credito",
	"r$",
	"purchase",
	"payment",
	"transfer",
	"received",
	"invoice",
	"debit",
}

// NotificationFilter is the cheap local gate in front of the classifier: it
// rejects notifications that cannot possibly be financial before any model
// call is paid for. Pure and deterministic; it has no failure mode.
type NotificationFilter struct {
	allowedApps map[string]struct{}
	keywords    []string
}

// NewNotificationFilter builds a filter. Empty slices fall back to the
// built-in allow-list and keyword set.
func NewNotificationFilter(allowedApps, keywords []string) *NotificationFilter {
	if len(allowedApps) == 0 {
		allowedApps = defaultAllowedApps
	}
	if len(keywords) == 0 {
		keywords = defaultKeywords
	}

	allowed := make(map[string]struct{}, len(allowedApps))
	for _, app := range allowedApps {
		allowed[strings.ToLower(app)] = struct{}{}
	}

	lowered := make([]string, len(keywords))
	for i, kw := range keywords {
		lowered[i] = strings.ToLower(kw)
	}

	return &NotificationFilter{
		allowedApps: allowed,
		keywords:    lowered,
	}
}

// ShouldProcess reports whether a notification is worth sending to the
// classifier: known app, non-empty text, at least one financial keyword.
func (f *NotificationFilter) ShouldProcess(sourceAppID, text string) bool {
	if _, ok := f.allowedApps[strings.ToLower(sourceAppID)]; !ok {
		return false
	}

	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return false
	}

	for _, kw := range f.keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
