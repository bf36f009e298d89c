package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"granaflow/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	// ErrClassification covers every way the classifier can fail: the model
	// call errored or timed out, or the response could not be parsed and
	// validated against the expected shape.
	ErrClassification = errors.New("classification failed")

	// ErrModelCall marks the transient subset of classification failures
	// (network, timeout, upstream outage). Parse and validation failures do
	// not carry it; retrying those would replay the same bad output.
	ErrModelCall = errors.New("model call failed")
)

// Completer is the LLM chat-completion capability the classifier depends on:
// system instruction plus user message in, raw completion text out.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

const classifierSystemInstruction = `Você é um extrator de transações financeiras. Você recebe o texto bruto de uma notificação de aplicativo bancário e responde com EXATAMENTE UM objeto JSON, sem markdown, sem comentários, sem texto antes ou depois.

Esquema de saída:
{
  "is_valid": boolean,
  "kind": "expense" | "income" | "ignore",
  "amount": número decimal >= 0,
  "description": "frase curta em Title Case",
  "category": "Alimentação" | "Transporte" | "Moradia" | "Saúde" | "Educação" | "Lazer" | "Compras" | "Serviços" | "Salário" | "Transferência" | "Outros",
  "payment_method": "credit_card" | "debit" | "pix" | "transfer",
  "occurred_at": "data/hora ISO-8601, ou string vazia se o texto não trouxer data"
}

Regras de negócio:
1. Linguagem de compra no cartão ("compra aprovada no cartão...") => kind "expense" e payment_method "credit_card".
2. Linguagem de Pix recebido ("você recebeu um Pix...") => kind "income" e payment_method "pix".
3. Avisos informativos de fatura (fatura fechou, pague sua fatura) => is_valid false: são lembretes, não transações.
4. Pagamento de fatura realizado => kind "ignore": as compras já foram registradas individualmente; registrar o pagamento duplicaria valores.
5. Emojis e caracteres decorativos são ignorados na interpretação e nunca aparecem em description.
6. description é uma frase natural curta combinando o tipo da transação e o estabelecimento/contraparte quando derivável ("Compra em <Estabelecimento>", "Pix enviado para <Nome>", "Pix recebido de <Nome>"), nunca apenas o nome do aplicativo.
7. Valores monetários no formato "X.XXX,XX" devem ser normalizados para número decimal simples (ex.: "1.234,56" => 1234.56).
8. Se o texto não trouxer data explícita, occurred_at é a data/hora de referência informada na mensagem do usuário.

Se o texto não representar uma transação financeira real, responda is_valid false.`

// Classifier turns raw notification text into a structured
// ClassificationResult via a single low-temperature model completion. It
// performs no retries; resilience is the pipeline's concern.
type Classifier struct {
	completer Completer
	timeout   time.Duration
	logger    *zap.Logger
}

func NewClassifier(completer Completer, timeout time.Duration, logger *zap.Logger) *Classifier {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Classifier{
		completer: completer,
		timeout:   timeout,
		logger:    logger,
	}
}

// rawClassification is the wire shape the model must produce. Amount is a
// decimal so both JSON numbers and quoted numbers are accepted.
type rawClassification struct {
	IsValid       bool            `json:"is_valid"`
	Kind          string          `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	PaymentMethod string          `json:"payment_method"`
	OccurredAt    string          `json:"occurred_at"`
}

// Classify extracts a structured transaction candidate from rawText.
// referenceTime is the moment the notification arrived; the model falls back
// to it when the text carries no date.
func (c *Classifier) Classify(ctx context.Context, rawText string, referenceTime time.Time) (models.ClassificationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	user := fmt.Sprintf("Data/hora de referência: %s\n\nTexto da notificação:\n%s",
		referenceTime.Format(time.RFC3339), rawText)

	content, err := c.completer.Complete(ctx, classifierSystemInstruction, user)
	if err != nil {
		return models.ClassificationResult{}, fmt.Errorf("%w: %w: %w", ErrClassification, ErrModelCall, err)
	}

	raw, err := parseClassifierOutput(content)
	if err != nil {
		c.logger.Warn("Unparseable classifier output",
			zap.Error(err),
			zap.String("content", content),
		)
		return models.ClassificationResult{}, fmt.Errorf("%w: %w", ErrClassification, err)
	}

	result, err := validateClassification(raw)
	if err != nil {
		c.logger.Warn("Classifier output failed validation", zap.Error(err))
		return models.ClassificationResult{}, fmt.Errorf("%w: %w", ErrClassification, err)
	}

	c.logger.Debug("Notification classified",
		zap.Bool("is_valid", result.IsValid),
		zap.String("kind", string(result.Kind)),
		zap.String("category", result.Category),
	)

	return result, nil
}

// parseClassifierOutput locates the single JSON object in the completion and
// unmarshals it. Markdown fences and stray prose around the object are
// tolerated; anything without a parseable object is a failure.
func parseClassifierOutput(content string) (rawClassification, error) {
	content = strings.TrimSpace(content)

	jsonStart := strings.Index(content, "{")
	jsonEnd := strings.LastIndex(content, "}")
	if jsonStart == -1 || jsonEnd == -1 || jsonEnd < jsonStart {
		return rawClassification{}, fmt.Errorf("no JSON object in response: %q", content)
	}

	jsonStr := content[jsonStart : jsonEnd+1]

	var raw rawClassification
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		// Strip markdown code fences and retry once.
		jsonStr = strings.TrimSpace(jsonStr)
		jsonStr = strings.TrimPrefix(jsonStr, "```json")
		jsonStr = strings.TrimPrefix(jsonStr, "```")
		jsonStr = strings.TrimSuffix(jsonStr, "```")
		jsonStr = strings.TrimSpace(jsonStr)

		if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
			return rawClassification{}, fmt.Errorf("failed to parse JSON response: %w", err)
		}
	}

	return raw, nil
}

// validateClassification is the explicit coercion layer between raw model
// output and a ClassificationResult. The model is never trusted: enum
// membership, amount range and timestamp format are all checked here, and any
// violation is a classification failure rather than a zero-amount entry.
func validateClassification(raw rawClassification) (models.ClassificationResult, error) {
	result := models.ClassificationResult{
		IsValid:     raw.IsValid,
		Amount:      raw.Amount,
		Description: strings.TrimSpace(raw.Description),
		Category:    strings.TrimSpace(raw.Category),
	}

	// Invalid events carry no obligations beyond the flag itself.
	if !raw.IsValid {
		return result, nil
	}

	kind := strings.ToLower(strings.TrimSpace(raw.Kind))
	if !models.ValidTransactionKind(kind) {
		return models.ClassificationResult{}, fmt.Errorf("unknown transaction kind %q", raw.Kind)
	}
	result.Kind = models.TransactionKind(kind)

	if result.Kind == models.KindIgnore {
		return result, nil
	}

	if raw.Amount.IsNegative() {
		return models.ClassificationResult{}, fmt.Errorf("negative amount %s", raw.Amount)
	}

	if !models.KnownCategory(result.Category) {
		result.Category = models.CategoryFallback
	}

	if result.Kind == models.KindExpense {
		method := strings.ToLower(strings.TrimSpace(raw.PaymentMethod))
		if !models.ValidPaymentMethod(method) {
			return models.ClassificationResult{}, fmt.Errorf("unknown payment method %q", raw.PaymentMethod)
		}
		result.PaymentMethod = models.PaymentMethod(method)
	}

	if occurred := strings.TrimSpace(raw.OccurredAt); occurred != "" {
		ts, err := parseTimestamp(occurred)
		if err != nil {
			return models.ClassificationResult{}, fmt.Errorf("bad occurred_at %q: %w", raw.OccurredAt, err)
		}
		result.OccurredAt = ts
	}

	return result, nil
}

func parseTimestamp(s string) (time.Time, error) {
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	var lastErr error
	for _, layout := range layouts {
		ts, err := time.Parse(layout, s)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
