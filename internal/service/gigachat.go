package service

import (
	"context"
	"fmt"

	"granaflow/pkg/config"

	"github.com/Role1776/gigago"
	"go.uber.org/zap"
)

// GigaChatCompleter adapts the GigaChat client to the Completer interface the
// classifier consumes. Low temperature keeps the JSON-only extraction as
// deterministic as the provider allows.
type GigaChatCompleter struct {
	client *gigago.Client
	model  *gigago.GenerativeModel
	logger *zap.Logger
}

func NewGigaChatCompleter(cfg *config.GigaChatConfig, temperature float64, logger *zap.Logger) (*GigaChatCompleter, error) {
	ctx := context.Background()

	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.Temperature = temperature

	return &GigaChatCompleter{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

func (g *GigaChatCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	g.model.SystemInstruction = system

	resp, err := g.model.Generate(ctx, []gigago.Message{
		{Role: gigago.RoleUser, Content: user},
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from LLM")
	}

	return resp.Choices[0].Message.Content, nil
}

func (g *GigaChatCompleter) Close() error {
	if g.client != nil {
		g.client.Close()
	}
	return nil
}
