// Package service drives question sessions to completion: it mediates
// between the reasoning service and the toolset, and emits the ordered
// event stream consumed by the transport.
package service

import (
	"go.uber.org/zap"

	"github.com/seetohjy/hdb-insights/internal/adapter/llm"
	"github.com/seetohjy/hdb-insights/internal/config"
	"github.com/seetohjy/hdb-insights/internal/tools"
)

type Service struct {
	client  llm.ReasoningClient
	toolset *tools.Toolset
	config  *config.Config
	log     *zap.Logger
}

func New(client llm.ReasoningClient, toolset *tools.Toolset, cfg *config.Config, log *zap.Logger) *Service {
	return &Service{
		client:  client,
		toolset: toolset,
		config:  cfg,
		log:     log,
	}
}

// Tools exposes the toolset for the direct tool endpoints.
func (s *Service) Tools() *tools.Toolset {
	return s.toolset
}
