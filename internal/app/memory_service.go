package app

import (
	"context"
	"fmt"
	"time"

	"github.com/example/steward/internal/ports/primary"
	"github.com/example/steward/internal/ports/secondary"
	"github.com/example/steward/internal/redact"
)

// DefaultRecallLimit bounds recall and search when the caller passes 0.
const DefaultRecallLimit = 50

// MemoryServiceImpl implements the MemoryService interface. Every write path
// runs content through the redaction filter before it touches the store.
type MemoryServiceImpl struct {
	messages  secondary.MessageRepository
	facts     secondary.FactRepository
	summaries secondary.SummaryRepository
	events    secondary.MemoryEventRepository
	search    secondary.SearchIndex
	filter    *redact.Filter
}

// NewMemoryService creates a new MemoryService with injected dependencies.
func NewMemoryService(
	messages secondary.MessageRepository,
	facts secondary.FactRepository,
	summaries secondary.SummaryRepository,
	events secondary.MemoryEventRepository,
	search secondary.SearchIndex,
	filter *redact.Filter,
) *MemoryServiceImpl {
	return &MemoryServiceImpl{
		messages:  messages,
		facts:     facts,
		summaries: summaries,
		events:    events,
		search:    search,
		filter:    filter,
	}
}

// Remember redacts and stores a message.
func (s *MemoryServiceImpl) Remember(ctx context.Context, sessionID, namespace, role, content string, metadata map[string]any) (int64, error) {
	msg := &secondary.MessageRecord{
		SessionID: sessionID,
		Namespace: namespace,
		Role:      role,
		Content:   s.filter.Redact(content),
		Metadata:  metadata,
	}
	id, err := s.messages.Insert(ctx, msg)
	if err != nil {
		return 0, fmt.Errorf("failed to store message: %w", err)
	}
	return id, nil
}

// Recall returns up to limit recent messages, oldest first.
func (s *MemoryServiceImpl) Recall(ctx context.Context, sessionID, namespace string, limit int) ([]*secondary.MessageRecord, error) {
	if limit <= 0 {
		limit = DefaultRecallLimit
	}
	return s.messages.Recent(ctx, sessionID, namespace, limit)
}

// RecordFact redacts and stores a fact.
func (s *MemoryServiceImpl) RecordFact(ctx context.Context, fact primary.FactInput) (int64, error) {
	record := &secondary.FactRecord{
		SessionID:    fact.SessionID,
		Namespace:    fact.Namespace,
		Text:         s.filter.Redact(fact.Text),
		Importance:   fact.Importance,
		Tags:         fact.Tags,
		SupersedesID: fact.SupersedesID,
	}
	id, err := s.facts.Insert(ctx, record)
	if err != nil {
		return 0, fmt.Errorf("failed to store fact: %w", err)
	}
	return id, nil
}

// ActiveFacts returns active facts by importance then recency.
func (s *MemoryServiceImpl) ActiveFacts(ctx context.Context, sessionID, namespace string, limit int) ([]*secondary.FactRecord, error) {
	if limit <= 0 {
		limit = DefaultRecallLimit
	}
	return s.facts.Active(ctx, sessionID, namespace, limit)
}

// WriteSummary redacts and upserts the summary for (session, namespace, scope).
func (s *MemoryServiceImpl) WriteSummary(ctx context.Context, sessionID, namespace, scope, text string) (int64, error) {
	summary := &secondary.SummaryRecord{
		SessionID: sessionID,
		Namespace: namespace,
		Scope:     scope,
		Text:      s.filter.Redact(text),
	}
	id, err := s.summaries.Upsert(ctx, summary)
	if err != nil {
		return 0, fmt.Errorf("failed to store summary: %w", err)
	}
	return id, nil
}

// Summary returns the current summary for the triple, or nil.
func (s *MemoryServiceImpl) Summary(ctx context.Context, sessionID, namespace, scope string) (*secondary.SummaryRecord, error) {
	return s.summaries.Get(ctx, sessionID, namespace, scope)
}

// SearchMessages searches message content.
func (s *MemoryServiceImpl) SearchMessages(ctx context.Context, sessionID, namespace, query string, limit int) ([]*secondary.MessageRecord, error) {
	if limit <= 0 {
		limit = DefaultRecallLimit
	}
	return s.search.SearchMessages(ctx, sessionID, namespace, query, limit)
}

// SearchFacts searches active fact text.
func (s *MemoryServiceImpl) SearchFacts(ctx context.Context, sessionID, namespace, query string, limit int) ([]*secondary.FactRecord, error) {
	if limit <= 0 {
		limit = DefaultRecallLimit
	}
	return s.search.SearchFacts(ctx, sessionID, namespace, query, limit)
}

// Purge removes session memory by namespace and/or age. Summaries only take
// the namespace filter; a pure age-based purge leaves them alone.
func (s *MemoryServiceImpl) Purge(ctx context.Context, req primary.PurgeRequest) (*primary.PurgeResult, error) {
	filter := secondary.PurgeFilter{Namespace: req.Namespace}
	if req.OlderThanDays > 0 {
		cutoff := time.Now().UTC().AddDate(0, 0, -req.OlderThanDays)
		filter.OlderThan = cutoff.Format(time.RFC3339)
	}

	result := &primary.PurgeResult{}
	var err error

	if result.Messages, err = s.messages.Purge(ctx, filter); err != nil {
		return nil, fmt.Errorf("failed to purge messages: %w", err)
	}
	if result.Facts, err = s.facts.Purge(ctx, filter); err != nil {
		return nil, fmt.Errorf("failed to purge facts: %w", err)
	}
	if filter.OlderThan == "" {
		if result.Summaries, err = s.summaries.Purge(ctx, req.Namespace); err != nil {
			return nil, fmt.Errorf("failed to purge summaries: %w", err)
		}
	}

	if err := s.events.Append(ctx, "purge", map[string]any{
		"namespace": req.Namespace,
		"messages":  result.Messages,
		"facts":     result.Facts,
		"summaries": result.Summaries,
	}); err != nil {
		return nil, fmt.Errorf("failed to record purge event: %w", err)
	}

	return result, nil
}

// PurgeSuperseded garbage-collects superseded facts.
func (s *MemoryServiceImpl) PurgeSuperseded(ctx context.Context, sessionID, namespace string) (int64, error) {
	return s.facts.PurgeSuperseded(ctx, sessionID, namespace)
}

// Ensure MemoryServiceImpl implements the interface
var _ primary.MemoryService = (*MemoryServiceImpl)(nil)
