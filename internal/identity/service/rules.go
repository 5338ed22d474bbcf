package service

import (
	"context"
	"errors"
	"log/slog"
	"regexp"

	"github.com/venturemesh/identity/internal/identity/domain"
	"github.com/venturemesh/identity/internal/identity/store"
	"github.com/venturemesh/identity/pkg/idx"
	"github.com/venturemesh/identity/pkg/slogx"
)

var (
	ErrInvalidPattern     = errors.New("rule pattern is not a valid regular expression")
	ErrInvalidContextKind = errors.New("invalid context kind")
	ErrRuleNotFound       = errors.New("context rule not found")
)

// RuleService manages context rules and evaluates them against context
// signals. Evaluation policy: rules for a (user, kind) pair are walked in
// priority order (descending, creation order breaking ties) and the first
// pattern match wins. A rule whose pattern fails to compile is logged and
// skipped so one malformed rule can never block switching for the user.
type RuleService struct {
	Store store.Store
}

// CreateRuleInput carries the fields for a new context rule.
type CreateRuleInput struct {
	PersonaID string
	Kind      domain.ContextKind
	Pattern   string
	Priority  int
}

// CreateRule validates and stores a new rule. The pattern must compile at
// creation time; evaluation still guards against patterns that rot later.
func (s *RuleService) CreateRule(ctx context.Context, userID string, in CreateRuleInput) (domain.ContextRule, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate the context kind.
	if !in.Kind.Valid() {
		return domain.ContextRule{}, ErrInvalidContextKind
	}

	// 2. Validate the pattern compiles. It is stored as a string and
	// compiled lazily at evaluation time, never into a long-lived closure.
	if _, err := regexp.Compile(in.Pattern); err != nil {
		log.Warn("rule creation with invalid pattern",
			slog.String("user_id", userID),
			slog.String("pattern", in.Pattern),
			slog.Any("error", err),
		)
		return domain.ContextRule{}, ErrInvalidPattern
	}

	// 3. The target persona must exist and belong to the caller.
	persona, err := s.Store.Personas().Get(ctx, in.PersonaID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.ContextRule{}, ErrPersonaNotFound
		}
		return domain.ContextRule{}, err
	}
	if persona.UserID != userID {
		return domain.ContextRule{}, ErrNotOwner
	}

	rule := domain.ContextRule{
		ID:        idx.New().String(),
		UserID:    userID,
		PersonaID: in.PersonaID,
		Kind:      in.Kind,
		Pattern:   in.Pattern,
		Priority:  in.Priority,
	}
	if err := s.Store.Rules().Create(ctx, rule); err != nil {
		log.Error("failed to create rule", slog.Any("error", err))
		return domain.ContextRule{}, err
	}

	log.Info("context rule created",
		slog.String("user_id", userID),
		slog.String("rule_id", rule.ID),
		slog.String("kind", string(rule.Kind)),
		slog.Int("priority", rule.Priority),
	)
	return rule, nil
}

// Rules returns every rule the user owns, in priority order.
func (s *RuleService) Rules(ctx context.Context, userID string) ([]domain.ContextRule, error) {
	return s.Store.Rules().ListByUser(ctx, userID)
}

// UpdateRulePriority is the only permitted mutation on an existing rule.
func (s *RuleService) UpdateRulePriority(ctx context.Context, userID, ruleID string, priority int) (domain.ContextRule, error) {
	rule, err := s.getOwned(ctx, userID, ruleID)
	if err != nil {
		return domain.ContextRule{}, err
	}

	if err := s.Store.Rules().UpdatePriority(ctx, ruleID, priority); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.ContextRule{}, ErrRuleNotFound
		}
		return domain.ContextRule{}, err
	}

	rule.Priority = priority
	return rule, nil
}

// DeleteRule removes a rule after an ownership check.
func (s *RuleService) DeleteRule(ctx context.Context, userID, ruleID string) error {
	if _, err := s.getOwned(ctx, userID, ruleID); err != nil {
		return err
	}
	if err := s.Store.Rules().Delete(ctx, ruleID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrRuleNotFound
		}
		return err
	}
	return nil
}

// Evaluate tests a context signal against the user's rules for that kind
// and returns the target persona id of the first match under priority
// order, or "" when nothing matches (caller keeps the current persona).
// Evaluation never returns an error for a bad rule; malformed patterns are
// logged and treated as non-matches.
func (s *RuleService) Evaluate(ctx context.Context, userID string, kind domain.ContextKind, value string) (string, error) {
	log := slogx.FromContext(ctx)

	if !kind.Valid() {
		return "", ErrInvalidContextKind
	}

	// 1. Rules arrive pre-sorted: priority descending, creation order
	// breaking ties.
	rules, err := s.Store.Rules().ListByUserKind(ctx, userID, kind)
	if err != nil {
		return "", err
	}

	// 2. First match wins.
	for _, rule := range rules {
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			log.Warn("skipping rule with invalid pattern",
				slog.String("user_id", userID),
				slog.String("rule_id", rule.ID),
				slog.String("pattern", rule.Pattern),
				slog.Any("error", err),
			)
			continue
		}
		if re.MatchString(value) {
			log.Debug("context rule matched",
				slog.String("user_id", userID),
				slog.String("rule_id", rule.ID),
				slog.String("persona_id", rule.PersonaID),
				slog.String("kind", string(kind)),
			)
			return rule.PersonaID, nil
		}
	}

	return "", nil
}

func (s *RuleService) getOwned(ctx context.Context, userID, ruleID string) (domain.ContextRule, error) {
	rule, err := s.Store.Rules().Get(ctx, ruleID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.ContextRule{}, ErrRuleNotFound
		}
		return domain.ContextRule{}, err
	}
	if rule.UserID != userID {
		return domain.ContextRule{}, ErrNotOwner
	}
	return rule, nil
}
