package predicate

import (
	"context"
	"encoding/json"

	"structnotify/internal/broker"
	"structnotify/internal/logger"
	pkgerrors "structnotify/pkg/errors"
	"structnotify/pkg/metrics"
)

type service struct {
	repo                Repository
	configEventProducer *ConfigEventProducer
	logger              logger.Logger
}

type ServiceOption func(*service)

func WithConfigEvents(configEventProducer *ConfigEventProducer) ServiceOption {
	return func(s *service) {
		s.configEventProducer = configEventProducer
	}
}

func NewService(repo Repository, log logger.Logger, opts ...ServiceOption) Service {
	s := &service{
		repo:   repo,
		logger: log,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *service) CreatePredicate(ctx context.Context, req CreatePredicateRequest) (*Predicate, error) {
	if err := ValidatePredicate(req); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrValidation)
	}

	p := &Predicate{
		Schema:         req.Schema,
		Field:          req.Field,
		Operator:       req.Operator,
		Value:          req.Value,
		Filters:        req.Filters,
		UsersAndGroups: req.UsersAndGroups,
		Message:        req.Message,
		Expression:     req.Expression,
		Enabled:        getEnabledValue(req.Enabled),
	}

	if err := s.repo.CreatePredicate(ctx, p); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	s.publishEvent(ctx, broker.EventTypeCreated, p)
	s.refreshActiveGauge(ctx)

	return p, nil
}

func (s *service) ListPredicates(ctx context.Context) ([]Predicate, error) {
	predicates, err := s.repo.ListPredicates(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	return predicates, nil
}

func (s *service) GetPredicate(ctx context.Context, id string) (*Predicate, error) {
	p, err := s.repo.GetPredicate(ctx, id)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, err
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	return p, nil
}

func (s *service) UpdatePredicate(ctx context.Context, id string, req UpdatePredicateRequest) (*Predicate, error) {
	if err := ValidateUpdatePredicate(req); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrValidation)
	}

	p, err := s.repo.GetPredicate(ctx, id)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, err
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	applyUpdate(p, req)

	// Operator and value may have changed independently, check the merged pair.
	if err := ValidateOperatorValue(p.Operator, p.Value); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrValidation)
	}

	if err := s.repo.UpdatePredicate(ctx, p); err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, err
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	s.publishEvent(ctx, broker.EventTypeUpdated, p)
	s.refreshActiveGauge(ctx)

	return p, nil
}

func (s *service) DeletePredicate(ctx context.Context, id string) error {
	p, err := s.repo.GetPredicate(ctx, id)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return err
		}
		return pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	if err := s.repo.DeletePredicate(ctx, id); err != nil {
		if pkgerrors.IsNotFound(err) {
			return err
		}
		return pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	s.publishEvent(ctx, broker.EventTypeDeleted, p)
	s.refreshActiveGauge(ctx)

	return nil
}

func (s *service) BackingSchemas(ctx context.Context) ([]string, error) {
	schemas, err := s.repo.BackingSchemas(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	return schemas, nil
}

func (s *service) publishEvent(ctx context.Context, eventType string, p *Predicate) {
	if s.configEventProducer == nil {
		return
	}

	payload, err := predicateToMap(p)
	if err != nil {
		payload = nil
	}

	if err := s.configEventProducer.PublishPredicateEvent(ctx, eventType, p.ID, payload); err != nil {
		s.logger.WarnwCtx(ctx, "Failed to publish predicate event",
			"error", err,
			"event_type", eventType,
			"predicate_id", p.ID,
		)
	}
}

func (s *service) refreshActiveGauge(ctx context.Context) {
	predicates, err := s.repo.ListPredicates(ctx)
	if err != nil {
		return
	}
	active := 0
	for _, p := range predicates {
		if p.Enabled {
			active++
		}
	}
	metrics.SetActivePredicates(active)
}

func applyUpdate(p *Predicate, req UpdatePredicateRequest) {
	if req.Schema != nil {
		p.Schema = *req.Schema
	}
	if req.Field != nil {
		p.Field = *req.Field
	}
	if req.Operator != nil {
		p.Operator = *req.Operator
	}
	if req.Value != nil {
		p.Value = *req.Value
	}
	if req.Filters != nil {
		p.Filters = *req.Filters
	}
	if req.UsersAndGroups != nil {
		p.UsersAndGroups = *req.UsersAndGroups
	}
	if req.Message != nil {
		p.Message = *req.Message
	}
	if req.Expression != nil {
		p.Expression = *req.Expression
	}
	if req.Enabled != nil {
		p.Enabled = *req.Enabled
	}
}

func predicateToMap(p *Predicate) (map[string]interface{}, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	var result map[string]interface{}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func getEnabledValue(reqEnabled *bool) bool {
	if reqEnabled == nil {
		return true
	}
	return *reqEnabled
}
