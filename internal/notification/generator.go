package notification

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"structnotify/internal/constants"
	"structnotify/internal/directory"
	"structnotify/internal/logger"
	"structnotify/internal/predicate"
	"structnotify/internal/record"
	"structnotify/pkg/cel"
	pkgerrors "structnotify/pkg/errors"
	"structnotify/pkg/logging"
	"structnotify/pkg/metrics"
	"structnotify/pkg/tracing"
)

type PredicateLister interface {
	ListPredicates(ctx context.Context) ([]predicate.Predicate, error)
}

// Generator drives one gather pass: load every predicate, query the record
// source, and emit events for rows that currently satisfy their condition
// and address the target user.
//
// Predicates are evaluated concurrently but results keep predicate order,
// so repeated passes over unchanged data produce identical event lists.
type Generator struct {
	predicates  PredicateLister
	source      record.Source
	directory   directory.Directory
	guards      *cel.Evaluator
	logger      logger.Logger
	concurrency int
}

func NewGenerator(predicates PredicateLister, source record.Source, dir directory.Directory, log logger.Logger, concurrency int) (*Generator, error) {
	guards, err := cel.NewEvaluator()
	if err != nil {
		return nil, err
	}

	if concurrency <= 0 {
		concurrency = constants.DefaultGatherConcurrency
	}

	return &Generator{
		predicates:  predicates,
		source:      source,
		directory:   dir,
		guards:      guards,
		logger:      log,
		concurrency: concurrency,
	}, nil
}

// Generate evaluates every enabled predicate for targetUser at now. One
// predicate's failure never aborts the pass: it is logged, counted, and the
// remaining predicates still run.
func (g *Generator) Generate(ctx context.Context, targetUser string, now time.Time) ([]Event, error) {
	ctx, span := tracing.GetTracer("notification").Start(ctx, "notification.generate")
	defer span.End()

	start := time.Now()

	predicates, err := g.predicates.ListPredicates(ctx)
	if err != nil {
		metrics.ObserveGatherDuration(time.Since(start), "error")
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrConfiguration)
	}

	users, err := g.directory.AllUsers(ctx)
	if err != nil {
		metrics.ObserveGatherDuration(time.Since(start), "error")
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrLookup)
	}

	results := make([][]Event, len(predicates))

	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(g.concurrency)

	for i, p := range predicates {
		i, p := i, p
		grp.Go(func() error {
			results[i] = g.evaluatePredicate(grpCtx, p, targetUser, users, now)
			return nil
		})
	}

	// Workers never return errors; Wait only surfaces context cancellation.
	if err := grp.Wait(); err != nil {
		metrics.ObserveGatherDuration(time.Since(start), "error")
		return nil, err
	}

	var events []Event
	for _, result := range results {
		events = append(events, result...)
	}

	metrics.ObserveGatherDuration(time.Since(start), "success")
	return events, nil
}

// evaluatePredicate produces the events one predicate contributes. Errors
// are scoped here: a query or lookup failure yields zero events for this
// predicate, an unparseable date skips just that row.
func (g *Generator) evaluatePredicate(ctx context.Context, p predicate.Predicate, targetUser string, users map[string]directory.UserInfo, now time.Time) []Event {
	if !p.Enabled {
		return nil
	}

	ctx = logging.WithPredicateID(ctx, p.ID)

	rows, err := g.queryRows(ctx, p)
	if err != nil {
		metrics.PredicatesEvaluatedTotal.WithLabelValues("error").Inc()
		metrics.IncPredicateError("query")
		g.logger.ErrorwCtx(ctx, "Record source query failed, skipping predicate",
			"error", err,
			"schema", p.Schema,
		)
		return nil
	}
	metrics.RowsMatchedTotal.Add(float64(len(rows)))

	var events []Event
	for _, row := range rows {
		recipients := ResolveRecipients(p.UsersAndGroups, row, users)
		if _, ok := recipients[targetUser]; !ok {
			continue
		}

		if p.Expression != "" {
			pass, err := g.evaluateGuard(ctx, p, row)
			if err != nil {
				metrics.IncPredicateError("guard")
				g.logger.WarnwCtx(ctx, "Guard expression failed, skipping row",
					"error", err,
					"row_id", row.ID,
				)
				continue
			}
			if !pass {
				continue
			}
		}

		value, ok := row.Lookup(p.Field)
		if !ok {
			metrics.PredicatesEvaluatedTotal.WithLabelValues("error").Inc()
			metrics.IncPredicateError("lookup")
			g.logger.ErrorwCtx(ctx, "Field label absent from query results, skipping predicate",
				"field", p.Field,
				"schema", p.Schema,
			)
			return nil
		}
		rawDate := value.FirstRaw()

		holds, err := EvaluateCondition(rawDate, p.Operator, p.Value, now)
		if err != nil {
			metrics.IncPredicateError("parse")
			g.logger.WarnwCtx(ctx, "Unparseable date value, skipping row",
				"error", err,
				"row_id", row.ID,
				"raw_date", rawDate,
			)
			continue
		}
		if !holds {
			continue
		}

		message := SubstituteMessage(p.Message, row)
		timestamp, err := ParseTimestamp(rawDate)
		if err != nil {
			timestamp = 0
		}

		events = append(events, Event{
			Plugin:    constants.SourceName,
			ID:        p.ID + ":" + p.Schema + ":" + row.ID + ":" + rawDate,
			Full:      message,
			Brief:     message,
			Timestamp: timestamp,
		})
		metrics.EventsGeneratedTotal.Inc()
	}

	metrics.PredicatesEvaluatedTotal.WithLabelValues("success").Inc()
	return events
}

// queryRows assembles and executes the record source query for one
// predicate: every declared column of each listed schema, the synthetic
// columns, and the predicate's parsed filter lines.
func (g *Generator) queryRows(ctx context.Context, p predicate.Predicate) ([]record.Row, error) {
	search := record.NewSearch(g.source)

	for _, schema := range strings.Split(p.Schema, ",") {
		schema = strings.TrimSpace(schema)
		if schema == "" {
			continue
		}
		search.AddSchema(schema)
		search.AddColumn(schema + ".*")
	}
	for _, col := range constants.SyntheticColumns {
		search.AddColumn(col)
	}

	clauses, err := record.ParseFilterText(p.Filters)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrQuery)
	}
	for _, clause := range clauses {
		search.AddFilter(clause.Column, clause.Value, clause.Comparator, "AND")
	}

	rows, err := search.Execute(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrQuery)
	}
	return rows, nil
}

func (g *Generator) evaluateGuard(ctx context.Context, p predicate.Predicate, row record.Row) (bool, error) {
	fields := make(map[string]string)
	lists := make(map[string][]string)
	for _, v := range row.Values {
		label := v.Column.Label
		if _, ok := fields[label]; !ok {
			fields[label] = v.FirstRaw()
			lists[label] = v.Raw
		}
	}

	return g.guards.EvaluateGuard(ctx, p.Expression, p.Schema, row.ID, fields, lists)
}
