// Package cel compiles and evaluates guard expressions attached to
// predicates. A guard sees the row being evaluated: its schema, row id, and
// field values.
package cel

import (
	"context"
	"fmt"

	"github.com/google/cel-go/cel"
)

type Evaluator struct {
	env *cel.Env
}

func NewEvaluator() (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("schema", cel.StringType),
		cel.Variable("row_id", cel.StringType),
		// First raw value per field label.
		cel.Variable("fields", cel.MapType(cel.StringType, cel.StringType)),
		// All raw values per field label, for multi-value columns.
		cel.Variable("lists", cel.MapType(cel.StringType, cel.ListType(cel.StringType))),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &Evaluator{env: env}, nil
}

// ValidateGuardExpression checks that the expression compiles and yields a
// boolean. Called at predicate write time so a bad guard never reaches the
// evaluation path.
func (e *Evaluator) ValidateGuardExpression(expression string) error {
	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("CEL expression validation failed: %w", issues.Err())
	}

	if ast.OutputType() != cel.BoolType {
		return fmt.Errorf("guard expression must return bool, got %v", ast.OutputType())
	}

	return nil
}

// EvaluateGuard runs the expression against one row's values. fields holds
// the first raw value per label, lists every raw value per label.
func (e *Evaluator) EvaluateGuard(ctx context.Context, expression, schema, rowID string, fields map[string]string, lists map[string][]string) (bool, error) {
	program, err := e.CompileExpression(expression)
	if err != nil {
		return false, err
	}

	vars := map[string]interface{}{
		"schema": schema,
		"row_id": rowID,
		"fields": fields,
		"lists":  lists,
	}

	result, _, err := program.ContextEval(ctx, vars)
	if err != nil {
		return false, fmt.Errorf("failed to evaluate CEL expression: %w", err)
	}

	boolVal, ok := result.Value().(bool)
	if !ok {
		return false, fmt.Errorf("CEL expression did not return bool, got %T", result.Value())
	}

	return boolVal, nil
}

func (e *Evaluator) CompileExpression(expression string) (cel.Program, error) {
	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile CEL expression: %w", issues.Err())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL program: %w", err)
	}

	return program, nil
}
