package predicate

import (
	"fmt"
	"strconv"
	"time"

	"structnotify/internal/constants"
	"structnotify/internal/record"
	"structnotify/pkg/cel"
)

var validOperators = map[string]bool{
	constants.OperatorBefore: true,
	constants.OperatorAfter:  true,
	constants.OperatorAt:     true,
}

// ValidatePredicate rejects anything the engine would silently skip at
// evaluation time: unknown operators, non-numeric day counts, malformed
// clock patterns, broken filter lines, and guards that do not compile.
func ValidatePredicate(req CreatePredicateRequest) error {
	if req.Schema == "" {
		return fmt.Errorf("schema is required")
	}
	if req.Field == "" {
		return fmt.Errorf("field is required")
	}
	if err := validateOperator(req.Operator, req.Value); err != nil {
		return err
	}
	if req.UsersAndGroups == "" {
		return fmt.Errorf("users_and_groups is required")
	}
	if req.Message == "" {
		return fmt.Errorf("message is required")
	}
	if err := validateFilters(req.Filters); err != nil {
		return err
	}
	return validateExpression(req.Expression)
}

func ValidateUpdatePredicate(req UpdatePredicateRequest) error {
	if req.Schema != nil && *req.Schema == "" {
		return fmt.Errorf("schema cannot be empty")
	}
	if req.Field != nil && *req.Field == "" {
		return fmt.Errorf("field cannot be empty")
	}
	// Operator and value are checked as a pair against the merged state by
	// the service; here only reject plainly bad input.
	if req.Operator != nil && !validOperators[*req.Operator] {
		return fmt.Errorf("invalid operator: %s. Allowed: before, after, at", *req.Operator)
	}
	if req.Value != nil && *req.Value == "" {
		return fmt.Errorf("value cannot be empty")
	}
	if req.UsersAndGroups != nil && *req.UsersAndGroups == "" {
		return fmt.Errorf("users_and_groups cannot be empty")
	}
	if req.Message != nil && *req.Message == "" {
		return fmt.Errorf("message cannot be empty")
	}
	if req.Filters != nil {
		if err := validateFilters(*req.Filters); err != nil {
			return err
		}
	}
	if req.Expression != nil {
		return validateExpression(*req.Expression)
	}
	return nil
}

// ValidateOperatorValue checks a merged operator/value pair. The service
// calls it after applying a partial update, since operator and value can
// change independently.
func ValidateOperatorValue(operator, value string) error {
	return validateOperator(operator, value)
}

func validateOperator(operator, value string) error {
	if !validOperators[operator] {
		return fmt.Errorf("invalid operator: %s. Allowed: before, after, at", operator)
	}

	switch operator {
	case constants.OperatorBefore, constants.OperatorAfter:
		days, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("value must be a whole number of days for operator %q: %s", operator, value)
		}
		if days < 0 {
			return fmt.Errorf("value must be non-negative for operator %q: %d", operator, days)
		}
	case constants.OperatorAt:
		if _, err := time.Parse("15:04:05", value); err != nil {
			if _, err := time.Parse("15:04", value); err != nil {
				return fmt.Errorf("value must be a clock time (HH:MM or HH:MM:SS) for operator %q: %s", operator, value)
			}
		}
	}

	return nil
}

func validateFilters(filters string) error {
	if _, err := record.ParseFilterText(filters); err != nil {
		return fmt.Errorf("invalid filters: %w", err)
	}
	return nil
}

func validateExpression(expression string) error {
	if expression == "" {
		return nil
	}

	evaluator, err := cel.NewEvaluator()
	if err != nil {
		return fmt.Errorf("failed to create CEL evaluator: %w", err)
	}

	if err := evaluator.ValidateGuardExpression(expression); err != nil {
		return fmt.Errorf("invalid guard expression: %w", err)
	}

	return nil
}
