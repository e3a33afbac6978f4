package domain

import "context"

// Specification is a composable business-rule predicate over a candidate.
// Implementations are stateless and safe to share across tenants: any tenant
// scoping travels inside the candidate, never inside the specification.
// Evaluation takes a context because a predicate may need a lookup.
type Specification[T any] interface {
	IsSatisfiedBy(ctx context.Context, candidate T) (bool, error)
}

// SpecFunc adapts a plain function to a Specification.
type SpecFunc[T any] func(ctx context.Context, candidate T) (bool, error)

func (f SpecFunc[T]) IsSatisfiedBy(ctx context.Context, candidate T) (bool, error) {
	return f(ctx, candidate)
}

// And returns a specification satisfied when both operands are. The right
// operand is not evaluated when the left already failed.
func And[T any](left, right Specification[T]) Specification[T] {
	return andSpec[T]{left: left, right: right}
}

// Or returns a specification satisfied when either operand is. The right
// operand is not evaluated when the left already passed.
func Or[T any](left, right Specification[T]) Specification[T] {
	return orSpec[T]{left: left, right: right}
}

// Not inverts a specification.
func Not[T any](spec Specification[T]) Specification[T] {
	return notSpec[T]{spec: spec}
}

type andSpec[T any] struct {
	left, right Specification[T]
}

func (s andSpec[T]) IsSatisfiedBy(ctx context.Context, candidate T) (bool, error) {
	ok, err := s.left.IsSatisfiedBy(ctx, candidate)
	if err != nil || !ok {
		return false, err
	}
	return s.right.IsSatisfiedBy(ctx, candidate)
}

type orSpec[T any] struct {
	left, right Specification[T]
}

func (s orSpec[T]) IsSatisfiedBy(ctx context.Context, candidate T) (bool, error) {
	ok, err := s.left.IsSatisfiedBy(ctx, candidate)
	if err != nil || ok {
		return ok, err
	}
	return s.right.IsSatisfiedBy(ctx, candidate)
}

type notSpec[T any] struct {
	spec Specification[T]
}

func (s notSpec[T]) IsSatisfiedBy(ctx context.Context, candidate T) (bool, error) {
	ok, err := s.spec.IsSatisfiedBy(ctx, candidate)
	if err != nil {
		return false, err
	}
	return !ok, nil
}
