// Package query evaluates jq filters over arrowgram documents such as a
// computed layout.
package query

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/itchyny/gojq"
)

// Compile parses and compiles a jq expression. The environment is empty, so
// $ENV and env expose nothing from the host.
func Compile(expression string) (*gojq.Code, error) {
	if expression == "" {
		return nil, fmt.Errorf("empty jq expression")
	}
	q, err := gojq.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("jq parse error in %q: %w", expression, err)
	}
	code, err := gojq.Compile(q, gojq.WithEnvironLoader(func() []string { return nil }))
	if err != nil {
		return nil, fmt.Errorf("jq compile error in %q: %w", expression, err)
	}
	return code, nil
}

// Document converts v to the generic JSON form jq operates on.
func Document(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Run evaluates expression against v and returns every output in order.
func Run(ctx context.Context, expression string, v any) ([]any, error) {
	code, err := Compile(expression)
	if err != nil {
		return nil, err
	}
	doc, err := Document(v)
	if err != nil {
		return nil, fmt.Errorf("prepare document: %w", err)
	}

	var results []any
	iter := code.RunWithContext(ctx, doc)
	for {
		val, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := val.(error); isErr {
			return nil, fmt.Errorf("jq evaluation failed for %q: %w", expression, err)
		}
		results = append(results, val)
	}
	return results, nil
}
