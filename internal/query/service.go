// Package query applies jq filters to decoded API responses so large
// payloads can be narrowed before display.
package query

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/itchyny/gojq"
)

// Service compiles and runs jq filters, caching compiled programs.
type Service struct {
	mu        sync.RWMutex
	codeCache map[string]*gojq.Code
}

// NewService creates an empty filter service.
func NewService() *Service {
	return &Service{codeCache: map[string]*gojq.Code{}}
}

// Apply runs a jq filter over data and returns the results pretty-printed
// with 2-space indentation, one result per document.
func (s *Service) Apply(ctx context.Context, filter string, data any) (string, error) {
	code, err := s.compiled(filter)
	if err != nil {
		return "", err
	}

	var results []any
	iter := code.RunWithContext(ctx, data)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if err, isErr := v.(error); isErr {
			return "", err
		}
		results = append(results, v)
	}

	return formatResults(results), nil
}

func formatResults(results []any) string {
	var buf bytes.Buffer
	for i, r := range results {
		if i > 0 {
			buf.WriteByte('\n')
		}
		b, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			buf.WriteString(fmt.Sprintf("%v", r))
		} else {
			buf.Write(b)
		}
	}
	return buf.String()
}

func (s *Service) compiled(filter string) (*gojq.Code, error) {
	s.mu.RLock()
	if code, ok := s.codeCache[filter]; ok {
		s.mu.RUnlock()
		return code, nil
	}
	s.mu.RUnlock()

	q, err := gojq.Parse(filter)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	code, err := gojq.Compile(q)
	if err != nil {
		return nil, fmt.Errorf("compile error: %w", err)
	}

	s.mu.Lock()
	if existing, ok := s.codeCache[filter]; ok {
		s.mu.Unlock()
		return existing, nil
	}
	s.codeCache[filter] = code
	s.mu.Unlock()
	return code, nil
}
