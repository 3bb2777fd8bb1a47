package retry_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aretw0/boardgen/pkg/domain"
	"github.com/aretw0/boardgen/pkg/retry"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want retry.Class
	}{
		{"network", errors.New("connection reset by peer"), retry.Transient},
		{"deadline", context.DeadlineExceeded, retry.Transient},
		{"5xx", &domain.TransientProviderError{StatusCode: 503, Err: errors.New("unavailable")}, retry.Transient},
		{"429", retry.StatusError(429, errors.New("slow down")), retry.Transient},
		{"400", retry.StatusError(400, errors.New("bad prompt")), retry.Terminal},
		{"401 wrapped", fmt.Errorf("openai: %w", retry.StatusError(401, errors.New("no key"))), retry.Terminal},
		{"validation", &domain.ValidationError{Err: errors.New("empty topic")}, retry.Terminal},
		{"offline", &domain.OfflineError{}, retry.Terminal},
		{"canceled", fmt.Errorf("call: %w", context.Canceled), retry.Terminal},
		{"malformed", &domain.MalformedResponseError{Scope: domain.BoardScope(), Reason: "no json"}, retry.Malformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := retry.Classify(tt.err)
			assert.Equal(t, tt.want, got, "class %s", got)
		})
	}
}

func TestStatusError(t *testing.T) {
	var v *domain.ValidationError
	assert.ErrorAs(t, retry.StatusError(404, errors.New("missing")), &v)
	assert.Equal(t, 404, v.StatusCode)

	var tr *domain.TransientProviderError
	assert.ErrorAs(t, retry.StatusError(500, errors.New("boom")), &tr)
	assert.Equal(t, 500, tr.StatusCode)
}
