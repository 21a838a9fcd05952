package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestExecutor_SucceedsAfterTransientFailures(t *testing.T) {
	executor := NewExecutor(NewPostgresClassifier(), time.Millisecond, Unlimited)

	// The store rejects the first two attempts while starting up, then
	// accepts the third.
	attempts := 0
	var retries []int
	err := executor.
		WithOnRetry(func(attempt int, err error) {
			retries = append(retries, attempt)
		}).
		Execute(context.Background(), func(ctx context.Context) error {
			attempts++
			switch attempts {
			case 1:
				return errors.New("connection refused")
			case 2:
				return &pgconn.PgError{Code: "57P03", Message: "the database system is starting up"}
			default:
				return nil
			}
		})

	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []int{1, 2}, retries)
}

func TestExecutor_FatalErrorIsNotRetried(t *testing.T) {
	executor := NewExecutor(NewPostgresClassifier(), time.Millisecond, Unlimited)

	fatal := &pgconn.PgError{Code: "28P01", Message: "password authentication failed"}
	attempts := 0
	err := executor.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		return fatal
	})

	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, attempts)
}

func TestExecutor_StopsWhenAttemptsExhausted(t *testing.T) {
	executor := NewExecutor(NewPostgresClassifier(), time.Millisecond, 2)

	transient := errors.New("connection refused")
	attempts := 0
	err := executor.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		return transient
	})

	assert.ErrorIs(t, err, transient)
	assert.Equal(t, 3, attempts, "1 initial attempt + 2 retries")
}

func TestExecutor_ContextCancellationStopsWaiting(t *testing.T) {
	executor := NewExecutor(NewPostgresClassifier(), time.Hour, Unlimited)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := executor.Execute(ctx, func(ctx context.Context) error {
		return errors.New("connection refused")
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestPostgresClassifier_IsTransient(t *testing.T) {
	classifier := NewPostgresClassifier()

	tests := []struct {
		name      string
		err       error
		transient bool
	}{
		{"nil", nil, false},
		{"starting up", &pgconn.PgError{Code: "57P03"}, true},
		{"connection failure", &pgconn.PgError{Code: "08006"}, true},
		{"too many connections", &pgconn.PgError{Code: "53300"}, true},
		{"auth failure", &pgconn.PgError{Code: "28P01"}, false},
		{"syntax error", &pgconn.PgError{Code: "42601"}, false},
		{"duplicate table", &pgconn.PgError{Code: "42P07"}, false},
		{"dial refused", errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"), true},
		{"unknown host", errors.New("lookup db: no such host"), true},
		{"plain error", errors.New("something else entirely"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.transient, classifier.IsTransient(tt.err))
		})
	}
}
