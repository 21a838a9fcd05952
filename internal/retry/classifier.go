package retry

import (
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
)

// Classifier decides whether an error is transient ("the store is still
// starting up") or fatal ("the store is misconfigured"). Only transient
// errors are retried.
type Classifier interface {
	IsTransient(err error) bool
}

// PostgresClassifier classifies errors from pgx against PostgreSQL error
// code classes. See https://www.postgresql.org/docs/current/errcodes-appendix.html
type PostgresClassifier struct{}

func NewPostgresClassifier() PostgresClassifier {
	return PostgresClassifier{}
}

func (PostgresClassifier) IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 08 = connection exception, class 53 = insufficient
		// resources, class 57 = operator intervention (includes 57P03
		// "the database system is starting up").
		for _, class := range []string{"08", "53", "57"} {
			if strings.HasPrefix(pgErr.Code, class) {
				return true
			}
		}
		return false
	}

	if isNetworkError(err) {
		return true
	}

	// pgconn wraps dial failures in plain errors, so fall back to
	// message matching for the common not-ready conditions.
	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{
		"connection refused",
		"connection reset",
		"i/o timeout",
		"no such host",
		"network is unreachable",
		"server closed the connection",
		"failed to connect",
		"the database system is starting up",
	} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}

	return false
}

func isNetworkError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.Temporary() || dnsErr.Timeout()
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Temporary() || opErr.Timeout() {
			return true
		}
		return errors.Is(opErr.Err, syscall.ECONNREFUSED) ||
			errors.Is(opErr.Err, syscall.ECONNRESET) ||
			errors.Is(opErr.Err, syscall.ENETUNREACH) ||
			errors.Is(opErr.Err, syscall.EHOSTUNREACH)
	}

	return false
}
