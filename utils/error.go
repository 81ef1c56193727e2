package utils

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

var ErrorRecordNotFound = errors.New("record not found")

// ErrorAlreadyReconciled is returned when a reconciliation is attempted on a
// bank movement that is no longer pending. At most one reconciliation may
// ever commit per movement.
var ErrorAlreadyReconciled = errors.New("bank movement already reconciled")

// ErrorValidation is the base error wrapped by all input-validation failures.
var ErrorValidation = errors.New("validation failed")

const (
	mysqlErrDeadlock    = 1213
	mysqlErrLockTimeout = 1205
)

// IsRetryableDBError reports whether err is a MySQL deadlock or lock-wait
// timeout. The caller decides whether to retry; nothing in this codebase
// retries automatically.
func IsRetryableDBError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlErrDeadlock || mysqlErr.Number == mysqlErrLockTimeout
	}
	return false
}
