package archive

import "fmt"

// Common errors
var (
	ErrCodeNotFound       = fmt.Errorf("code not found")
	ErrInvalidInput       = fmt.Errorf("invalid input")
	ErrDatabaseConnection = fmt.Errorf("database connection error")
	ErrTransactionFailed  = fmt.Errorf("transaction failed")
)
