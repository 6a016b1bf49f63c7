package database

// Logger defines the logging operations a Connection uses when a logger is
// attached with WithLogger or SetLogger. *logger.Logger satisfies it.
//
//go:generate mockgen -source=logger.go -destination=mock_logger.go -package=database
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
	Fatal(msg string, err error, fields ...map[string]interface{})
}
