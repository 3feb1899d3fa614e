package i

// Logger is the leveled logger used across services.
type Logger interface {
	Debug(string)
	Info(string)
	Warning(string)
	Error(string)
}
