package core

// Logger is implemented by the logging services.
// args may hold errors, maps of extra data and the session identity of the caller.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Person identifies the human behind a logged event.
type Person struct {
	ID       string
	Username string
	Email    string
}

// Personer is implemented by values that can tell who they belong to.
type Personer interface {
	Person() Person
}
