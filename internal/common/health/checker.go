package health

// Checker reports whether a component of the application is able to accept work.
type Checker interface {
	Check() error
}
