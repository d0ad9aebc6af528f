package authstate

// Status enumerates the authentication flow states the clients observe.
type Status string

const (
	StatusLoading         Status = "loading"
	StatusAuthenticated   Status = "authenticated"
	StatusUnauthenticated Status = "unauthenticated"
	StatusSuccess         Status = "success"
	StatusError           Status = "error"
)

// State is a tagged value. Success and Error carry a user-facing message,
// the other variants do not.
type State struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

func Loading() State         { return State{Status: StatusLoading} }
func Authenticated() State   { return State{Status: StatusAuthenticated} }
func Unauthenticated() State { return State{Status: StatusUnauthenticated} }

func Success(message string) State {
	return State{Status: StatusSuccess, Message: message}
}

func Error(message string) State {
	return State{Status: StatusError, Message: message}
}

// IsTerminal reports whether the state ends an in-flight operation.
func (s State) IsTerminal() bool {
	return s.Status != StatusLoading
}
