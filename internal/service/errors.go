package service

// ErrorKind classifies why a fetch failed
type ErrorKind int

const (
	KindUpstream ErrorKind = iota
	KindAuth
	KindRateLimit
	KindTransient
)

func (kind ErrorKind) String() string {
	switch kind {
	case KindAuth:
		return "auth"
	case KindRateLimit:
		return "rate_limit"
	case KindTransient:
		return "transient"
	default:
		return "upstream"
	}
}

// Sentinels for errors.Is; they match any FetchError of the same kind.
var (
	ErrUpstream  = &FetchError{Kind: KindUpstream}
	ErrAuth      = &FetchError{Kind: KindAuth}
	ErrRateLimit = &FetchError{Kind: KindRateLimit}
	ErrTransient = &FetchError{Kind: KindTransient}
)

// FetchError is returned by a Fetcher. Message is safe to show to API consumers;
// Cause may carry request details such as the upstream URL.
type FetchError struct {
	Kind    ErrorKind
	Message string
	Status  int
	Cause   error
}

func (e *FetchError) Error() string {
	return e.Message
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// Is matches the kind sentinels
func (e *FetchError) Is(target error) bool {
	sentinel, ok := target.(*FetchError)
	return ok && sentinel.Message == "" && sentinel.Kind == e.Kind
}
