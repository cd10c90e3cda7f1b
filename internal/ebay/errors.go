package ebay

import "fmt"

// AuthError reports a failed credential exchange. The previously cached
// token, if any, is left untouched; the next Token call retries naturally.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("ebay auth: status %d: %s", e.Status, e.Message)
	}
	return "ebay auth: " + e.Message
}

// FetchError reports a failed or timed-out search request, distinct from an
// empty result. The caller abandons the card for the cycle and waits for
// the next poll tick.
type FetchError struct {
	Query string
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("ebay search %q: %v", e.Query, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
