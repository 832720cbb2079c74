package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFetchError_Is(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := fmt.Errorf("fetch: %w", &FetchError{Kind: KindTransient, Message: "Exchange rate API error: refused", Cause: cause})

	assert.True(t, errors.Is(err, ErrTransient))
	assert.False(t, errors.Is(err, ErrAuth))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(&FetchError{Kind: KindAuth, Message: "x"}, &FetchError{Kind: KindAuth, Message: "x"}))
}

func TestFetchError_Error(t *testing.T) {
	err := &FetchError{Kind: KindAuth, Message: "Invalid API key. Please check your configuration.", Cause: errors.New("secret url")}
	assert.Equal(t, "Invalid API key. Please check your configuration.", err.Error())
}

func TestErrorKind_String(t *testing.T) {
	assert.Equal(t, "upstream", KindUpstream.String())
	assert.Equal(t, "auth", KindAuth.String())
	assert.Equal(t, "rate_limit", KindRateLimit.String())
	assert.Equal(t, "transient", KindTransient.String())
	assert.Equal(t, "upstream", ErrorKind(42).String())
}
