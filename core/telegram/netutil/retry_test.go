package netutil

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldRetry(t *testing.T) {
	cases := map[string]struct {
		err  error
		want bool
	}{
		"nil":        {nil, false},
		"plain":      {errors.New("chat not found"), false},
		"deadline":   {&url.Error{Op: "Post", URL: "x", Err: context.DeadlineExceeded}, true},
		"dial":       {&url.Error{Op: "Post", URL: "x", Err: &net.OpError{Op: "dial", Err: errors.New("refused")}}, true},
		"reset":      {fmt.Errorf("read: %w", syscall.ECONNRESET), true},
		"read other": {&net.OpError{Op: "read", Err: errors.New("bad")}, false},
		"cancelled":  {&url.Error{Op: "Post", URL: "x", Err: context.Canceled}, false},
	}
	for name, tc := range cases {
		assert.Equal(t, tc.want, ShouldRetry(tc.err), name)
	}
}
