package addr

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestURI_equality_by_path(t *testing.T) {
	a := NewURI("a", NewPath("/user/a"), "host-1")
	b := NewURI("b", NewPath("/user/a"), "host-2")
	c := NewURI("a", NewPath("/user/c"), "host-1")

	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
	require.False(t, a.Equal(nil))

	var n *URI
	require.True(t, n.Equal(nil))
}

func TestURI_format(t *testing.T) {
	u := NewURI("a", NewPath("/user/a"), "local")
	require.Equal(t, "/user/a", u.String())
	require.Equal(t, "local:///user/a", fmt.Sprintf("%#v", u))
	require.True(t, NewPath("").IsZero())
}
