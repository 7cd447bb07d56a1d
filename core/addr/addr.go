// Package addr holds the immutable identity values used to address actors.
package addr

import "fmt"

// Path is the hierarchical location of an actor inside its system,
// e.g. "/user/orders/o-42". The zero value is the empty path.
type Path struct{ p string }

func NewPath(p string) Path { return Path{p: p} }

func (p Path) String() string    { return p.p }
func (p Path) Equal(o Path) bool { return p.p == o.p }
func (p Path) IsZero() bool      { return p.p == "" }

// URI locates an actor: its name, path and the system host.
// Two URIs are equal if their paths are equal; Host is informational until
// actors can live on more than one host.
type URI struct {
	Name string
	Path Path
	Host string
}

func NewURI(name string, path Path, host string) *URI {
	return &URI{Name: name, Path: path, Host: host}
}

func (u *URI) Equal(o *URI) bool {
	if u == nil || o == nil {
		return u == o
	}
	return u.Path.Equal(o.Path)
}

func (u *URI) String() string {
	if u == nil {
		return ""
	}
	return u.Path.String()
}

func (u *URI) GoString() string {
	if u == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s://%s", u.Host, u.Path)
}
