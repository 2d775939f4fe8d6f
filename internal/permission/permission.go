// Package permission decides whether a request may act on a resource.
//
// A Permission answers two questions: may this request reach the endpoint at
// all (HasPermission), and may it act on this particular object
// (HasObjectPermission). Permissions compose with Or and And, so a policy such
// as "any signed-in user may read, authors may write their own books" is
// written Or(ReadOnly, IsAuthor).
package permission

import (
	"errors"
	"net/http"

	"bookreview/internal/domain"
)

var (
	ErrNotAuthenticated = errors.New("authentication credentials were not provided")
	ErrPermissionDenied = errors.New("you do not have permission to perform this action")
)

// Request is the part of an HTTP request a permission looks at.
// User is nil for anonymous requests.
type Request struct {
	User   *domain.User
	Method string
}

func (r Request) IsAuthenticated() bool {
	return r.User != nil && r.User.IsActive
}

// IsSafe reports whether the method only reads.
func (r Request) IsSafe() bool {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func (r Request) hasRole(role domain.UserRole) bool {
	return r.IsAuthenticated() && r.User.Role == role
}

// Owned is implemented by every object that belongs to a user.
type Owned interface {
	OwnerID() int64
}

type Permission interface {
	HasPermission(r Request) bool
	HasObjectPermission(r Request, obj any) bool
}

// owns reports whether the requester owns obj. Objects without an owner are never owned.
func owns(r Request, obj any) bool {
	if !r.IsAuthenticated() {
		return false
	}
	o, ok := obj.(Owned)
	if !ok || o == nil {
		return false
	}
	return o.OwnerID() == r.User.ID
}

// Check runs the request-level test.
func Check(p Permission, r Request) error {
	if p.HasPermission(r) {
		return nil
	}
	return denied(r)
}

// CheckObject runs both the request-level and the object-level test.
func CheckObject(p Permission, r Request, obj any) error {
	if p.HasPermission(r) && p.HasObjectPermission(r, obj) {
		return nil
	}
	return denied(r)
}

// Anonymous requests are told to authenticate; everyone else is refused.
func denied(r Request) error {
	if !r.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	return ErrPermissionDenied
}
