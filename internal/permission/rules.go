package permission

import "bookreview/internal/domain"

var (
	AllowAny        Permission = allowAny{}
	IsAuthenticated Permission = isAuthenticated{}
	ReadOnly        Permission = readOnly{}
	IsOwner         Permission = isOwner{}
	IsAdmin         Permission = roleOwner{role: domain.RoleAdmin, ownsAll: true}

	// IsAuthor lets authors create books and change the books they wrote.
	IsAuthor Permission = roleOwner{role: domain.RoleAuthor}
	// IsReviewer lets reviewers create reviews and change the reviews they wrote.
	IsReviewer Permission = roleOwner{role: domain.RoleReviewer}
)

type allowAny struct{}

func (allowAny) HasPermission(Request) bool            { return true }
func (allowAny) HasObjectPermission(Request, any) bool { return true }

type isAuthenticated struct{}

func (isAuthenticated) HasPermission(r Request) bool { return r.IsAuthenticated() }
func (isAuthenticated) HasObjectPermission(r Request, _ any) bool {
	return r.IsAuthenticated()
}

// readOnly grants safe methods to signed-in users.
type readOnly struct{}

func (readOnly) HasPermission(r Request) bool {
	return r.IsAuthenticated() && r.IsSafe()
}

func (p readOnly) HasObjectPermission(r Request, _ any) bool {
	return p.HasPermission(r)
}

type isOwner struct{}

func (isOwner) HasPermission(r Request) bool { return r.IsAuthenticated() }

func (isOwner) HasObjectPermission(r Request, obj any) bool {
	return owns(r, obj)
}

// roleOwner requires a role; on objects it also requires ownership unless ownsAll is set.
type roleOwner struct {
	role    domain.UserRole
	ownsAll bool
}

func (p roleOwner) HasPermission(r Request) bool {
	return r.hasRole(p.role)
}

func (p roleOwner) HasObjectPermission(r Request, obj any) bool {
	if !r.hasRole(p.role) {
		return false
	}
	return p.ownsAll || owns(r, obj)
}
