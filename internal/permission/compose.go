package permission

// Or passes a request when any member passes. For objects a member counts only
// if it passes both its request-level and object-level test, so a member that
// rejected the request cannot grant access to the object.
func Or(ps ...Permission) Permission {
	return or(ps)
}

// And passes only when every member passes.
func And(ps ...Permission) Permission {
	return and(ps)
}

type or []Permission

func (o or) HasPermission(r Request) bool {
	for _, p := range o {
		if p.HasPermission(r) {
			return true
		}
	}
	return false
}

func (o or) HasObjectPermission(r Request, obj any) bool {
	for _, p := range o {
		if p.HasPermission(r) && p.HasObjectPermission(r, obj) {
			return true
		}
	}
	return false
}

type and []Permission

func (a and) HasPermission(r Request) bool {
	if len(a) == 0 {
		return false
	}
	for _, p := range a {
		if !p.HasPermission(r) {
			return false
		}
	}
	return true
}

func (a and) HasObjectPermission(r Request, obj any) bool {
	if len(a) == 0 {
		return false
	}
	for _, p := range a {
		if !p.HasObjectPermission(r, obj) {
			return false
		}
	}
	return true
}
