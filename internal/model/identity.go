package model

// Identity is the principal behind a request, resolved by the auth middleware.
// The zero value is the anonymous identity.
type Identity struct {
	UserID string
}

// Anonymous is the identity of an unauthenticated request.
var Anonymous = Identity{}

func (i Identity) Authenticated() bool {
	return i.UserID != ""
}

// Owns reports whether the identity is the owner of the given file.
// Anonymous identities own nothing.
func (i Identity) Owns(f *File) bool {
	return i.Authenticated() && f != nil && f.OwnerID == i.UserID
}
