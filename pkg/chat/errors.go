package chat

import "fmt"

// UnsupportedContentTypeError reports a content fragment whose type
// discriminant is not recognized by the active transform. The conversion
// call that encountered it fails as a whole; there is no partial result.
type UnsupportedContentTypeError struct {
	Type string
}

func (e *UnsupportedContentTypeError) Error() string {
	return fmt.Sprintf("unsupported content type %q", e.Type)
}

// UnsupportedRoleError reports a prompt message whose role cannot be
// submitted to the platform as new input.
type UnsupportedRoleError struct {
	Role Role
}

func (e *UnsupportedRoleError) Error() string {
	return fmt.Sprintf("unsupported message role %q", string(e.Role))
}
