package validation

// Error is a client-facing validation failure. Message is safe to return verbatim.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrFieldsRequired     = &Error{Message: "All fields are required"}
	ErrPasswordTooShort   = &Error{Message: "Password must be at least 6 characters"}
	ErrPasswordTooLong    = &Error{Message: "Password must not exceed 72 characters"}
	ErrInvalidEmail       = &Error{Message: "Invalid email address"}
	ErrNameTooLong        = &Error{Message: "Full name is too long (max 100 characters)"}
	ErrNameRequired       = &Error{Message: "Full name is required"}
	ErrProfilePicRequired = &Error{Message: "Profile pic is required"}
	ErrImageInvalid       = &Error{Message: "Profile pic must be a valid base64 encoded image"}
	ErrImageTooLarge      = &Error{Message: "Profile pic is too large (max 5 MB)"}
	ErrImageType          = &Error{Message: "Profile pic must be a JPEG, PNG, GIF or WebP image"}
)
