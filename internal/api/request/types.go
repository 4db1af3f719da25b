package request

// RegisterRequest is the request body for registering a user
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateMatchRequest is the request body for creating a match
type CreateMatchRequest struct {
	Machine bool `json:"machine,omitempty"`
}

// ChoiceRequest is the request body for submitting a choice
type ChoiceRequest struct {
	Choice string `json:"choice"`
}
