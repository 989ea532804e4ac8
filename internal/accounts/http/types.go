package http

// authResponse is the payload shape shared by the signup and login
// endpoints. The success flag carries the outcome; identity fields are
// echoed back when known.
type authResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

// signupRequest is the signup body. Email is only consulted in the
// email-identity variant.
type signupRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginRequest is the login body. Which identity field is required depends
// on the variant: email when email identity is enabled, username otherwise.
type loginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type healthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *healthChecks `json:"checks,omitempty"`
}

type healthChecks struct {
	Database string `json:"database"`
}
