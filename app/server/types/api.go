package types

type ErrorMessage struct {
	Message string `json:"message"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginToken struct {
	Token   string `json:"token"`
	Expires int64  `json:"expires"` // Unix second
}

type Heartbeat struct {
	UpdatedAt int64 `json:"updated_at"` // Unix millisecond of the last change to any STIX object, strictly increasing
}
