package constants

import "time"

const (
	SessionCookieName = "stix_session"
	FlashCookieName   = "stix_flash"
	CSRFCookieName    = "_csrf"
	CSRFFormField     = "csrf_token"
)

const (
	SessionDuration  = 7 * 24 * time.Hour
	APITokenDuration = 30 * 24 * time.Hour
)
