package internal

const (
	COOKIE_ACCESS_TOKEN_NAME = "lifelink_access_token"
	COOKIE_REDIRECT_NAME     = "lifelink_redirect"
)
