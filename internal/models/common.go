package models

const (
	MwBearerPrefix = "Bearer "

	MwUserIDKey = "userID"
	MwRoleKey   = "role"
	MwTokenKey  = "token"
)
