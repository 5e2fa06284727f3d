package service

import "errors"

var (
	ErrAuthentication   = errors.New("authentication failed")
	ErrAuthorization    = errors.New("not authorized")
	ErrSessionExpired   = errors.New("refresh token expired, please log in again")
	ErrArgument         = errors.New("invalid argument")
	ErrResourceNotFound = errors.New("resource not found")
	ErrConflict         = errors.New("resource already exists")
)
