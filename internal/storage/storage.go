package storage

import "errors"

var (
	ErrMemberExists   = errors.New("member already exists")
	ErrMemberNotFound = errors.New("member not found")
	ErrAdminExists    = errors.New("admin already exists")
	ErrAdminNotFound  = errors.New("admin not found")
	ErrUploadNotFound = errors.New("upload not found")
)
