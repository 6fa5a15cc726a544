package entity

import "errors"

var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateListName = errors.New("a contact list with this name already exists")
	ErrDuplicateContact  = errors.New("duplicate contact")
)
