package game

import "errors"

var (
	ErrRoomNotFound   = errors.New("room does not exist")
	ErrAlreadyExists  = errors.New("room already exists")
	ErrNotInRoom      = errors.New("connection is not in the room")
	ErrIllegalAction  = errors.New("illegal action")
	ErrRateLimited    = errors.New("guess cooldown")
	ErrWordsExhausted = errors.New("not enough words")
)
