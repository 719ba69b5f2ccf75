package service

import (
	"errors"
	"fmt"

	"github.com/d60-Lab/warbler/internal/repository"
)

var (
	ErrFollowSelf   = errors.New("cannot follow self")
	ErrInvalidInput = errors.New("invalid input")
	// 两者都满足 errors.Is(err, repository.ErrDuplicateKey)
	ErrUsernameTaken = fmt.Errorf("%w: username taken", repository.ErrDuplicateKey)
	ErrEmailTaken    = fmt.Errorf("%w: email taken", repository.ErrDuplicateKey)
)
