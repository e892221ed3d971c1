package cerr

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

func WrapDBReadError(target string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewError(NotFound, fmt.Sprintf("%s not found", target), err)
	}
	return NewError(Internal, "server error", fmt.Errorf("failed to read %s: %w", target, err))
}

func WrapDBWriteError(target string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return NewError(AlreadyExists, fmt.Sprintf("%s already exists", target), err)
	}
	return NewError(Internal, "server error", fmt.Errorf("failed to write %s: %w", target, err))
}

func WrapDBDeleteError(target string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewError(NotFound, fmt.Sprintf("%s not found", target), err)
	}
	return NewError(Internal, "server error", fmt.Errorf("failed to delete %s: %w", target, err))
}
