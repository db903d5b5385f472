package service

import (
	"eduassess_backend/internal/util"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// mapNotFound 将 gorm 的记录不存在转换为 util.ErrNotFound
func mapNotFound(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, util.ErrNotFound)
	}
	return err
}
