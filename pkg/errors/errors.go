package errors

import "errors"

// ErrDuplicateRecord 唯一约束冲突：记录已存在
var ErrDuplicateRecord = errors.New("记录已存在")
