package errs

import (
	stderrors "errors"

	"github.com/pkg/errors"
)

// 错误类别，使用 errors.Is 判断
var (
	UnsupportedFormat     = stderrors.New("unsupported format")
	FileReadError         = stderrors.New("file read error")
	ParseError            = stderrors.New("parse error")
	EmptyTableError       = stderrors.New("empty table")
	InvalidSheetSelection = stderrors.New("invalid sheet selection")
)

// Error 带类别的错误
type Error struct {
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Err.Error()
}

// Is 按类别匹配
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New 创建指定类别的错误
func New(kind error, format string, args ...interface{}) error {
	return &Error{Kind: kind, Err: errors.Errorf(format, args...)}
}

// Wrap 用类别包装底层错误，err 为 nil 时返回 nil
func Wrap(kind, err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: errors.Wrapf(err, format, args...)}
}

// KindOf 返回错误类别，未分类返回 nil
func KindOf(err error) error {
	for _, kind := range []error{UnsupportedFormat, FileReadError, ParseError, EmptyTableError, InvalidSheetSelection} {
		if stderrors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
