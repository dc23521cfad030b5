package ext

import (
	"fmt"

	errs "github.com/favbox/gust/common/errors"
)

var errNeedMore = errs.New(errs.ErrNeedMore, errs.ErrorTypePublic, "无法找到首部结束的空行")

// HeaderError 返回一个包裹 ErrMalformed 的首部错误，附带出错位置的缓冲区片段。
func HeaderError(typ string, err error, b []byte) error {
	return errs.New(fmt.Errorf("%w: 解析%s出错: %v。缓冲区大小=%d, 内容: %s",
		errs.ErrMalformed, typ, err, len(b), BufferSnippet(b)), errs.ErrorTypePublic, nil)
}
