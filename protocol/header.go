package protocol

import (
	"strings"

	"github.com/favbox/gust/internal/bytesconv"
	"github.com/favbox/gust/internal/bytestr"
)

type headerField struct {
	name  string
	value string
}

// Header 是按到达顺序保存的标头集合，名称查找不区分大小写，名称按原样保留。
//
// 零值即可使用。Header 不是并发安全的。
type Header struct {
	fields []headerField
}

// Add 追加一个标头，不影响同名的已有标头。
func (h *Header) Add(name, value string) {
	h.fields = append(h.fields, headerField{name: name, value: value})
}

// Set 设置标头，删除其余同名标头。
func (h *Header) Set(name, value string) {
	for i := range h.fields {
		if strings.EqualFold(h.fields[i].name, name) {
			h.fields[i].value = value
			h.delFrom(i+1, name)
			return
		}
	}
	h.Add(name, value)
}

// Get 返回首个同名标头的值，不存在则返回空串。
func (h *Header) Get(name string) string {
	v, _ := h.Lookup(name)
	return v
}

// Lookup 返回首个同名标头的值，以及该标头是否存在。
func (h *Header) Lookup(name string) (string, bool) {
	for i := range h.fields {
		if strings.EqualFold(h.fields[i].name, name) {
			return h.fields[i].value, true
		}
	}
	return "", false
}

// Values 返回全部同名标头的值。
func (h *Header) Values(name string) []string {
	var vs []string
	for i := range h.fields {
		if strings.EqualFold(h.fields[i].name, name) {
			vs = append(vs, h.fields[i].value)
		}
	}
	return vs
}

// Has 判断标头是否存在。
func (h *Header) Has(name string) bool {
	_, ok := h.Lookup(name)
	return ok
}

// Del 删除全部同名标头。
func (h *Header) Del(name string) {
	h.delFrom(0, name)
}

func (h *Header) delFrom(start int, name string) {
	kept := h.fields[:start]
	for _, f := range h.fields[start:] {
		if !strings.EqualFold(f.name, name) {
			kept = append(kept, f)
		}
	}
	for i := len(kept); i < len(h.fields); i++ {
		h.fields[i] = headerField{}
	}
	h.fields = kept
}

// Len 返回标头数量，同名标头分别计数。
func (h *Header) Len() int {
	return len(h.fields)
}

// VisitAll 按顺序访问全部标头。
func (h *Header) VisitAll(f func(name, value string)) {
	for _, field := range h.fields {
		f(field.name, field.value)
	}
}

// HasToken 判断同名标头的逗号分隔列表中是否含有 token，不区分大小写。
func (h *Header) HasToken(name, token string) bool {
	for i := range h.fields {
		if !strings.EqualFold(h.fields[i].name, name) {
			continue
		}
		for _, t := range strings.Split(h.fields[i].value, ",") {
			if strings.EqualFold(strings.TrimSpace(t), token) {
				return true
			}
		}
	}
	return false
}

// Tokens 返回全部同名标头按逗号拆分后的非空元素，保持出现顺序。
func (h *Header) Tokens(name string) []string {
	var tokens []string
	for i := range h.fields {
		if !strings.EqualFold(h.fields[i].name, name) {
			continue
		}
		for _, t := range strings.Split(h.fields[i].value, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tokens = append(tokens, t)
			}
		}
	}
	return tokens
}

// Clone 返回标头的深拷贝。
func (h *Header) Clone() Header {
	return Header{fields: append([]headerField(nil), h.fields...)}
}

// Reset 清空全部标头，保留底层存储。
func (h *Header) Reset() {
	for i := range h.fields {
		h.fields[i] = headerField{}
	}
	h.fields = h.fields[:0]
}

// AppendBytes 向 dst 追加 "Name: value\r\n" 形式的全部标头行。
func (h *Header) AppendBytes(dst []byte) []byte {
	for _, f := range h.fields {
		dst = append(dst, f.name...)
		dst = append(dst, bytestr.StrColonSpace...)
		dst = append(dst, f.value...)
		dst = append(dst, bytestr.StrCRLF...)
	}
	return dst
}

// String 返回标头的报文形式。
func (h *Header) String() string {
	return bytesconv.B2s(h.AppendBytes(nil))
}
