//go:build stdjson || !(amd64 && (linux || windows || darwin))

// Package json 按平台选择 JSON 实现：amd64 上使用 sonic，其余平台或指定 stdjson 标签时使用标准库。
package json

import "encoding/json"

// Name 是生效的 JSON 包名。
const Name = "encoding/json"

var (
	// Marshal 是标准库的编码实现。
	Marshal = json.Marshal
	// Unmarshal 是标准库的解码实现。
	Unmarshal = json.Unmarshal
	// Valid 判断 data 是否为合法的 JSON。
	Valid = json.Valid
)
