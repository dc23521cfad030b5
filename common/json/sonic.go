//go:build (linux || windows || darwin) && amd64 && !stdjson

// Package json 按平台选择 JSON 实现：amd64 上使用 sonic，其余平台或指定 stdjson 标签时使用标准库。
package json

import "github.com/bytedance/sonic"

// Name 是生效的 JSON 包名。
const Name = "sonic"

var (
	json = sonic.ConfigStd
	// Marshal 是 sonic 的编码实现，与 encoding/json 行为一致。
	Marshal = json.Marshal
	// Unmarshal 是 sonic 的解码实现，与 encoding/json 行为一致。
	Unmarshal = json.Unmarshal
	// Valid 判断 data 是否为合法的 JSON。
	Valid = json.Valid
)
