// Package nocopy 定义禁止拷贝的标记结构体，嵌入后可被 go vet 的 copylocks 检查发现误拷贝。
package nocopy

// NoCopy 定义禁止拷贝结构体。
type NoCopy struct{}

// Lock 供 copylocks 检查识别。
func (*NoCopy) Lock() {}

// Unlock 供 copylocks 检查识别。
func (*NoCopy) Unlock() {}
