package config

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/favbox/gust/common/json"
	"github.com/favbox/gust/common/wlog"
	"github.com/fsnotify/fsnotify"
)

// FileOptions 是 JSON 配置文件的内容，零值字段不覆盖已有配置。
type FileOptions struct {
	Network               string `json:"network"`
	Addr                  string `json:"addr"`
	ReadBufferSize        int    `json:"read_buffer_size"`
	MaxHeaderBufferSize   int    `json:"max_header_buffer_size"`
	MaxHeaderCount        int    `json:"max_header_count"`
	MaxPendingBodySize    int    `json:"max_pending_body_size"`
	KeepAliveTimeout      string `json:"keep_alive_timeout"`
	ReadTimeout           string `json:"read_timeout"`
	WriteTimeout          string `json:"write_timeout"`
	ExitWaitTimeout       string `json:"exit_wait_timeout"`
	ServerName            string `json:"server_name"`
	NoDefaultDate         bool   `json:"no_default_date"`
	NoDefaultServerHeader bool   `json:"no_default_server_header"`
	ReusePort             bool   `json:"reuse_port"`
	LogLevel              string `json:"log_level"`
}

// ReadFile 读取并解析 JSON 配置文件。
func ReadFile(path string) (*FileOptions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f := &FileOptions{}
	if err = json.Unmarshal(data, f); err != nil {
		return nil, err
	}
	return f, nil
}

// Options 将文件中出现的字段转为配置函数。
func (f *FileOptions) Options() ([]Option, error) {
	var opts []Option
	add := func(fn func(o *Options)) {
		opts = append(opts, Option{F: fn})
	}

	if f.Network != "" {
		add(func(o *Options) { o.Network = f.Network })
	}
	if f.Addr != "" {
		add(func(o *Options) { o.Addr = f.Addr })
	}
	if f.ReadBufferSize != 0 {
		add(func(o *Options) { o.ReadBufferSize = f.ReadBufferSize })
	}
	if f.MaxHeaderBufferSize != 0 {
		add(func(o *Options) { o.MaxHeaderBufferSize = f.MaxHeaderBufferSize })
	}
	if f.MaxHeaderCount != 0 {
		add(func(o *Options) { o.MaxHeaderCount = f.MaxHeaderCount })
	}
	if f.MaxPendingBodySize != 0 {
		add(func(o *Options) { o.MaxPendingBodySize = f.MaxPendingBodySize })
	}
	for _, d := range []struct {
		s   string
		set func(o *Options, d time.Duration)
	}{
		{f.KeepAliveTimeout, func(o *Options, d time.Duration) { o.KeepAliveTimeout = d }},
		{f.ReadTimeout, func(o *Options, d time.Duration) { o.ReadTimeout = d }},
		{f.WriteTimeout, func(o *Options, d time.Duration) { o.WriteTimeout = d }},
		{f.ExitWaitTimeout, func(o *Options, d time.Duration) { o.ExitWaitTimeout = d }},
	} {
		if d.s == "" {
			continue
		}
		v, err := time.ParseDuration(d.s)
		if err != nil {
			return nil, err
		}
		set := d.set
		add(func(o *Options) { set(o, v) })
	}
	if f.ServerName != "" {
		add(func(o *Options) { o.ServerName = f.ServerName })
	}
	if f.NoDefaultDate {
		add(func(o *Options) { o.NoDefaultDate = true })
	}
	if f.NoDefaultServerHeader {
		add(func(o *Options) { o.NoDefaultServerHeader = true })
	}
	if f.ReusePort {
		add(func(o *Options) { o.ReusePort = true })
	}
	if f.LogLevel != "" {
		lv, err := wlog.ParseLevel(f.LogLevel)
		if err != nil {
			return nil, err
		}
		add(func(o *Options) { o.LogLevel = lv })
	}
	return opts, nil
}

// LoadFile 读取配置文件并返回对应的配置函数。
func LoadFile(path string) ([]Option, error) {
	f, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return f.Options()
}

// Watch 监视配置文件，文件被写入或重建时重新读取并回调 onChange，直到 ctx 结束。
//
// 监视的是文件所在目录，因此编辑器以改名方式保存也能被发现。
func Watch(ctx context.Context, path string, onChange func(*FileOptions)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	path = filepath.Clean(path)
	if err = watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}
	wlog.SystemLogger().Debugf("正在监视配置文件：%s", path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			f, err := ReadFile(path)
			if err != nil {
				wlog.SystemLogger().Warnf("重新加载配置文件失败：%s, error=%v", path, err)
				continue
			}
			onChange(f)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			wlog.SystemLogger().Errorf("监视配置文件出错：%v", err)
		}
	}
}
