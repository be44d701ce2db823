package xchmodule

import "errors"

var (
	// ErrDuplicateName 表示同一连接名被注册了两次（"" 与 "default" 视为同名）。
	ErrDuplicateName = errors.New("xchmodule: duplicate connection name")

	// ErrDuplicateService 表示 Provide 的 key 已存在。
	ErrDuplicateService = errors.New("xchmodule: duplicate service key")

	// ErrEmptyKey 表示 Provide 的 key 为空。
	ErrEmptyKey = errors.New("xchmodule: empty service key")

	// ErrStarted 表示模块已启动（或已关闭），不再接受注册或再次启动。
	ErrStarted = errors.New("xchmodule: module already started")

	// ErrShutdown 表示连接在 Shutdown 之后才建立，已被立即关闭。
	ErrShutdown = errors.New("xchmodule: module shut down")

	// ErrNoConfigSource 表示 AsyncOptions 未提供 Factory、Existing 或 Provider。
	ErrNoConfigSource = errors.New("xchmodule: no config source")

	// ErrMissingDependency 表示声明的依赖未通过 Provide 提供。
	ErrMissingDependency = errors.New("xchmodule: missing dependency")

	// ErrInvalidProvider 表示 Existing 指向的服务没有实现 ConfigProvider。
	ErrInvalidProvider = errors.New("xchmodule: service does not implement ConfigProvider")

	// ErrResolveConfig 表示延迟配置的求值失败，此类错误不会重试。
	ErrResolveConfig = errors.New("xchmodule: resolve config")

	// ErrNameMismatch 表示延迟配置给出的名称与注册名称不一致。
	ErrNameMismatch = errors.New("xchmodule: resolved name does not match registration")

	// ErrNotFound 表示 Registry 中没有该名称的连接。
	ErrNotFound = errors.New("xchmodule: connection not found")

	// ErrInvalidFileConfig 表示配置文件中的连接条目不完整或自相矛盾。
	ErrInvalidFileConfig = errors.New("xchmodule: invalid connection entry")
)
