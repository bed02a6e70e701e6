package services

import "errors"

var (
	// ErrCourtNotFound 场地不存在错误
	ErrCourtNotFound = errors.New("court not found")

	// ErrMatchNotFound 比赛记录不存在错误
	ErrMatchNotFound = errors.New("match not found")

	// ErrNotConnected 未连接错误
	ErrNotConnected = errors.New("not connected")

	// ErrAlreadyConnected 已连接错误
	ErrAlreadyConnected = errors.New("already connected")

	// ErrTimeout 超时错误
	ErrTimeout = errors.New("timeout")
)
