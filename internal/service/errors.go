package service

import "errors"

var (
	// ErrInvalidToken 簽章錯誤、格式錯誤、過期、演算法不符或缺少 sub
	ErrInvalidToken = errors.New("invalid token")
	// ErrUserNotFound 令牌有效但找不到使用者；對外與 ErrInvalidToken 同樣回 401
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user is inactive")
	ErrInsufficientRole   = errors.New("admin privileges required")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
