package services

import "errors"

var (
	// ErrUnauthenticated 没有登录用户
	ErrUnauthenticated = errors.New("please sign in")
	// ErrMissingFields 请求缺少必填字段或取值非法
	ErrMissingFields = errors.New("missing required fields")
	// ErrInquiryNotFound 问询不存在或不属于当前用户
	ErrInquiryNotFound = errors.New("inquiry not found")
	// ErrPersistence 主记录写入失败
	ErrPersistence = errors.New("persistence failed")
)
