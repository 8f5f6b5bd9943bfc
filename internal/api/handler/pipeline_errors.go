package handler

import (
	"errors"
	"fmt"
)

// 流水线各阶段的基础错误类型
var (
	ErrStoreFileFailed  = errors.New("上传简历到对象存储失败")
	ErrParseTextFailed  = errors.New("提取简历文本失败")
	ErrExtractionFailed = errors.New("简历结构化抽取失败")
)

// PipelineError 携带提交UUID和失败阶段的流水线错误
type PipelineError struct {
	SubmissionUUID string
	Stage          string
	BaseErr        error
	Cause          error
}

func (e *PipelineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (阶段:%s, UUID:%s): %v", e.BaseErr, e.Stage, e.SubmissionUUID, e.Cause)
	}
	return fmt.Sprintf("%s (阶段:%s, UUID:%s)", e.BaseErr, e.Stage, e.SubmissionUUID)
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *PipelineError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

func newStoreError(uuid string, cause error) error {
	return &PipelineError{
		SubmissionUUID: uuid,
		Stage:          "store",
		BaseErr:        ErrStoreFileFailed,
		Cause:          cause,
	}
}

func newParseError(uuid string, cause error) error {
	return &PipelineError{
		SubmissionUUID: uuid,
		Stage:          "parse",
		BaseErr:        ErrParseTextFailed,
		Cause:          cause,
	}
}

func newExtractionError(uuid string, cause error) error {
	return &PipelineError{
		SubmissionUUID: uuid,
		Stage:          "extract",
		BaseErr:        ErrExtractionFailed,
		Cause:          cause,
	}
}
