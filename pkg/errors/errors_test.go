package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"校验错误", NewValidation("字段非法"), KindValidation},
		{"重复错误", NewDuplicate("已存在"), KindDuplicate},
		{"权限错误", NewPermissionDenied("无权限"), KindPermissionDenied},
		{"状态流转错误", NewInvalidStateTransition("终态不可变更"), KindInvalidStateTransition},
		{"不存在错误", NewNotFound("资源不存在"), KindNotFound},
		{"存储错误", NewPersistence(stderrors.New("db down")), KindPersistence},
		{"普通错误无类别", stderrors.New("plain"), 0},
		{"nil无类别", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	inner := NewInvalidStateTransition("已审核的记录不允许修改")
	wrapped := fmt.Errorf("更新失败: %w", inner)

	if !IsInvalidStateTransition(wrapped) {
		t.Error("包装后的错误应当保留原始类别")
	}
}

func TestPersistenceUnwrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewPersistence(cause)

	if !stderrors.Is(err, cause) {
		t.Error("存储错误应当可以解包到底层错误")
	}
}

func TestValidationMessageFormat(t *testing.T) {
	err := NewValidation("公司下仍有%d个用户", 3)
	if err.Error() != "公司下仍有3个用户" {
		t.Errorf("消息格式化错误: %s", err.Error())
	}
}
