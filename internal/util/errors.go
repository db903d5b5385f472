package util

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

var (
	ErrNotFound             = errors.New("요청한 리소스를 찾을 수 없습니다")
	ErrInvalidCredentials   = errors.New("아이디 또는 비밀번호가 올바르지 않습니다")
	ErrPermissionDenied     = errors.New("권한이 없습니다")
	ErrTokenRevoked         = errors.New("로그아웃된 토큰입니다")
	ErrDuplicateCode        = errors.New("이미 사용 중인 과목 코드입니다")
	ErrInvalidQuestion      = errors.New("문항 정보가 올바르지 않습니다")
	ErrInvalidAssessment    = errors.New("평가 정보가 올바르지 않습니다")
	ErrAssessmentInactive   = errors.New("비활성화된 평가입니다")
	ErrSubmissionClosed     = errors.New("이미 제출된 답안입니다")
	ErrInvalidAnswer        = errors.New("답안 형식이 올바르지 않습니다")
	ErrQuestionNotInPaper   = errors.New("평가에 포함되지 않은 문항입니다")
	ErrPointsOutOfRange     = errors.New("점수가 허용 범위를 벗어났습니다")
	ErrSubmissionNotGraded  = errors.New("채점할 수 없는 상태의 답안입니다")
	ErrUnknownBadge         = errors.New("존재하지 않는 배지입니다")
	ErrInvalidFileType      = errors.New("이미지 파일만 업로드할 수 있습니다")
	ErrFileTooLarge         = errors.New("파일 크기가 제한을 초과했습니다")
	ErrSubjectHasReferences = errors.New("문항 또는 평가가 연결된 과목은 삭제할 수 없습니다")
)

// HandleError 将服务层错误映射为统一响应
func HandleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrTokenRevoked):
		Error(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrPermissionDenied):
		Error(c, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrSubmissionClosed), errors.Is(err, ErrDuplicateCode),
		errors.Is(err, ErrSubjectHasReferences), errors.Is(err, ErrSubmissionNotGraded):
		Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, ErrFileTooLarge):
		Error(c, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, ErrInvalidQuestion), errors.Is(err, ErrInvalidAssessment),
		errors.Is(err, ErrAssessmentInactive), errors.Is(err, ErrInvalidAnswer),
		errors.Is(err, ErrQuestionNotInPaper), errors.Is(err, ErrPointsOutOfRange),
		errors.Is(err, ErrUnknownBadge), errors.Is(err, ErrInvalidFileType):
		Error(c, http.StatusBadRequest, err.Error())
	default:
		LogInternalError(c, err)
	}
}
