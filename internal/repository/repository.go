package repository

import (
	"database/sql"
	"errors"

	"staywise-data/internal/domain"

	"github.com/lib/pq"
)

// uniqueViolation PostgreSQL 唯一约束错误码
const uniqueViolation = "23505"

// mapSQLError 把存储层错误翻译为领域错误分类：
//   - sql.ErrNoRows → NotFound（跨业主引用与不存在不可区分）
//   - 23505 唯一冲突 → Conflict（并发物化/重复占用由唯一索引兜底）
//   - 其余 → Internal，细节只留在日志
func mapSQLError(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundf("%s", notFoundMsg)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return domain.Conflictf("record already exists")
	}
	if errors.Is(err, domain.ErrInvalid) || errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrInternal) {
		return err
	}
	return domain.Internalf("storage error")
}

// isUniqueViolation 判断是否唯一约束冲突
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation
}
