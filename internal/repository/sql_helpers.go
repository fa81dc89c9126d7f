package repository

import (
	"errors"
	"strings"

	"telemed-chat/internal/domain/paging"
	telemed_errors "telemed-chat/pkg/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	// sqlite drivers without error translation
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return telemed_errors.ErrNotFound
	}
	return err
}

// applyPaging adds ORDER BY, OFFSET and LIMIT to q. Sort properties are mapped
// through columns; unknown properties are skipped. When nothing usable is
// requested fallback is applied. tieBreak always goes last so pages are stable.
func applyPaging(q *gorm.DB, pageable paging.Pageable, columns map[string]string, fallback []clause.OrderByColumn, tieBreak string) *gorm.DB {
	var orders []clause.OrderByColumn
	for _, o := range pageable.Sort {
		col, ok := columns[o.Property]
		if !ok {
			continue
		}
		orders = append(orders, clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: o.Desc})
	}
	if len(orders) == 0 {
		orders = fallback
	}
	orders = append(orders, clause.OrderByColumn{Column: clause.Column{Name: tieBreak}})

	return q.Order(clause.OrderBy{Columns: orders}).
		Offset(pageable.Offset()).
		Limit(pageable.Size)
}
