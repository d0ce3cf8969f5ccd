// Package service implements the commerce consistency core: the cart,
// coupon, and address book managers and the discount calculator, over the
// repository aggregate store.
package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/velioglu/pazar/internal/domain"
)

// uniqueViolation is the Postgres error code for a unique constraint hit.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// invalidParams converts a validator error into a user-facing domain error
// naming the first failing field.
func invalidParams(op string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return domain.Invalid(op, fmt.Sprintf("invalid %s: failed %s rule", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return domain.Invalid(op, "invalid parameters")
}

func uuidString(id pgtype.UUID) string {
	if !id.Valid {
		return ""
	}
	return uuid.UUID(id.Bytes).String()
}
