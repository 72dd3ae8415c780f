// Package contacts holds the pure contact-table logic: column role
// detection, rule matching, message rendering and phone normalization.
package contacts

import (
	"errors"
	"strings"

	"github.com/onurcolak/contact-dispatch-service/internal/domain"
)

type Role string

const (
	RoleName  Role = "name"
	RolePhone Role = "phone"
)

var (
	ErrNameColumnNotFound  = errors.New("name column not found: add a column with 'Name' in the header")
	ErrPhoneColumnNotFound = errors.New("phone column not found: add a column with 'Phone' or 'Mobile' in the header")
)

// MissingColumnError reports every role that could not be resolved.
type MissingColumnError struct {
	Roles []Role
}

func (e *MissingColumnError) Error() string {
	msgs := make([]string, 0, len(e.Roles))
	for _, r := range e.Roles {
		msgs = append(msgs, roleError(r).Error())
	}
	return strings.Join(msgs, "; ")
}

func (e *MissingColumnError) Is(target error) bool {
	for _, r := range e.Roles {
		if roleError(r) == target {
			return true
		}
	}
	return false
}

func roleError(r Role) error {
	if r == RoleName {
		return ErrNameColumnNotFound
	}
	return ErrPhoneColumnNotFound
}

// ResolveColumns finds the name and phone columns. An exact header match
// ("name", "phone") wins over a partial one ("Guest Name", "Mobile No").
// Within each pass the leftmost header wins.
func ResolveColumns(headers []string) (domain.ColumnRoles, error) {
	nameIdx, phoneIdx := -1, -1

	for i, h := range headers {
		norm := strings.ToLower(strings.TrimSpace(h))
		if nameIdx == -1 && norm == "name" {
			nameIdx = i
		}
		if phoneIdx == -1 && norm == "phone" {
			phoneIdx = i
		}
	}

	if nameIdx == -1 {
		for i, h := range headers {
			if strings.Contains(strings.ToLower(h), "name") {
				nameIdx = i
				break
			}
		}
	}

	if phoneIdx == -1 {
		for i, h := range headers {
			lower := strings.ToLower(h)
			if strings.Contains(lower, "phone") || strings.Contains(lower, "mobile") {
				phoneIdx = i
				break
			}
		}
	}

	var missing []Role
	if nameIdx == -1 {
		missing = append(missing, RoleName)
	}
	if phoneIdx == -1 {
		missing = append(missing, RolePhone)
	}
	if len(missing) > 0 {
		return domain.ColumnRoles{NameIndex: -1, PhoneIndex: -1}, &MissingColumnError{Roles: missing}
	}

	categories := make([]string, 0, len(headers))
	for i, h := range headers {
		if i == nameIdx || i == phoneIdx {
			continue
		}
		categories = append(categories, h)
	}

	return domain.ColumnRoles{
		NameIndex:  nameIdx,
		PhoneIndex: phoneIdx,
		Categories: categories,
	}, nil
}
