package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewID 无连字符的 uuid，作主键更紧凑
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
