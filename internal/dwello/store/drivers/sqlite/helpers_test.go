package sqlite

import (
	"strconv"
	"time"

	"github.com/aussiebroadwan/dwello/internal/dwello/domain"
	"github.com/aussiebroadwan/dwello/pkg/idx"
)

func sessionFor(userID string, n int) domain.Session {
	now := time.Now().UTC()
	return domain.Session{
		ID:        idx.New().String(),
		UserID:    userID,
		TokenHash: "hash-" + strconv.Itoa(n),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
