package coaching

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pitchsmith/pitchsmith/internal/models"

	"gorm.io/gorm"
)

// Match selects the instructions of active rules whose profession filter is
// empty or equals the user's profession and whose trigger keywords appear in
// the message (case-insensitive substring). Results are ordered by descending
// priority; ties keep encounter order.
func Match(rules []models.CoachingRule, profession, message string) []string {
	messageLower := strings.ToLower(message)
	professionLower := strings.ToLower(strings.TrimSpace(profession))

	matched := make([]models.CoachingRule, 0, len(rules))
	for _, rule := range rules {
		if !rule.Active {
			continue
		}
		filter := strings.ToLower(strings.TrimSpace(rule.Profession))
		if filter != "" && filter != professionLower {
			continue
		}
		if !keywordHit(rule.KeywordList(), messageLower) {
			continue
		}
		matched = append(matched, rule)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Priority > matched[j].Priority
	})

	out := make([]string, 0, len(matched))
	for _, rule := range matched {
		if instruction := strings.TrimSpace(rule.Instruction); instruction != "" {
			out = append(out, instruction)
		}
	}
	return out
}

// keywordHit reports whether any keyword occurs in the lowercased message.
func keywordHit(keywords []string, messageLower string) bool {
	for _, keyword := range keywords {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword == "" {
			continue
		}
		if strings.Contains(messageLower, keyword) {
			return true
		}
	}
	return false
}

// Addendum renders matched instructions as an additional-guidance prompt
// section. The empty string means no addendum.
func Addendum(instructions []string) string {
	if len(instructions) == 0 {
		return ""
	}
	return "Additional guidance:\n\n" + strings.Join(instructions, "\n\n")
}

// LoadActive fetches all active coaching rules ordered by creation.
func LoadActive(ctx context.Context, db *gorm.DB) ([]models.CoachingRule, error) {
	var rows []models.CoachingRule
	if errFind := db.WithContext(ctx).
		Where("active = ?", true).
		Order("id ASC").
		Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("coaching: load rules: %w", errFind)
	}
	return rows, nil
}
