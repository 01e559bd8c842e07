package dynamo

import (
	"context"
	"log/slog"

	"github.com/linguahub/api/internal/domain"
)

// foundationModules is the built-in course catalog. Ids are stable so
// re-seeding on startup is idempotent and admin edits to other fields survive
// only until the next deploy changes this list.
var foundationModules = []domain.Module{
	{ModuleID: "fm-01-alphabet", Title: "Alphabet & Sounds", Description: "Letters, pronunciation and the sounds that don't exist in English.", Ordinal: 1, LessonCount: 8},
	{ModuleID: "fm-02-greetings", Title: "Greetings & Introductions", Description: "Say hello, introduce yourself and ask how someone is doing.", Ordinal: 2, LessonCount: 6},
	{ModuleID: "fm-03-numbers", Title: "Numbers, Dates & Time", Description: "Count, tell the time and talk about dates.", Ordinal: 3, LessonCount: 7},
	{ModuleID: "fm-04-essentials", Title: "Everyday Essentials", Description: "Ordering food, asking for directions and basic courtesy phrases.", Ordinal: 4, LessonCount: 10},
	{ModuleID: "fm-05-present", Title: "Present Tense Basics", Description: "Build your first full sentences about the here and now.", Ordinal: 5, LessonCount: 12},
	{ModuleID: "fm-06-questions", Title: "Asking Questions", Description: "Who, what, where, when and why.", Ordinal: 6, LessonCount: 8},
}

// SeedModules inserts the foundation catalog if it is missing or partial.
// Existing rows are overwritten so catalog fixes ship with the binary.
func SeedModules(ctx context.Context, repo *ModuleRepo) {
	for i := range foundationModules {
		m := foundationModules[i]
		if err := repo.Put(ctx, &m); err != nil {
			slog.Warn("could not seed module", "module_id", m.ModuleID, "err", err)
		}
	}
	slog.Info("seeded foundation modules", "count", len(foundationModules))
}
