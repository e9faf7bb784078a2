// Package model defines the core domain records shared by the tabulation
// engine, the score store and the HTTP adapters.
package model

import "fmt"

// Category names a competition category. Each category owns one rubric.
type Category string

// Level is the school level a contestant competes in.
type Level string

// Medium is the language a contestant competes in.
type Medium string

// Categories used by the default event.
const (
	NewsWriting      Category = "News Writing"
	EditorialWriting Category = "Editorial Writing"
	SportsWriting    Category = "Sports Writing"
	SciTechWriting   Category = "Science & Technology Writing"
	FeatureWriting   Category = "Feature Writing"
	ColumnWriting    Category = "Column Writing"
	RadioBroadcast   Category = "Radio Broadcasting"
	TVBroadcast      Category = "TV Broadcasting"
)

// Levels used by the default event.
const (
	Elementary Level = "Elementary"
	Secondary  Level = "Secondary"
)

// Mediums used by the default event.
const (
	English  Medium = "English"
	Filipino Medium = "Filipino"
)

// Categories returns the default category enumeration in display order.
func Categories() []Category {
	return []Category{
		NewsWriting,
		EditorialWriting,
		SportsWriting,
		SciTechWriting,
		FeatureWriting,
		ColumnWriting,
		RadioBroadcast,
		TVBroadcast,
	}
}

// Levels returns the default level enumeration.
func Levels() []Level {
	return []Level{Elementary, Secondary}
}

// Mediums returns the default medium enumeration.
func Mediums() []Medium {
	return []Medium{English, Filipino}
}

// Classification is the (category, level, medium) triple that scopes a
// ranking run.
type Classification struct {
	Category Category `json:"category" yaml:"category"`
	Level    Level    `json:"level" yaml:"level"`
	Medium   Medium   `json:"medium" yaml:"medium"`
}

// String renders the triple as "category/level/medium".
func (c Classification) String() string {
	return fmt.Sprintf("%s/%s/%s", c.Category, c.Level, c.Medium)
}

// IsZero reports whether any part of the triple is missing.
func (c Classification) IsZero() bool {
	return c.Category == "" || c.Level == "" || c.Medium == ""
}
