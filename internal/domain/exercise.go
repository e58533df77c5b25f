// internal/domain/exercise.go
package domain

import (
	"time"
)

// BodyPart tags both catalog exercises and the muscle groups a plan targets.
type BodyPart string

const (
	BodyPartChest     BodyPart = "chest"
	BodyPartBack      BodyPart = "back"
	BodyPartShoulders BodyPart = "shoulders"
	BodyPartArms      BodyPart = "arms"
	BodyPartLegs      BodyPart = "legs"
	BodyPartCore      BodyPart = "core"
	BodyPartGlutes    BodyPart = "glutes"
	BodyPartFullBody  BodyPart = "full_body"
	BodyPartCardio    BodyPart = "cardio"
)

var bodyParts = []BodyPart{
	BodyPartChest, BodyPartBack, BodyPartShoulders, BodyPartArms, BodyPartLegs,
	BodyPartCore, BodyPartGlutes, BodyPartFullBody, BodyPartCardio,
}

// BodyParts lists every accepted body part tag.
func BodyParts() []BodyPart { return append([]BodyPart(nil), bodyParts...) }

func (b BodyPart) Valid() bool {
	for _, v := range bodyParts {
		if v == b {
			return true
		}
	}
	return false
}

// ExerciseType classifies how an exercise is performed.
type ExerciseType string

const (
	ExerciseTypeStrength    ExerciseType = "strength"
	ExerciseTypeCardio      ExerciseType = "cardio"
	ExerciseTypeFlexibility ExerciseType = "flexibility"
	ExerciseTypeBalance     ExerciseType = "balance"
	ExerciseTypePlyometric  ExerciseType = "plyometric"
)

var exerciseTypes = []ExerciseType{
	ExerciseTypeStrength, ExerciseTypeCardio, ExerciseTypeFlexibility, ExerciseTypeBalance, ExerciseTypePlyometric,
}

func ExerciseTypes() []ExerciseType { return append([]ExerciseType(nil), exerciseTypes...) }

func (t ExerciseType) Valid() bool {
	for _, v := range exerciseTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Difficulty is optional on exercises and plans; the empty value means "not set".
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

var difficulties = []Difficulty{DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced}

func Difficulties() []Difficulty { return append([]Difficulty(nil), difficulties...) }

func (d Difficulty) Valid() bool {
	for _, v := range difficulties {
		if v == d {
			return true
		}
	}
	return false
}

// Exercise is a catalog entry. Its ID is supplied by whoever adds it to the catalog.
type Exercise struct {
	ID          string       `bson:"_id" json:"id"`
	Name        string       `bson:"name" json:"name"` // unique
	Description string       `bson:"description" json:"description"`
	BodyPart    BodyPart     `bson:"bodyPart" json:"bodyPart"`
	Type        ExerciseType `bson:"type" json:"type"`
	Difficulty  Difficulty   `bson:"difficulty,omitempty" json:"difficulty,omitempty"`
	Equipment   []string     `bson:"equipment,omitempty" json:"equipment,omitempty"`
	// Object key of the demo video/image in the media bucket, internal use
	MediaKey  string    `bson:"mediaKey,omitempty" json:"-"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ExercisePatch is a partial catalog edit. Difficulty and Equipment may be nulled.
type ExercisePatch struct {
	Name        Optional[string]
	Description Optional[string]
	BodyPart    Optional[BodyPart]
	Type        Optional[ExerciseType]
	Difficulty  Optional[Difficulty]
	Equipment   Optional[[]string]
}

// Validate returns one message per invalid field.
func (p ExercisePatch) Validate() []string {
	var details []string
	if p.Name.Set && (p.Name.Null || p.Name.Value == "") {
		details = append(details, "name: cannot be empty")
	}
	if p.Description.Null {
		details = append(details, "description: cannot be null")
	}
	if p.BodyPart.Set && (p.BodyPart.Null || !p.BodyPart.Value.Valid()) {
		details = append(details, "body_part: must be a valid body part")
	}
	if p.Type.Set && (p.Type.Null || !p.Type.Value.Valid()) {
		details = append(details, "type: must be a valid exercise type")
	}
	if p.Difficulty.Present() && !p.Difficulty.Value.Valid() {
		details = append(details, "difficulty: must be beginner, intermediate or advanced")
	}
	return details
}

// ExerciseSummary is the slice of an exercise joined onto plan items.
type ExerciseSummary struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	BodyPart    BodyPart     `json:"bodyPart"`
	Type        ExerciseType `json:"type"`
	Difficulty  Difficulty   `json:"difficulty,omitempty"`
	Equipment   []string     `json:"equipment,omitempty"`
}

func (e *Exercise) Summary() ExerciseSummary {
	return ExerciseSummary{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		BodyPart:    e.BodyPart,
		Type:        e.Type,
		Difficulty:  e.Difficulty,
		Equipment:   e.Equipment,
	}
}

// Apply copies the patched fields onto e. Callers validate first.
func (p ExercisePatch) Apply(e *Exercise) {
	p.Name.ApplyTo(&e.Name)
	p.Description.ApplyTo(&e.Description)
	p.BodyPart.ApplyTo(&e.BodyPart)
	p.Type.ApplyTo(&e.Type)
	if p.Difficulty.Set {
		e.Difficulty = p.Difficulty.Value
	}
	if p.Equipment.Set {
		e.Equipment = append([]string(nil), p.Equipment.Value...)
	}
}
