package domain

import (
	"fmt"
	"math"
	"time"
)

// MaxCount bounds every stored integer field (sets, reps, seconds, minutes, order index).
const MaxCount = math.MaxInt32

// TooLarge is the validation detail for an integer above MaxCount.
func TooLarge(field string) string {
	return fmt.Sprintf("%s: must be at most %d", field, MaxCount)
}

// PlanItem pairs a plan with a catalog exercise. A plan holds at most one item per exercise.
// OrderIndex is presentation-only: it is 1-based, may repeat and may have gaps.
type PlanItem struct {
	ID          string    `bson:"_id" json:"id"`
	PlanID      string    `bson:"planId" json:"planId"`
	ExerciseID  string    `bson:"exerciseId" json:"exerciseId"`
	Sets        int       `bson:"sets" json:"sets"`
	Reps        int       `bson:"reps" json:"reps"`
	Weight      *float64  `bson:"weight,omitempty" json:"weight,omitempty"`
	RestSeconds *int      `bson:"restSeconds,omitempty" json:"restSeconds,omitempty"`
	Notes       *string   `bson:"notes,omitempty" json:"notes,omitempty"`
	OrderIndex  int       `bson:"orderIndex" json:"orderIndex"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}

// PlanItemSpec is one requested item of a create, replace or add. A nil OrderIndex means
// "use the position in the submitted list" (or max+1 for a single add).
type PlanItemSpec struct {
	ExerciseID  string
	Sets        int
	Reps        int
	Weight      *float64
	RestSeconds *int
	Notes       *string
	OrderIndex  *int
}

// PlanItemPatch is a partial item update. Weight, RestSeconds and Notes may be nulled.
type PlanItemPatch struct {
	Sets        Optional[int]
	Reps        Optional[int]
	Weight      Optional[float64]
	RestSeconds Optional[int]
	Notes       Optional[string]
	OrderIndex  Optional[int]
}

func (p PlanItemPatch) IsEmpty() bool {
	return !p.Sets.Set && !p.Reps.Set && !p.Weight.Set && !p.RestSeconds.Set && !p.Notes.Set && !p.OrderIndex.Set
}

func (p PlanItemPatch) Validate() []string {
	var details []string
	if p.Sets.Set && (p.Sets.Null || p.Sets.Value <= 0) {
		details = append(details, "sets: must be greater than 0")
	}
	if p.Reps.Set && (p.Reps.Null || p.Reps.Value <= 0) {
		details = append(details, "reps: must be greater than 0")
	}
	if p.Weight.Present() && p.Weight.Value < 0 {
		details = append(details, "weight: must be 0 or greater")
	}
	if p.RestSeconds.Present() && p.RestSeconds.Value < 0 {
		details = append(details, "rest_seconds: must be 0 or greater")
	}
	if p.OrderIndex.Set && (p.OrderIndex.Null || p.OrderIndex.Value < 1) {
		details = append(details, "order_index: must be 1 or greater")
	}
	for _, f := range []struct {
		name string
		v    Optional[int]
	}{{"sets", p.Sets}, {"reps", p.Reps}, {"rest_seconds", p.RestSeconds}, {"order_index", p.OrderIndex}} {
		if f.v.Present() && f.v.Value > MaxCount {
			details = append(details, TooLarge(f.name))
		}
	}
	return details
}

// PlanItemDetail is an item joined with its catalog exercise. Exercise is nil only if the
// catalog entry vanished after the item was written.
type PlanItemDetail struct {
	PlanItem
	Exercise *ExerciseSummary `json:"exercise,omitempty"`
}

func (p PlanItemPatch) Apply(item *PlanItem) {
	p.Sets.ApplyTo(&item.Sets)
	p.Reps.ApplyTo(&item.Reps)
	p.Weight.ApplyToPtr(&item.Weight)
	p.RestSeconds.ApplyToPtr(&item.RestSeconds)
	p.Notes.ApplyToPtr(&item.Notes)
	p.OrderIndex.ApplyTo(&item.OrderIndex)
}
