package mealwheel

import (
	"fmt"
	"time"

	"mealwheel/model"
)

// MainDishType is the Type of dishes that can be picked; any other value is
// the id of an accompaniment type.
const MainDishType = "main"

// AccompanimentTypeSpec suggests how many dishes of an accompaniment type go
// with a main.
type AccompanimentTypeSpec struct {
	AccompanimentTypeID string `json:"suggestedAccompanimentTypeEntityId"`
	Count               int    `json:"count"`
}

// DishFromServer is the dish wire record; Last is an ISO-8601 string or null.
type DishFromServer struct {
	ID                              string                  `json:"id"`
	Name                            string                  `json:"name"`
	Type                            string                  `json:"type"`
	MinimumInterval                 float64                 `json:"minimumInterval"`
	Last                            *string                 `json:"last"`
	SuggestedAccompanimentTypeSpecs []AccompanimentTypeSpec `json:"suggestedAccompanimentTypeSpecs"`
	PrepEffort                      float64                 `json:"prepEffort"`
	PrepTime                        float64                 `json:"prepTime"`
	CleanupEffort                   float64                 `json:"cleanupEffort"`
}

// Dish is the shaped dish entity.
type Dish struct {
	ID                              string                  `json:"id"`
	Name                            string                  `json:"name"`
	Type                            string                  `json:"type"`
	MinimumInterval                 float64                 `json:"minimumInterval"`
	Last                            *time.Time              `json:"last"`
	SuggestedAccompanimentTypeSpecs []AccompanimentTypeSpec `json:"suggestedAccompanimentTypeSpecs"`
	PrepEffort                      float64                 `json:"prepEffort"`
	PrepTime                        float64                 `json:"prepTime"`
	CleanupEffort                   float64                 `json:"cleanupEffort"`
}

// IsMain reports whether the dish takes part in selection.
func (d Dish) IsMain() bool {
	return d.Type == MainDishType
}

// ToDish shapes a wire record: Last is parsed into an instant (null stays
// nil) and a missing accompaniment list becomes empty.
func ToDish(w DishFromServer) (Dish, error) {
	var last *time.Time
	if w.Last != nil && *w.Last != "" {
		ts, err := time.Parse(time.RFC3339Nano, *w.Last)
		if err != nil {
			return Dish{}, fmt.Errorf("%w: dish %s has invalid last %q: %v", model.ErrParseFailure, w.ID, *w.Last, err)
		}
		last = &ts
	}

	specs := w.SuggestedAccompanimentTypeSpecs
	if specs == nil {
		specs = []AccompanimentTypeSpec{}
	}

	return Dish{
		ID:                              w.ID,
		Name:                            w.Name,
		Type:                            w.Type,
		MinimumInterval:                 w.MinimumInterval,
		Last:                            last,
		SuggestedAccompanimentTypeSpecs: specs,
		PrepEffort:                      w.PrepEffort,
		PrepTime:                        w.PrepTime,
		CleanupEffort:                   w.CleanupEffort,
	}, nil
}

// MainDishes keeps the records typed "main" and shapes them, preserving
// server order. The result is never nil.
func MainDishes(records []DishFromServer) ([]Dish, error) {
	mains := make([]Dish, 0, len(records))
	for _, r := range records {
		if r.Type != MainDishType {
			continue
		}
		d, err := ToDish(r)
		if err != nil {
			return nil, err
		}
		mains = append(mains, d)
	}
	return mains, nil
}
