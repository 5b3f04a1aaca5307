package conversation

import (
	"math/rand/v2"

	"mealwheel/mealwheel"
	"mealwheel/model"
)

// PickDish selects one dish uniformly at random.
func PickDish(rng *rand.Rand, dishes []mealwheel.Dish) (mealwheel.Dish, error) {
	if len(dishes) == 0 {
		return mealwheel.Dish{}, model.ErrEmptySelection
	}
	return dishes[rng.IntN(len(dishes))], nil
}
