package mealwheel

// User is a MealWheel user record. Other fields the server sends are ignored.
type User struct {
	ID       string `json:"id"`
	UserName string `json:"userName"`
}

// FindUserID returns the id of the first user whose name equals name exactly
// (case-sensitive), and false when there is none.
func FindUserID(users []User, name string) (string, bool) {
	for _, u := range users {
		if u.UserName == name {
			return u.ID, true
		}
	}
	return "", false
}

// UserNames lists the names in server order.
func UserNames(users []User) []string {
	names := make([]string, len(users))
	for i, u := range users {
		names[i] = u.UserName
	}
	return names
}
