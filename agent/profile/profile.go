package profile

import (
	"fmt"
	"strings"
	"time"
)

// MaxHistoryEntries bounds the stored conversation history; the oldest turns
// are evicted first.
const MaxHistoryEntries = 50

type Preferences struct {
	Cuisines    []string `json:"cuisines,omitempty"`
	HotelType   string   `json:"hotel_type,omitempty"`
	TravelClass string   `json:"travel_class,omitempty"`
	Dietary     []string `json:"dietary,omitempty"`
}

type Favorites struct {
	Restaurants  []string `json:"restaurants,omitempty"`
	Hotels       []string `json:"hotels,omitempty"`
	Destinations []string `json:"destinations,omitempty"`
}

type Turn struct {
	At   time.Time `json:"at"`
	User string    `json:"user"`
	Bot  string    `json:"bot"`
}

// UserProfile is the persistent per-user record, keyed by the phone-number
// derived id. ID is immutable once created; UpdatedAt never decreases.
type UserProfile struct {
	ID          string      `json:"id"`
	Name        string      `json:"name,omitempty"`
	City        string      `json:"city,omitempty"`
	Budget      string      `json:"budget,omitempty"`
	Preferences Preferences `json:"preferences"`
	Favorites   Favorites   `json:"favorites"`
	History     []Turn      `json:"history,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func NewUserProfile(id string, now time.Time) *UserProfile {
	ts := now.UTC()
	return &UserProfile{
		ID:        id,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
}

// Touch refreshes UpdatedAt, keeping it monotonically non-decreasing.
func (p *UserProfile) Touch(now time.Time) {
	ts := now.UTC()
	if ts.After(p.UpdatedAt) {
		p.UpdatedAt = ts
	}
}

// AppendTurn records one exchange and evicts the oldest turns beyond
// MaxHistoryEntries.
func (p *UserProfile) AppendTurn(user, bot string, now time.Time) {
	p.History = append(p.History, Turn{
		At:   now.UTC(),
		User: user,
		Bot:  bot,
	})
	if overflow := len(p.History) - MaxHistoryEntries; overflow > 0 {
		p.History = append(p.History[:0:0], p.History[overflow:]...)
	}
	p.Touch(now)
}

// Favorite list names accepted by AddFavorite.
const (
	FavoriteRestaurants  = "restaurants"
	FavoriteHotels       = "hotels"
	FavoriteDestinations = "destinations"
)

// AddFavorite appends value to the named list unless it is already present
// (case-sensitive exact match). Reports whether the list changed.
func (p *UserProfile) AddFavorite(list, value string, now time.Time) (bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return false, fmt.Errorf("favorite value is empty")
	}

	var target *[]string
	switch list {
	case FavoriteRestaurants:
		target = &p.Favorites.Restaurants
	case FavoriteHotels:
		target = &p.Favorites.Hotels
	case FavoriteDestinations:
		target = &p.Favorites.Destinations
	default:
		return false, fmt.Errorf("unknown favorites list %q", list)
	}

	for _, existing := range *target {
		if existing == value {
			return false, nil
		}
	}
	*target = append(*target, value)
	p.Touch(now)
	return true, nil
}

// Update is a partial profile patch; nil pointers and nil slices leave the
// corresponding field untouched.
type Update struct {
	Name        *string  `json:"name,omitempty"`
	City        *string  `json:"city,omitempty"`
	Budget      *string  `json:"budget,omitempty"`
	Cuisines    []string `json:"cuisines,omitempty"`
	HotelType   *string  `json:"hotel_type,omitempty"`
	TravelClass *string  `json:"travel_class,omitempty"`
	Dietary     []string `json:"dietary,omitempty"`
}

func (p *UserProfile) ApplyUpdate(u Update, now time.Time) {
	if u.Name != nil {
		p.Name = strings.TrimSpace(*u.Name)
	}
	if u.City != nil {
		p.City = strings.TrimSpace(*u.City)
	}
	if u.Budget != nil {
		p.Budget = strings.TrimSpace(*u.Budget)
	}
	if u.Cuisines != nil {
		p.Preferences.Cuisines = u.Cuisines
	}
	if u.HotelType != nil {
		p.Preferences.HotelType = strings.TrimSpace(*u.HotelType)
	}
	if u.TravelClass != nil {
		p.Preferences.TravelClass = strings.TrimSpace(*u.TravelClass)
	}
	if u.Dietary != nil {
		p.Preferences.Dietary = u.Dietary
	}
	p.Touch(now)
}

// Summary renders the populated fields as a human-readable block. Empty
// sections are omitted; a fresh profile yields "".
func (p *UserProfile) Summary() string {
	var lines []string
	add := func(label, value string) {
		if strings.TrimSpace(value) != "" {
			lines = append(lines, label+": "+value)
		}
	}

	add("Name", p.Name)
	add("City", p.City)
	add("Budget", p.Budget)
	add("Preferred cuisines", strings.Join(p.Preferences.Cuisines, ", "))
	add("Hotel type", p.Preferences.HotelType)
	add("Travel class", p.Preferences.TravelClass)
	add("Dietary", strings.Join(p.Preferences.Dietary, ", "))
	add("Favorite restaurants", strings.Join(p.Favorites.Restaurants, ", "))
	add("Favorite hotels", strings.Join(p.Favorites.Hotels, ", "))
	add("Favorite destinations", strings.Join(p.Favorites.Destinations, ", "))

	return strings.Join(lines, "\n")
}

// RecentHistory renders the last n turns, oldest first, for prompt context.
func (p *UserProfile) RecentHistory(n int) string {
	if n <= 0 || len(p.History) == 0 {
		return ""
	}
	start := len(p.History) - n
	if start < 0 {
		start = 0
	}

	var b strings.Builder
	for i, turn := range p.History[start:] {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "User: %s\nBot: %s", turn.User, turn.Bot)
	}
	return b.String()
}
