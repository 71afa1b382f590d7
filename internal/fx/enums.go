package fx

import "fmt"

// Tier is a coarse fidelity setting read by producers to scale particle
// counts and animation richness.
type Tier uint8

const (
	TierLow Tier = iota
	TierMedium
	TierHigh
)

var tierNames = [...]string{"low", "medium", "high"}

func (t Tier) String() string {
	if int(t) < len(tierNames) {
		return tierNames[t]
	}
	return fmt.Sprintf("tier(%d)", t)
}

// Demote returns the next lower tier, floored at TierLow.
func (t Tier) Demote() Tier {
	if t <= TierLow {
		return TierLow
	}
	return t - 1
}

// Promote returns the next higher tier, capped at TierHigh.
func (t Tier) Promote() Tier {
	if t >= TierHigh {
		return TierHigh
	}
	return t + 1
}

// MarshalText implements encoding.TextMarshaler.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tier) UnmarshalText(b []byte) error {
	v, err := parseEnum(string(b), tierNames[:], "tier")
	if err != nil {
		return err
	}
	*t = Tier(v)
	return nil
}

// WeatherKind selects the ambient weather state.
type WeatherKind uint8

const (
	WeatherClear WeatherKind = iota
	WeatherRain
	WeatherSnow
	WeatherFog
	WeatherSandstorm
)

var weatherNames = [...]string{"clear", "rain", "snow", "fog", "sandstorm"}

func (k WeatherKind) String() string {
	if int(k) < len(weatherNames) {
		return weatherNames[k]
	}
	return fmt.Sprintf("weather(%d)", k)
}

// MarshalText implements encoding.TextMarshaler.
func (k WeatherKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *WeatherKind) UnmarshalText(b []byte) error {
	v, err := parseEnum(string(b), weatherNames[:], "weather")
	if err != nil {
		return err
	}
	*k = WeatherKind(v)
	return nil
}

// Category groups animations by what they animate.
type Category uint8

const (
	CategoryCharacter Category = iota
	CategoryBuilding
	CategoryUI
	CategoryTravel
	CategoryParticle
)

var categoryNames = [...]string{"character", "building", "ui", "travel", "particle"}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return fmt.Sprintf("category(%d)", c)
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(b []byte) error {
	v, err := parseEnum(string(b), categoryNames[:], "category")
	if err != nil {
		return err
	}
	*c = Category(v)
	return nil
}

func parseEnum(s string, names []string, what string) (int, error) {
	for i, n := range names {
		if n == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q", what, s)
}
