package domain

// Color is the visual color tier of a token.
type Color string

const (
	ColorRed    Color = "Red"
	ColorOrange Color = "Orange"
	ColorYellow Color = "Yellow"
	ColorGreen  Color = "Green"
	ColorGold   Color = "Gold"
)

// Colors lists all colors from lowest to highest tier.
var Colors = []Color{ColorRed, ColorOrange, ColorYellow, ColorGreen, ColorGold}

// Rank returns the tier index of the color, or -1 if unknown.
func (c Color) Rank() int { return rankOf(Colors, c) }

// Rarity is the rarity tier of a token.
type Rarity string

const (
	RarityCommon    Rarity = "Common"
	RarityUncommon  Rarity = "Uncommon"
	RarityRare      Rarity = "Rare"
	RarityEpic      Rarity = "Epic"
	RarityLegendary Rarity = "Legendary"
)

// Rarities lists all rarities from most common to rarest.
var Rarities = []Rarity{RarityCommon, RarityUncommon, RarityRare, RarityEpic, RarityLegendary}

// Rank returns the tier index of the rarity, or -1 if unknown.
func (r Rarity) Rank() int { return rankOf(Rarities, r) }

// IsValid checks if the rarity is a known value.
func (r Rarity) IsValid() bool { return r.Rank() >= 0 }

// Mood is the market mood that accompanies the color tier.
type Mood string

const (
	MoodBearish    Mood = "Bearish"
	MoodNeutral    Mood = "Neutral"
	MoodOptimistic Mood = "Optimistic"
	MoodBullish    Mood = "Bullish"
	MoodMoon       Mood = "Moon"
)

// Moods lists all moods from lowest to highest tier.
var Moods = []Mood{MoodBearish, MoodNeutral, MoodOptimistic, MoodBullish, MoodMoon}

// Rank returns the tier index of the mood, or -1 if unknown.
func (m Mood) Rank() int { return rankOf(Moods, m) }

// AnimationSpeed is the animation speed of the token artwork.
type AnimationSpeed string

const (
	AnimationSlow   AnimationSpeed = "Slow"
	AnimationMedium AnimationSpeed = "Medium"
	AnimationFast   AnimationSpeed = "Fast"
)

// AnimationSpeeds lists all speeds from slowest to fastest.
var AnimationSpeeds = []AnimationSpeed{AnimationSlow, AnimationMedium, AnimationFast}

// Rank returns the tier index of the speed, or -1 if unknown.
func (a AnimationSpeed) Rank() int { return rankOf(AnimationSpeeds, a) }

// Background is the background style of the token artwork.
type Background string

const (
	BackgroundCloudy      Background = "Cloudy"
	BackgroundSunset      Background = "Sunset"
	BackgroundClearSky    Background = "Clear Sky"
	BackgroundStarryNight Background = "Starry Night"
)

// Backgrounds lists all backgrounds from lowest to highest tier.
var Backgrounds = []Background{BackgroundCloudy, BackgroundSunset, BackgroundClearSky, BackgroundStarryNight}

// Rank returns the tier index of the background, or -1 if unknown.
func (b Background) Rank() int { return rankOf(Backgrounds, b) }

func rankOf[T comparable](tiers []T, v T) int {
	for i, t := range tiers {
		if t == v {
			return i
		}
	}
	return -1
}

// Attribute field names, in canonical order.
const (
	FieldColor          = "color"
	FieldRarity         = "rarity"
	FieldMood           = "mood"
	FieldAnimationSpeed = "animation_speed"
	FieldBackground     = "background"
	FieldPrice          = "btc_price"
)

// AttributeFields lists attribute field names in canonical order.
var AttributeFields = []string{
	FieldColor, FieldRarity, FieldMood, FieldAnimationSpeed, FieldBackground, FieldPrice,
}

// AttributeBundle is the full set of price-derived attributes of a token.
// Bundles are values: they are replaced wholesale, never merged.
type AttributeBundle struct {
	Color          Color          `json:"color" yaml:"color"`
	Rarity         Rarity         `json:"rarity" yaml:"rarity"`
	Mood           Mood           `json:"mood" yaml:"mood"`
	AnimationSpeed AnimationSpeed `json:"animation_speed" yaml:"animation_speed"`
	Background     Background     `json:"background" yaml:"background"`
	Price          int64          `json:"btc_price" yaml:"btc_price"`
}
