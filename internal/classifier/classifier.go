// Package classifier maps a BTC price to the attribute bundle of a token.
//
// Every dimension is an ordered ladder of half-open intervals [lower, upper).
// The lowest interval also takes zero and negative prices and the highest
// interval is unbounded above, so Classify is total.
package classifier

import (
	"slices"

	"dynamic-nft/internal/domain"
)

// step maps prices below Below to Value.
type step[T any] struct {
	Below int64
	Value T
}

// ladder is an ascending list of steps plus the value for everything above them.
type ladder[T any] struct {
	steps []step[T]
	top   T
}

func (l ladder[T]) lookup(price int64) T {
	for _, s := range l.steps {
		if price < s.Below {
			return s.Value
		}
	}
	return l.top
}

var colorLadder = ladder[domain.Color]{
	steps: []step[domain.Color]{
		{30000, domain.ColorRed},
		{45000, domain.ColorOrange},
		{60000, domain.ColorYellow},
		{75000, domain.ColorGreen},
	},
	top: domain.ColorGold,
}

var moodLadder = ladder[domain.Mood]{
	steps: []step[domain.Mood]{
		{30000, domain.MoodBearish},
		{45000, domain.MoodNeutral},
		{60000, domain.MoodOptimistic},
		{75000, domain.MoodBullish},
	},
	top: domain.MoodMoon,
}

var rarityLadder = ladder[domain.Rarity]{
	steps: []step[domain.Rarity]{
		{35000, domain.RarityCommon},
		{50000, domain.RarityUncommon},
		{65000, domain.RarityRare},
		{80000, domain.RarityEpic},
	},
	top: domain.RarityLegendary,
}

var animationLadder = ladder[domain.AnimationSpeed]{
	steps: []step[domain.AnimationSpeed]{
		{40000, domain.AnimationSlow},
		{60000, domain.AnimationMedium},
	},
	top: domain.AnimationFast,
}

var backgroundLadder = ladder[domain.Background]{
	steps: []step[domain.Background]{
		{40000, domain.BackgroundCloudy},
		{55000, domain.BackgroundSunset},
		{70000, domain.BackgroundClearSky},
	},
	top: domain.BackgroundStarryNight,
}

// Classify returns the attribute bundle for price. It is pure: equal prices
// always produce equal bundles.
func Classify(price int64) domain.AttributeBundle {
	return domain.AttributeBundle{
		Color:          colorLadder.lookup(price),
		Rarity:         rarityLadder.lookup(price),
		Mood:           moodLadder.lookup(price),
		AnimationSpeed: animationLadder.lookup(price),
		Background:     backgroundLadder.lookup(price),
		Price:          price,
	}
}

// Thresholds returns the lower bounds at which any attribute changes, ascending.
func Thresholds() []int64 {
	seen := make(map[int64]struct{})
	var out []int64
	add := func(b int64) {
		if _, ok := seen[b]; !ok {
			seen[b] = struct{}{}
			out = append(out, b)
		}
	}
	for _, s := range colorLadder.steps {
		add(s.Below)
	}
	for _, s := range rarityLadder.steps {
		add(s.Below)
	}
	for _, s := range animationLadder.steps {
		add(s.Below)
	}
	for _, s := range backgroundLadder.steps {
		add(s.Below)
	}
	slices.Sort(out)
	return out
}
