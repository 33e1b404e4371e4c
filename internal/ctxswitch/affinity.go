package ctxswitch

import (
	"fmt"

	"timeopt/internal/models"
)

// categoryPair keys the affinity matrix. Pairs are stored once; lookup
// falls back to the symmetric pair.
type categoryPair struct {
	from, to models.Category
}

// affinityMatrix scores how related two work categories are. Higher
// affinity means a cheaper switch. Pairs not listed here (in either
// direction) fall back to defaultAffinity; identical categories are
// always 1.0.
var affinityMatrix = map[categoryPair]float64{
	{models.CategoryCoding, models.CategoryWriting}:         0.6,
	{models.CategoryCoding, models.CategoryBrowsing}:        0.5, // docs lookup
	{models.CategoryCoding, models.CategoryDesign}:          0.4,
	{models.CategoryCoding, models.CategoryAdmin}:           0.3,
	{models.CategoryWriting, models.CategoryBrowsing}:       0.5,
	{models.CategoryWriting, models.CategoryDesign}:         0.5,
	{models.CategoryWriting, models.CategoryAdmin}:          0.4,
	{models.CategoryCommunication, models.CategoryMeeting}:  0.8,
	{models.CategoryCommunication, models.CategoryAdmin}:    0.6,
	{models.CategoryMeeting, models.CategoryAdmin}:          0.5,
	{models.CategoryBrowsing, models.CategoryEntertainment}: 0.7,
	{models.CategoryBrowsing, models.CategoryAdmin}:         0.4,
	{models.CategoryDesign, models.CategoryBrowsing}:        0.4,
}

const (
	defaultAffinity = 0.2
	baseSwitchCost  = 2.0 // minutes, before affinity and depth scaling
)

// Affinity returns the similarity score between two categories:
// 1.0 for identical categories, the stored value for listed pairs in
// either direction, otherwise the default low affinity.
func Affinity(from, to models.Category) float64 {
	if from == to {
		return 1.0
	}
	if a, ok := affinityMatrix[categoryPair{from, to}]; ok {
		return a
	}
	if a, ok := affinityMatrix[categoryPair{to, from}]; ok {
		return a
	}
	return defaultAffinity
}

// ValidateAffinity checks the matrix at startup: every value in (0,1],
// and no pair defined in both directions with conflicting scores.
func ValidateAffinity() error {
	for pair, a := range affinityMatrix {
		if a <= 0 || a > 1 {
			return fmt.Errorf("affinity for (%s, %s) out of range: %v", pair.from, pair.to, a)
		}
		if pair.from == pair.to {
			return fmt.Errorf("identity pair (%s, %s) must not be listed; it is implicitly 1.0", pair.from, pair.to)
		}
		if b, ok := affinityMatrix[categoryPair{pair.to, pair.from}]; ok && b != a {
			return fmt.Errorf("asymmetric affinity for (%s, %s): %v vs %v", pair.from, pair.to, a, b)
		}
	}
	return nil
}
