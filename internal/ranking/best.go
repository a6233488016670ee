package ranking

// noiseBonus rewards quiet locations in the best-spot score.
func noiseBonus(c NoiseCategory) float64 {
	switch c {
	case NoiseSilent:
		return 20
	case NoiseQuiet:
		return 15
	default:
		return 0
	}
}

// Score is the best-spot score: free capacity plus a bonus for quiet spaces.
// A spot with unknown occupancy is scored as if it were full.
func Score(s Spot) float64 {
	occupancy := 100.0
	if s.OccupancyPercent != nil {
		occupancy = *s.OccupancyPercent
	}
	return (100 - occupancy) + noiseBonus(s.NoiseCategory)
}

// SelectBestSpot returns the location with the highest Score. Ties go to the
// earliest candidate.
func SelectBestSpot(locations []Spot) (Spot, error) {
	if len(locations) == 0 {
		return Spot{}, ErrEmptyInput
	}

	best, bestScore := locations[0], Score(locations[0])
	for _, s := range locations[1:] {
		if sc := Score(s); sc > bestScore {
			best, bestScore = s, sc
		}
	}
	return best, nil
}
