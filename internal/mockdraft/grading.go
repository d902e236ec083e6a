package mockdraft

import "github.com/draftarena/engine/internal/models"

// Grading is a deterministic function of the positional counts in the
// user's roster: a base score plus fixed bonuses per satisfied positional
// threshold, mapped to a letter through fixed breakpoints.

const baseScore = 75

// Grade analyzes the user's picks and produces the roster report.
func Grade(userTeam []models.DraftPick) models.TeamAnalysis {
	counts := make(map[string]int)
	for _, p := range userTeam {
		counts[p.Position]++
	}

	score := baseScore
	if counts["QB"] >= 1 {
		score += 5
	}
	if counts["RB"] >= 2 {
		score += 10
	}
	if counts["WR"] >= 3 {
		score += 10
	}
	if counts["TE"] >= 1 {
		score += 5
	}

	var strengths, weaknesses []string
	if counts["RB"] >= 3 {
		strengths = append(strengths, "strong RB depth")
	} else if counts["RB"] < 2 {
		weaknesses = append(weaknesses, "weak at RB")
	}
	if counts["WR"] >= 4 {
		strengths = append(strengths, "excellent WR corps")
	} else if counts["WR"] < 3 {
		weaknesses = append(weaknesses, "thin at WR")
	}
	if counts["QB"] == 0 {
		weaknesses = append(weaknesses, "no QB drafted")
	} else if counts["QB"] >= 2 {
		strengths = append(strengths, "QB insurance")
	}
	if counts["TE"] == 0 {
		weaknesses = append(weaknesses, "no TE drafted")
	}

	return models.TeamAnalysis{
		Grade:      letterFor(score),
		Score:      score,
		Strengths:  strengths,
		Weaknesses: weaknesses,
	}
}

func letterFor(score int) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}
