package room

const (
	PointsNone   = 0
	PointsValid  = 5
	PointsUnique = 10
)

// ReviewBook holds reviews keyed reviewer -> reviewed player -> category.
type ReviewBook map[string]map[string]map[string]Review

// Tally counts reviewers whose flags are exactly true.
type Tally struct {
	Valid  int
	Unique int
}

// Majority is ceil((playerCount-1)/2): the votes an answer needs from the
// other players.
func Majority(playerCount int) int {
	others := playerCount - 1
	if others <= 0 {
		return 0
	}
	return (others + 1) / 2
}

// TallyFor counts the votes the listed players (other than author) gave to
// author's answer in category. A missing review counts for nothing.
func TallyFor(reviews ReviewBook, players []string, author, category string) Tally {
	var t Tally
	for _, reviewer := range players {
		if reviewer == author {
			continue
		}
		review, ok := reviews[reviewer][author][category]
		if !ok {
			continue
		}
		if review.IsValid.IsTrue() {
			t.Valid++
		}
		if review.IsUnique.IsTrue() {
			t.Unique++
		}
	}
	return t
}

// AnswerPoints scores one answer. Both flags are checked on their own.
func AnswerPoints(answer string, t Tally, playerCount int) int {
	if isBlank(answer) {
		return PointsNone
	}
	majority := Majority(playerCount)
	switch {
	case t.Valid < majority:
		return PointsNone
	case t.Unique < majority:
		return PointsValid
	default:
		return PointsUnique
	}
}

// RoundPoints scores every player's answer in every category. The live
// preview and round finalization both call it.
func RoundPoints(players, categories []string, answers map[string]map[string]string, reviews ReviewBook) map[string]map[string]int {
	points := make(map[string]map[string]int, len(players))
	for _, player := range players {
		perCategory := make(map[string]int, len(categories))
		for _, category := range categories {
			t := TallyFor(reviews, players, player, category)
			perCategory[category] = AnswerPoints(answers[player][category], t, len(players))
		}
		points[player] = perCategory
	}
	return points
}

// Totals sums RoundPoints per player.
func Totals(points map[string]map[string]int) map[string]int {
	totals := make(map[string]int, len(points))
	for player, perCategory := range points {
		sum := 0
		for _, p := range perCategory {
			sum += p
		}
		totals[player] = sum
	}
	return totals
}
